// ABOUTME: Tests for the login command
// ABOUTME: Verifies session persistence, role hints, and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func loginServer(t *testing.T, role string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"role":     role,
			"username": "alice",
			"user_id":  "7",
		})
	}))
}

func TestLoginCommand_Success(t *testing.T) {
	server := loginServer(t, "user")
	defer server.Close()

	clearSession(t)
	apiURL = server.URL
	loginUsername = "alice"
	loginPassword = "hunter2"
	defer func() { apiURL = ""; loginUsername = ""; loginPassword = "" }()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Logged in as alice (user)")) {
		t.Errorf("expected identity in output, got %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("filevault files")) {
		t.Error("expected the files hint for a user session")
	}

	state, err := newStore().Load()
	if err != nil || state == nil {
		t.Fatalf("expected a persisted session, got %v %v", state, err)
	}
	if state.Session.Username != "alice" || state.Session.UserID != "7" {
		t.Errorf("persisted session mismatch: %+v", state.Session)
	}
	if len(state.Cookies) == 0 || state.Cookies[0].Value != "abc123" {
		t.Errorf("expected the session cookie to be persisted, got %+v", state.Cookies)
	}
}

func TestLoginCommand_AdminHint(t *testing.T) {
	server := loginServer(t, "admin")
	defer server.Close()

	clearSession(t)
	apiURL = server.URL
	loginUsername = "root"
	loginPassword = "secret"
	defer func() { apiURL = ""; loginUsername = ""; loginPassword = "" }()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("filevault users")) {
		t.Error("expected the users hint for an admin session")
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))
	defer server.Close()

	clearSession(t)
	apiURL = server.URL
	loginUsername = "alice"
	loginPassword = "wrong"
	defer func() { apiURL = ""; loginUsername = ""; loginPassword = "" }()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1 for rejected credentials, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Invalid credentials")) {
		t.Errorf("expected the server's error text, got %q", buf.String())
	}

	state, _ := newStore().Load()
	if state != nil {
		t.Error("expected no session to be persisted on failure")
	}
}

func TestLoginCommand_ConnectionError(t *testing.T) {
	clearSession(t)
	apiURL = "http://localhost:0"
	loginUsername = "alice"
	loginPassword = "hunter2"
	defer func() { apiURL = ""; loginUsername = ""; loginPassword = "" }()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2 for connection error, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("cannot connect to backend")) {
		t.Errorf("expected connection error message, got %q", buf.String())
	}
}

func TestLoginCommand_JSON(t *testing.T) {
	server := loginServer(t, "user")
	defer server.Close()

	clearSession(t)
	apiURL = server.URL
	loginUsername = "alice"
	loginPassword = "hunter2"
	jsonOutput = true
	defer func() { apiURL = ""; loginUsername = ""; loginPassword = ""; jsonOutput = false }()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["username"] != "alice" {
		t.Errorf("expected username in JSON, got %v", parsed["username"])
	}
}
