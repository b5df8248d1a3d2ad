// ABOUTME: Tests for the rm command
// ABOUTME: Verifies deletion, refresh-after-write, and not-found handling

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filevault/cli/internal/client"
)

func TestRmCommand_Success(t *testing.T) {
	var deletes, fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/dashboard/delete/42":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			deletes++
			json.NewEncoder(w).Encode(map[string]string{"message": "File deleted successfully"})
		case "/dashboard":
			fetches++
			json.NewEncoder(w).Encode([]client.FileRecord{{FileID: "1", Filename: "a.txt"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	seedSession(t, "user")
	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runRm(context.Background(), &buf, "42")

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if deletes != 1 || fetches != 1 {
		t.Errorf("expected 1 delete and 1 refresh, got %d and %d", deletes, fetches)
	}
	if !bytes.Contains(buf.Bytes(), []byte("1 file(s) remain")) {
		t.Errorf("expected remaining count, got %q", buf.String())
	}
}

func TestRmCommand_NotFoundSkipsRefresh(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/dashboard" {
			fetches++
			json.NewEncoder(w).Encode([]client.FileRecord{})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "File not found or access denied"})
	}))
	defer server.Close()

	seedSession(t, "user")
	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runRm(context.Background(), &buf, "42")

	if exitCode != 1 {
		t.Errorf("expected exit code 1 for a missing file, got %d", exitCode)
	}
	if fetches != 0 {
		t.Errorf("a failed delete must not trigger a refresh, got %d fetches", fetches)
	}
	if !bytes.Contains(buf.Bytes(), []byte("File not found or access denied")) {
		t.Errorf("expected the server's error text, got %q", buf.String())
	}
}

func TestRmCommand_NotLoggedIn(t *testing.T) {
	clearSession(t)
	apiURL = "http://localhost:0"
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runRm(context.Background(), &buf, "42")

	if exitCode != 1 {
		t.Errorf("expected exit code 1 when not logged in, got %d", exitCode)
	}
}
