// ABOUTME: Tests for the whoami command
// ABOUTME: Verifies the cached identity is shown without a network call

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWhoamiCommand_LoggedIn(t *testing.T) {
	seedSession(t, "admin")

	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("alice (admin)")) {
		t.Errorf("expected the cached identity, got %q", buf.String())
	}
}

func TestWhoamiCommand_NotLoggedIn(t *testing.T) {
	clearSession(t)

	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1 with no session, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Not logged in.")) {
		t.Errorf("expected the not-logged-in notice, got %q", buf.String())
	}
}

func TestWhoamiCommand_JSON(t *testing.T) {
	seedSession(t, "user")
	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["username"] != "alice" || parsed["role"] != "user" {
		t.Errorf("unexpected JSON identity: %v", parsed)
	}
}
