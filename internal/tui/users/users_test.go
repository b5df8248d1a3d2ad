// ABOUTME: Tests for the admin user management screen
// ABOUTME: Verifies the delete confirmation flow and admin row protection

package users

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/session"
)

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newLoadedModel(records ...client.UserRecord) *Model {
	m := New(client.New("http://localhost:8080"))
	m.users = records
	return m
}

func TestDeleteKey_EntersConfirmState(t *testing.T) {
	m := newLoadedModel(client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser})

	_, cmd := m.Update(key('d'))

	if m.state != stateConfirm {
		t.Error("expected d to enter the confirmation state")
	}
	if m.pending.Username != "bob" {
		t.Errorf("expected bob to be pending, got %q", m.pending.Username)
	}
	if cmd != nil {
		t.Error("expected no request before confirmation")
	}
}

func TestDeleteKey_AdminRowIsNeverOffered(t *testing.T) {
	m := newLoadedModel(client.UserRecord{UserID: "1", Username: "root", Role: session.RoleAdmin})

	_, cmd := m.Update(key('d'))

	if m.state != stateList {
		t.Error("expected admin rows to stay in the list state")
	}
	if cmd != nil {
		t.Error("expected no command for an admin row")
	}
}

func TestConfirm_YesIssuesDelete(t *testing.T) {
	m := newLoadedModel(client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser})
	m.Update(key('d'))

	_, cmd := m.Update(key('y'))

	if m.state != stateList {
		t.Error("expected confirmation to resolve back to the list state")
	}
	if cmd == nil {
		t.Error("expected a delete request after confirmation")
	}
	if !m.loading {
		t.Error("expected loading while the delete is in flight")
	}
}

func TestConfirm_NoAbortsWithoutRequest(t *testing.T) {
	for _, k := range []string{"n", "N", "esc"} {
		m := newLoadedModel(client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser})
		m.Update(key('d'))

		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(rune(k[0]))
		}
		_, cmd := m.Update(msg)

		if m.state != stateList {
			t.Errorf("%s: expected abort to return to the list state", k)
		}
		if cmd != nil {
			t.Errorf("%s: aborting must not issue a request", k)
		}
		if len(m.users) != 1 {
			t.Errorf("%s: aborting must leave the list untouched", k)
		}
	}
}

func TestSyncedMsg_FailureKeepsListAndShowsServerText(t *testing.T) {
	m := newLoadedModel(
		client.UserRecord{UserID: "1", Username: "root", Role: session.RoleAdmin},
		client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser},
	)

	m.Update(syncedMsg{
		action: "Deleted bob",
		err:    &client.APIError{StatusCode: 403, Message: "Cannot delete admin users"},
	})

	if len(m.users) != 2 {
		t.Error("failed mutation must not change the rendered list")
	}
	if m.errMsg != "Cannot delete admin users" {
		t.Errorf("expected server error text, got %q", m.errMsg)
	}
}

func TestSyncedMsg_SuccessReplacesList(t *testing.T) {
	m := newLoadedModel(
		client.UserRecord{UserID: "1", Username: "root", Role: session.RoleAdmin},
		client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser},
	)

	m.Update(syncedMsg{
		action: "Deleted bob",
		users:  []client.UserRecord{{UserID: "1", Username: "root", Role: session.RoleAdmin}},
	})

	if len(m.users) != 1 {
		t.Errorf("expected refreshed snapshot with 1 user, got %d", len(m.users))
	}
	if m.status != "Deleted bob" {
		t.Errorf("expected status, got %q", m.status)
	}
	if m.errMsg != "" {
		t.Errorf("expected error cleared, got %q", m.errMsg)
	}
}

func TestNewKey_OpensCreateForm(t *testing.T) {
	m := newLoadedModel()

	_, cmd := m.Update(key('n'))

	if m.state != stateCreate {
		t.Error("expected n to enter the create state")
	}
	if m.form == nil {
		t.Error("expected a form to be built")
	}
	if m.newRole != session.RoleUser {
		t.Errorf("expected the role to default to user, got %q", m.newRole)
	}
	if cmd == nil {
		t.Error("expected the form's init command")
	}
}

func TestCreateForm_EscCancels(t *testing.T) {
	m := newLoadedModel()
	m.Update(key('n'))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != stateList {
		t.Error("expected esc to return to the list state")
	}
	if m.form != nil {
		t.Error("expected the form to be discarded")
	}
	if cmd != nil {
		t.Error("expected no request on cancel")
	}
}

func TestView_ConfirmPromptNamesTheUser(t *testing.T) {
	m := newLoadedModel(client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser})
	m.Update(key('d'))

	view := m.View()
	if !strings.Contains(view, `Delete user "bob"? (y/n)`) {
		t.Errorf("expected confirmation prompt, got:\n%s", view)
	}
}

func TestView_RendersRoleNextToUsername(t *testing.T) {
	m := newLoadedModel(
		client.UserRecord{UserID: "1", Username: "root", Role: session.RoleAdmin},
		client.UserRecord{UserID: "2", Username: "bob", Role: session.RoleUser},
	)

	view := m.View()
	if !strings.Contains(view, "root (admin)") {
		t.Error("expected admin row with role")
	}
	if !strings.Contains(view, "bob (user)") {
		t.Error("expected user row with role")
	}
}

func TestLogoutKey_EmitsRequest(t *testing.T) {
	m := newLoadedModel()

	_, cmd := m.Update(key('L'))
	if cmd == nil {
		t.Fatal("expected a command from L")
	}
	if _, ok := cmd().(LogoutRequestedMsg); !ok {
		t.Error("expected LogoutRequestedMsg")
	}
}
