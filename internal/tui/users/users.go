// ABOUTME: Admin user management screen
// ABOUTME: Lists accounts, creates users, and confirms before deletion

package users

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/collection"
	"github.com/filevault/cli/internal/session"
	"github.com/filevault/cli/internal/tui/debuglog"
	"github.com/filevault/cli/internal/tui/icons"
	"github.com/filevault/cli/internal/tui/styles"
)

// LogoutRequestedMsg asks the app to tear down the session
type LogoutRequestedMsg struct{}

// state models the delete flow: Idle -> Confirming -> {Aborted | Requested}.
// A requested delete resolves back to the list either refreshed (success)
// or untouched with the error shown (failure). Creation is a separate form
// state.
type state int

const (
	stateList state = iota
	stateConfirm
	stateCreate
)

// loadedMsg is sent when the user collection has been fetched
type loadedMsg struct {
	users []client.UserRecord
	err   error
}

// syncedMsg is sent after a mutation and its follow-up refresh
type syncedMsg struct {
	action string
	users  []client.UserRecord
	err    error
}

// roleOptions for the create form; the backend defaults to "user" too
var roleOptions = []huh.Option[string]{
	huh.NewOption("user", session.RoleUser),
	huh.NewOption("admin", session.RoleAdmin),
}

// Model is the admin user list screen
type Model struct {
	client *client.Client
	syncer *collection.Syncer[client.UserRecord]

	users   []client.UserRecord
	cursor  int
	state   state
	pending client.UserRecord
	loading bool
	status  string
	errMsg  string

	form        *huh.Form
	newUsername string
	newPassword string
	newRole     string

	width  int
	height int
}

// New creates the admin screen for the current session
func New(apiClient *client.Client) *Model {
	return &Model{
		client: apiClient,
		syncer: collection.New(apiClient.ListUsers),
		state:  stateList,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.load()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == stateCreate && m.form != nil {
			form, cmd := m.form.Update(msg)
			if f, ok := form.(*huh.Form); ok {
				m.form = f
			}
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateList:
			return m.updateList(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		case stateCreate:
			return m.updateCreate(msg)
		}

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			debuglog.Error("list users", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.replace(msg.users)
		return m, nil

	case syncedMsg:
		m.loading = false
		if msg.err != nil {
			// Failed mutation: surface the server's text, keep the list
			m.errMsg = msg.err.Error()
			debuglog.Error(msg.action, msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.action
		m.replace(msg.users)
		return m, nil

	default:
		// huh form internals need non-key messages while creating
		if m.state == stateCreate && m.form != nil {
			return m.updateCreate(msg)
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.users)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "n":
		m.state = stateCreate
		m.newUsername = ""
		m.newPassword = ""
		m.newRole = session.RoleUser
		m.form = m.createForm()
		return m, m.form.Init()
	case "d":
		// Admin accounts are never offered deletion; the server enforces
		// this too, the client just doesn't present the option.
		if u, ok := m.selected(); ok && u.Role != session.RoleAdmin {
			m.pending = u
			m.state = stateConfirm
		}
	case "L":
		return m, func() tea.Msg { return LogoutRequestedMsg{} }
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		u := m.pending
		m.state = stateList
		m.loading = true
		return m, m.delete(u)
	case "n", "N", "esc":
		// Aborted: no request is issued, the list stays as-is
		m.state = stateList
	}
	return m, nil
}

func (m *Model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.state = stateList
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		username, password, role := m.newUsername, m.newPassword, m.newRole
		m.state = stateList
		m.form = nil
		m.loading = true
		return m, m.create(username, password, role)
	}

	return m, cmd
}

func (m *Model) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.newUsername).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.newPassword),
			huh.NewSelect[string]().
				Title("Role").
				Options(roleOptions...).
				Value(&m.newRole),
		).Title("New user"),
	).WithTheme(huh.ThemeBase())
}

// selected returns the user under the cursor
func (m *Model) selected() (client.UserRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.users) {
		return client.UserRecord{}, false
	}
	return m.users[m.cursor], true
}

// replace swaps in a full snapshot; the list is never patched in place
func (m *Model) replace(users []client.UserRecord) {
	m.users = users
	if m.cursor >= len(m.users) {
		m.cursor = len(m.users) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		users, err := m.syncer.Refresh(context.Background())
		return loadedMsg{users: users, err: err}
	}
}

func (m *Model) create(username, password, role string) tea.Cmd {
	return func() tea.Msg {
		users, err := m.syncer.Apply(context.Background(), func(ctx context.Context) error {
			return m.client.CreateUser(ctx, username, password, role)
		})
		return syncedMsg{action: "Created " + username, users: users, err: err}
	}
}

func (m *Model) delete(u client.UserRecord) tea.Cmd {
	return func() tea.Msg {
		users, err := m.syncer.Apply(context.Background(), func(ctx context.Context) error {
			return m.client.DeleteUser(ctx, u.UserID)
		})
		return syncedMsg{action: "Deleted " + u.Username, users: users, err: err}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Admin.String() + " Users"))
	sb.WriteString("\n\n")

	if m.state == stateCreate && m.form != nil {
		sb.WriteString(m.form.View())
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("Esc to cancel"))
		return sb.String()
	}

	switch {
	case m.loading:
		sb.WriteString(styles.Subtitle.Render("Loading..."))
		sb.WriteString("\n")
	case len(m.users) == 0:
		sb.WriteString(styles.MutedRow.Render("No users."))
		sb.WriteString("\n")
	default:
		for i, u := range m.users {
			icon := icons.User
			if u.Role == session.RoleAdmin {
				icon = icons.Admin
			}
			line := fmt.Sprintf("%s %s (%s)", icon.String(), u.Username, u.Role)
			if i == m.cursor {
				sb.WriteString(styles.SelectedRow.Render("> " + line))
			} else {
				sb.WriteString(styles.NormalRow.Render("  " + line))
			}
			sb.WriteString("\n")
		}
	}

	if m.state == stateConfirm {
		sb.WriteString("\n")
		prompt := fmt.Sprintf("Delete user %q? (y/n)", m.pending.Username)
		sb.WriteString(styles.StatusError.Render(prompt))
	}

	if m.errMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusError.Render(icons.Critical.String() + " " + m.errMsg))
	} else if m.status != "" && m.state == stateList {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " " + m.status))
	}

	return sb.String()
}
