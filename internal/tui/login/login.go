// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Collects credentials via a huh form and establishes the session

package login

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/session"
	"github.com/filevault/cli/internal/tui/styles"
)

// LoggedInMsg is sent when login succeeds. The session mirrors the
// server's role/username/user_id exactly.
type LoggedInMsg struct {
	Session *session.Session
}

// CancelledMsg is sent when the user backs out of the login screen
type CancelledMsg struct{}

// resultMsg carries the outcome of a login attempt
type resultMsg struct {
	sess *session.Session
	err  error
}

// Login is the credential form screen
type Login struct {
	client *client.Client
	form   *huh.Form

	username string
	password string
	errMsg   string
	busy     bool
	width    int
}

// New creates a new login screen
func New(apiClient *client.Client) *Login {
	l := &Login{client: apiClient}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&l.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password),
		).Title("Sign in").
			Description("Credentials are verified by the backend"),
	).WithTheme(huh.ThemeBase())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		form, cmd := l.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			l.form = f
		}
		return l, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return l, func() tea.Msg { return CancelledMsg{} }
		}

	case resultMsg:
		l.busy = false
		if msg.err != nil {
			// Failure surfaces a message without navigating; the form is
			// rebuilt so the user can re-attempt.
			l.errMsg = msg.err.Error()
			l.password = ""
			l.form = l.createForm()
			return l, l.form.Init()
		}
		return l, func() tea.Msg { return LoggedInMsg{Session: msg.sess} }
	}

	if l.busy {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.busy = true
		l.errMsg = ""
		return l, l.submit()
	}

	return l, cmd
}

// submit sends the credentials to the backend
func (l *Login) submit() tea.Cmd {
	username, password := l.username, l.password
	return func() tea.Msg {
		sess, err := l.client.Login(context.Background(), username, password)
		return resultMsg{sess: sess, err: err}
	}
}

// View implements tea.Model
func (l *Login) View() string {
	out := styles.Title.Render("FileVault") + "\n\n"
	if l.errMsg != "" {
		out += styles.StatusError.Render(l.errMsg) + "\n\n"
	}
	if l.busy {
		out += styles.Subtitle.Render("Signing in...")
		return out
	}
	out += l.form.View()
	return out
}
