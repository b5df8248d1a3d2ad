// ABOUTME: Root bubbletea model for the filevault TUI
// ABOUTME: Routes between login, file, and admin screens based on session role

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/session"
	"github.com/filevault/cli/internal/tui/debuglog"
	"github.com/filevault/cli/internal/tui/files"
	"github.com/filevault/cli/internal/tui/icons"
	"github.com/filevault/cli/internal/tui/login"
	"github.com/filevault/cli/internal/tui/styles"
	"github.com/filevault/cli/internal/tui/users"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenFiles
	ScreenUsers
)

const minTerminalWidth = 60

// loggedOutMsg is sent after the best-effort logout request completes.
// Local state is already cleared by then; the outcome is ignored.
type loggedOutMsg struct{}

// App is the root model for the TUI
type App struct {
	client *client.Client
	store  *session.Store
	screen Screen
	sess   *session.Session
	width  int
	height int

	// Child models
	login *login.Login
	files *files.Model
	users *users.Model
}

// New creates a new TUI application. When a persisted session exists the
// app skips the login screen and lands on the role's home screen.
func New(apiClient *client.Client, store *session.Store, existing *session.Session) *App {
	a := &App{
		client: apiClient,
		store:  store,
	}
	if existing != nil {
		a.enterSession(existing)
	} else {
		a.screen = ScreenLogin
		a.login = login.New(apiClient)
	}
	return a
}

// enterSession switches to the landing screen for the session's role:
// admins manage users, everyone else manages files.
func (a *App) enterSession(sess *session.Session) {
	a.sess = sess
	if sess.IsAdmin() {
		a.screen = ScreenUsers
		a.users = users.New(a.client)
	} else {
		a.screen = ScreenFiles
		a.files = files.New(a.client)
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	switch a.screen {
	case ScreenFiles:
		return a.files.Init()
	case ScreenUsers:
		return a.users.Init()
	default:
		return a.login.Init()
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.forward(msg)

	case login.LoggedInMsg:
		return a.handleLoggedIn(msg)

	case login.CancelledMsg:
		return a, tea.Quit

	case files.LogoutRequestedMsg, users.LogoutRequestedMsg:
		return a.handleLogout()

	case loggedOutMsg:
		return a, nil
	}

	return a.forward(msg)
}

// forward routes a message to the active screen's model
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		if a.login == nil {
			return a, nil
		}
		model, cmd := a.login.Update(msg)
		a.login = model.(*login.Login)
		return a, cmd
	case ScreenFiles:
		if a.files == nil {
			return a, nil
		}
		model, cmd := a.files.Update(msg)
		a.files = model.(*files.Model)
		return a, cmd
	case ScreenUsers:
		if a.users == nil {
			return a, nil
		}
		model, cmd := a.users.Update(msg)
		a.users = model.(*users.Model)
		return a, cmd
	}
	return a, nil
}

// handleLoggedIn persists the new session and lands on the role's screen
func (a *App) handleLoggedIn(msg login.LoggedInMsg) (tea.Model, tea.Cmd) {
	state := &session.State{
		Session: *msg.Session,
		Cookies: a.client.SessionCookies(),
	}
	if err := a.store.Save(state); err != nil {
		debuglog.Error("save session", err)
	}

	a.login = nil
	a.enterSession(msg.Session)
	return a, a.Init()
}

// handleLogout clears local state first, then notifies the backend.
// The local reset is guaranteed; the network call is best-effort and its
// failure is deliberately ignored.
func (a *App) handleLogout() (tea.Model, tea.Cmd) {
	if err := a.store.Clear(); err != nil {
		debuglog.Error("clear session", err)
	}
	a.sess = nil
	a.files = nil
	a.users = nil
	a.screen = ScreenLogin
	a.login = login.New(a.client)

	notify := func() tea.Msg {
		if err := a.client.Logout(context.Background()); err != nil {
			debuglog.Error("logout request", err)
		}
		return loggedOutMsg{}
	}
	return a, tea.Batch(a.login.Init(), notify)
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			content = a.login.View()
		}
	case ScreenFiles:
		if a.files != nil {
			content = a.files.View()
		}
	case ScreenUsers:
		if a.users != nil {
			content = a.users.View()
		}
	}

	panel := styles.ActivePanel.Width(a.panelWidth()).Render(content)
	return a.renderHeader() + "\n" + panel + "\n" + a.renderFooter()
}

// panelWidth calculates the width for the content panel
func (a *App) panelWidth() int {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width - 4
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("FileVault"))

	rightText := ""
	if a.sess != nil {
		rightText = contextStyle.Render(fmt.Sprintf("%s (%s)", a.sess.Username, a.sess.Role)) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts for the screen
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Enter Submit", "Esc Quit"}
	case ScreenFiles:
		shortcuts = []string{"u Upload", "o Download", "d Delete", "r Refresh", "L Logout", "q Quit"}
	case ScreenUsers:
		shortcuts = []string{"n New", "d Delete", "r Refresh", "L Logout", "q Quit"}
	}

	var styled []string
	var plain []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		plain = append(plain, s)
	}

	leftText := " " + strings.Join(styled, "  ")
	leftPlain := " " + strings.Join(plain, "  ")

	fillWidth := width - 4 - lipgloss.Width(leftPlain)
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + "─╯"
	return borderStyle.Render(footer)
}

// Run starts the TUI, resuming a persisted session when one exists
func Run(apiClient *client.Client, store *session.Store) error {
	if err := debuglog.Init(session.DefaultConfigDir()); err == nil {
		defer debuglog.Close()
	}

	var existing *session.Session
	if state, err := store.Load(); err == nil && state != nil {
		if err := apiClient.SetSessionCookies(state.Cookies); err == nil {
			existing = &state.Session
		}
	}

	app := New(apiClient, store, existing)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
