// ABOUTME: File dashboard screen for the authenticated user
// ABOUTME: Lists files and drives upload, download, delete with refresh-after-write

package files

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dustin/go-humanize"
	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/collection"
	"github.com/filevault/cli/internal/tui/debuglog"
	"github.com/filevault/cli/internal/tui/icons"
	"github.com/filevault/cli/internal/tui/styles"
)

// LogoutRequestedMsg asks the app to tear down the session
type LogoutRequestedMsg struct{}

// state represents the current UI state
type state int

const (
	stateList state = iota
	stateUpload
)

// loadedMsg is sent when the file collection has been fetched
type loadedMsg struct {
	files []client.FileRecord
	err   error
}

// syncedMsg is sent after a mutation and its follow-up refresh. On a
// failed mutation files is nil and the previous snapshot stays rendered.
type syncedMsg struct {
	action string
	files  []client.FileRecord
	err    error
}

// downloadedMsg is sent when a download finishes; no collection change
type downloadedMsg struct {
	filename string
	err      error
}

// Model is the file list screen
type Model struct {
	client *client.Client
	syncer *collection.Syncer[client.FileRecord]

	files   []client.FileRecord
	cursor  int
	state   state
	loading bool
	status  string
	errMsg  string

	pathInput textinput.Model
	width     int
	height    int
}

// New creates the file screen for the current session
func New(apiClient *client.Client) *Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/file (separate multiple paths with spaces)"
	ti.CharLimit = 512
	ti.Width = 60

	return &Model{
		client:    apiClient,
		syncer:    collection.New(apiClient.ListFiles),
		state:     stateList,
		pathInput: ti,
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
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateList:
			return m.updateList(msg)
		case stateUpload:
			return m.updateUpload(msg)
		}

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			debuglog.Error("list files", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.replace(msg.files)
		return m, nil

	case syncedMsg:
		m.loading = false
		if msg.err != nil {
			// Snapshot untouched: a failed write never refreshes the list
			m.errMsg = msg.err.Error()
			debuglog.Error(msg.action, msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.action
		m.replace(msg.files)
		return m, nil

	case downloadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			debuglog.Error("download", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Downloaded " + msg.filename
		return m, nil
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
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "u":
		m.state = stateUpload
		m.pathInput.Focus()
		return m, textinput.Blink
	case "d":
		if f, ok := m.selected(); ok {
			return m, m.delete(f)
		}
	case "o":
		if f, ok := m.selected(); ok {
			return m, m.download(f)
		}
	case "L":
		return m, func() tea.Msg { return LogoutRequestedMsg{} }
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateList
		m.pathInput.SetValue("")
		m.pathInput.Blur()
		return m, nil
	case "enter":
		paths := strings.Fields(m.pathInput.Value())
		// The input is cleared on submission regardless of the server's
		// response, so the same selection is never re-submitted by accident.
		m.pathInput.SetValue("")
		m.pathInput.Blur()
		m.state = stateList
		if len(paths) == 0 {
			return m, nil
		}
		m.loading = true
		return m, m.upload(paths)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// selected returns the file under the cursor
func (m *Model) selected() (client.FileRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.files) {
		return client.FileRecord{}, false
	}
	return m.files[m.cursor], true
}

// replace swaps in a full snapshot; the list is never patched in place
func (m *Model) replace(files []client.FileRecord) {
	m.files = files
	if m.cursor >= len(m.files) {
		m.cursor = len(m.files) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		files, err := m.syncer.Refresh(context.Background())
		return loadedMsg{files: files, err: err}
	}
}

func (m *Model) upload(paths []string) tea.Cmd {
	return func() tea.Msg {
		files, err := m.syncer.Apply(context.Background(), func(ctx context.Context) error {
			_, err := m.client.Upload(ctx, paths)
			return err
		})
		action := fmt.Sprintf("Uploaded %d file(s)", len(paths))
		return syncedMsg{action: action, files: files, err: err}
	}
}

func (m *Model) delete(f client.FileRecord) tea.Cmd {
	// File deletion needs no confirmation, unlike user deletion
	return func() tea.Msg {
		files, err := m.syncer.Apply(context.Background(), func(ctx context.Context) error {
			return m.client.DeleteFile(ctx, f.FileID)
		})
		return syncedMsg{action: "Deleted " + f.Filename, files: files, err: err}
	}
}

func (m *Model) download(f client.FileRecord) tea.Cmd {
	return func() tea.Msg {
		name := f.Filename
		out, err := os.Create(name)
		if err != nil {
			return downloadedMsg{err: err}
		}
		defer out.Close()

		serverName, err := m.client.Download(context.Background(), f.FileID, out)
		if err != nil {
			os.Remove(name)
			return downloadedMsg{err: err}
		}
		if serverName == "" {
			serverName = name
		}
		return downloadedMsg{filename: serverName}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.File.String() + " Your Files"))
	sb.WriteString("\n\n")

	if m.state == stateUpload {
		sb.WriteString("Upload files\n")
		sb.WriteString(m.pathInput.View())
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("Enter to upload, Esc to cancel"))
		return sb.String()
	}

	switch {
	case m.loading:
		sb.WriteString(styles.Subtitle.Render("Loading..."))
		sb.WriteString("\n")
	case len(m.files) == 0:
		sb.WriteString(styles.MutedRow.Render("No files yet. Press u to upload."))
		sb.WriteString("\n")
	default:
		for i, f := range m.files {
			line := f.Filename
			if d := formatUploadDate(f.UploadDate); d != "" {
				line += "  " + styles.MutedRow.Render(d)
			}
			if i == m.cursor {
				sb.WriteString(styles.SelectedRow.Render("> " + line))
			} else {
				sb.WriteString(styles.NormalRow.Render("  " + line))
			}
			sb.WriteString("\n")
		}
	}

	if m.errMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusError.Render(icons.Critical.String() + " " + m.errMsg))
	} else if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " " + m.status))
	}

	return sb.String()
}

// formatUploadDate renders the server timestamp as a relative time.
// The backend emits RFC 1123 dates; anything else passes through as-is.
func formatUploadDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return humanize.Time(t)
		}
	}
	return raw
}
