// ABOUTME: Local session state for the filevault CLI
// ABOUTME: Caches identity and session cookies in the XDG config directory

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Role values returned by the backend.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session is the locally cached identity from a successful login.
// It is a denormalized copy for UI decisions only; the server remains
// the authority on authorization.
type Session struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	UserID   string `json:"user_id"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Cookie is the persisted subset of an HTTP cookie. The backend issues a
// single opaque session cookie; only name and value matter to the client.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// State is everything the client persists between invocations: the cached
// identity plus the session cookies needed to authenticate requests.
type State struct {
	Session Session  `json:"session"`
	Cookies []Cookie `json:"cookies"`
}

// Store reads and writes session state under a config directory.
type Store struct {
	configDir string
}

// NewStore creates a store rooted at the given config directory.
func NewStore(configDir string) *Store {
	return &Store{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filevault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "filevault")
}

// stateFile returns the path to the session state JSON
func (st *Store) stateFile() string {
	return filepath.Join(st.configDir, "session.json")
}

// Load reads persisted session state. A missing or unreadable file means
// no session: callers get nil, not an error, so a corrupt cache never
// blocks a fresh login.
func (st *Store) Load() (*State, error) {
	data, err := os.ReadFile(st.stateFile())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// Invalid JSON, treat as logged out
		return nil, nil
	}
	return &state, nil
}

// Save writes session state to disk. The file holds a session cookie, so
// it is not world-readable.
func (st *Store) Save(state *State) error {
	if err := os.MkdirAll(st.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(st.stateFile(), data, 0600)
}

// Clear removes all persisted session state. Clearing an absent session
// is not an error; logout must always succeed locally.
func (st *Store) Clear() error {
	err := os.Remove(st.stateFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
