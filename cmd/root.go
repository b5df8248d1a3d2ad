// ABOUTME: Root command for the filevault CLI
// ABOUTME: Handles global flags, configuration, and session loading

package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
)

const defaultAPIURL = "http://127.0.0.1:5000"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "filevault",
	Short: "CLI for the FileVault backend",
	Long: `filevault is a command-line interface for a FileVault backend.

It manages the files in your vault and, for admins, the user accounts.
Sessions persist across invocations; run 'filevault login' once, then use
the other commands until you log out. Run 'filevault browse' for the
interactive terminal UI.

Environment Variables:
  FILEVAULT_API_URL  Backend API URL (default: http://127.0.0.1:5000)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides FILEVAULT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("FILEVAULT_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newStore returns the session store for the current config directory
func newStore() *session.Store {
	return session.NewStore(session.DefaultConfigDir())
}

// loadSession seeds the client with the persisted cookies and returns the
// cached identity. Returns nil when no usable session is stored.
func loadSession(c *client.Client, store *session.Store) *session.State {
	state, err := store.Load()
	if err != nil || state == nil {
		return nil
	}
	if err := c.SetSessionCookies(state.Cookies); err != nil {
		return nil
	}
	return state
}

// exitCodeFor maps a request failure to an exit code. Requests the backend
// rejected (authentication, permissions, missing resources) exit 1;
// connectivity and local errors exit 2.
func exitCodeFor(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return 1
	}
	return 2
}
