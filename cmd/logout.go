// ABOUTME: Logout command for the filevault CLI
// ABOUTME: Clears the persisted session and notifies the backend best-effort

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the persisted session",
	Long: `Clear the persisted session.

The local session is always removed, even when the backend is unreachable.
The backend is notified so the server-side session is invalidated too, but
a failed notification does not keep you logged in.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears local state first, then notifies the backend
func runLogout(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())
	store := newStore()

	state := loadSession(c, store)
	if state == nil {
		fmt.Fprintln(w, "Not logged in.")
		return 0
	}

	if err := store.Clear(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	// Best-effort: the outcome never undoes the local reset
	if err := c.Logout(ctx); err != nil {
		fmt.Fprintln(w, "Logged out locally; the backend could not be notified.")
		return 0
	}

	fmt.Fprintln(w, "Logged out.")
	return 0
}
