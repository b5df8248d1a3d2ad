// ABOUTME: Users command group for the filevault CLI
// ABOUTME: Admin operations for listing, creating, and deleting accounts

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/collection"
	"github.com/filevault/cli/internal/session"
)

var (
	createUsername string
	createPassword string
	createRole     string
	deleteYes      bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts (admin only)",
	Long: `Manage user accounts. The backend only allows these operations for
admin sessions; other roles get a permission error.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUsersList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUsersCreate(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user account",
	Long: `Delete a user account and every file it owns.

Deletion asks for confirmation unless --yes is given. Admin accounts
cannot be deleted; the backend rejects the request.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUsersDelete(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersCreateCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username for the new account")
	usersCreateCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password for the new account")
	usersCreateCmd.Flags().StringVar(&createRole, "role", session.RoleUser, "Role for the new account (user or admin)")

	usersDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

// runUsersList lists all accounts and returns exit code
func runUsersList(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	users, err := c.ListUsers(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUsersJSON(users))
	} else {
		fmt.Fprintln(w, formatUsersHuman(users))
	}
	return 0
}

// runUsersCreate creates an account and returns exit code
func runUsersCreate(ctx context.Context, w io.Writer) int {
	if createUsername == "" || createPassword == "" {
		fmt.Fprintln(w, "Error: --username and --password are required")
		return 2
	}
	if createRole != session.RoleUser && createRole != session.RoleAdmin {
		fmt.Fprintln(w, "Error: --role must be user or admin")
		return 2
	}

	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	syncer := collection.New(c.ListUsers)
	users, err := syncer.Apply(ctx, func(ctx context.Context) error {
		return c.CreateUser(ctx, createUsername, createPassword, createRole)
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUsersJSON(users))
		return 0
	}

	fmt.Fprintf(w, "Created %s (%s). %d account(s) total.\n", createUsername, createRole, len(users))
	return 0
}

// runUsersDelete deletes an account and returns exit code
func runUsersDelete(ctx context.Context, w io.Writer, userID string) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	if !deleteYes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete user %s and all their files?", userID)).
			Value(&confirmed)
		if err := huh.NewForm(huh.NewGroup(prompt)).WithTheme(huh.ThemeBase()).Run(); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if !confirmed {
			fmt.Fprintln(w, "Aborted.")
			return 0
		}
	}

	syncer := collection.New(c.ListUsers)
	users, err := syncer.Apply(ctx, func(ctx context.Context) error {
		return c.DeleteUser(ctx, userID)
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUsersJSON(users))
		return 0
	}

	fmt.Fprintf(w, "Deleted. %d account(s) remain.\n", len(users))
	return 0
}

// formatUsersHuman formats the account list for human readability
func formatUsersHuman(users []client.UserRecord) string {
	if len(users) == 0 {
		return "No users."
	}

	var sb strings.Builder
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("%-8s %s (%s)\n", u.UserID, u.Username, u.Role))
	}
	sb.WriteString(fmt.Sprintf("\n%d account(s)", len(users)))
	return sb.String()
}

// formatUsersJSON formats the account list as JSON
func formatUsersJSON(users []client.UserRecord) string {
	if users == nil {
		users = []client.UserRecord{}
	}
	data, _ := json.MarshalIndent(users, "", "  ")
	return string(data)
}
