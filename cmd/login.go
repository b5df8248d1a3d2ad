// ABOUTME: Login command for the filevault CLI
// ABOUTME: Establishes a session and persists it for later invocations

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	Long: `Log in to the backend and persist the session.

Credentials not given as flags are prompted for interactively. The session
cookie is stored in the config directory and reused by every other command
until 'filevault logout'.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
}

// runLogin executes the login and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	username, password := loginUsername, loginPassword
	if username == "" || password == "" {
		if err := promptCredentials(&username, &password); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	c := client.New(GetAPIURL())
	sess, err := c.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	state := &session.State{Session: *sess, Cookies: c.SessionCookies()}
	if err := newStore().Save(state); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Logged in as %s (%s)\n", sess.Username, sess.Role)
	if sess.IsAdmin() {
		fmt.Fprintln(w, "Run 'filevault users' to manage accounts.")
	} else {
		fmt.Fprintln(w, "Run 'filevault files' to see your vault.")
	}
	return 0
}

// promptCredentials fills in whichever of username and password is missing
func promptCredentials(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(username))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password))
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeBase()).Run()
}
