// ABOUTME: Browse command for the filevault CLI
// ABOUTME: Launches the interactive terminal UI

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
	"github.com/filevault/cli/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive terminal UI",
	Long: `Open the interactive terminal UI.

A persisted session is resumed; otherwise the UI starts at the login
screen. Admins land on user management, everyone else on their files.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := client.New(GetAPIURL())
		if err := tui.Run(c, newStore()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
