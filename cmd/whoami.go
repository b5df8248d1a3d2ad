// ABOUTME: Whoami command for the filevault CLI
// ABOUTME: Shows the identity cached with the persisted session

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in identity",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runWhoami(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami prints the cached identity without contacting the backend
func runWhoami(w io.Writer) int {
	state, err := newStore().Load()
	if err != nil || state == nil {
		fmt.Fprintln(w, "Not logged in.")
		return 1
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(state.Session, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "%s (%s)\n", state.Session.Username, state.Session.Role)
	return 0
}
