// ABOUTME: Rm command for the filevault CLI
// ABOUTME: Deletes a file from the vault by its identifier

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
	"github.com/filevault/cli/internal/collection"
)

var rmCmd = &cobra.Command{
	Use:   "rm <file-id>",
	Short: "Delete a file from your vault",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRm(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

// runRm deletes the file and returns exit code
func runRm(ctx context.Context, w io.Writer, fileID string) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	syncer := collection.New(c.ListFiles)
	files, err := syncer.Apply(ctx, func(ctx context.Context) error {
		return c.DeleteFile(ctx, fileID)
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatFilesJSON(files))
		return 0
	}

	fmt.Fprintf(w, "Deleted. %d file(s) remain.\n", len(files))
	return 0
}
