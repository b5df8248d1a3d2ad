// ABOUTME: Download command for the filevault CLI
// ABOUTME: Fetches a file from the vault by its identifier

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

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file from your vault",
	Long: `Download a file from your vault by its identifier.

Without --output the file is written under the name the backend reports.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runDownload(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Write to this path instead of the server-reported name")
}

// runDownload fetches the file and returns exit code. The server reports
// the filename in the response, so the body lands in a temporary file that
// is renamed once the name is known.
func runDownload(ctx context.Context, w io.Writer, fileID string) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	tmp, err := os.CreateTemp(".", ".filevault-*")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	name, err := c.Download(ctx, fileID, tmp)
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if downloadOutput != "" {
		name = downloadOutput
	}
	if name == "" {
		name = fileID
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Downloaded %s\n", name)
	return 0
}
