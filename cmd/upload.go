// ABOUTME: Upload command for the filevault CLI
// ABOUTME: Sends local files to the vault and reports the refreshed count

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

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload files to your vault",
	Long: `Upload one or more local files to your vault.

All paths are sent in a single request; if any file cannot be read locally,
nothing is uploaded.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUpload(ctx, os.Stdout, args)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

// runUpload sends the files and returns exit code
func runUpload(ctx context.Context, w io.Writer, paths []string) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	syncer := collection.New(c.ListFiles)
	files, err := syncer.Apply(ctx, func(ctx context.Context) error {
		_, err := c.Upload(ctx, paths)
		return err
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatFilesJSON(files))
		return 0
	}

	fmt.Fprintf(w, "Uploaded %d file(s). %d file(s) in vault.\n", len(paths), len(files))
	return 0
}
