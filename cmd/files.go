// ABOUTME: Files command for the filevault CLI
// ABOUTME: Lists the files in the vault of the logged-in user

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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/filevault/cli/internal/client"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the files in your vault",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runFiles(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

// runFiles lists the vault contents and returns exit code
func runFiles(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())
	if loadSession(c, newStore()) == nil {
		fmt.Fprintln(w, "Error: not logged in. Run 'filevault login' first.")
		return 1
	}

	files, err := c.ListFiles(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatFilesJSON(files))
	} else {
		fmt.Fprintln(w, formatFilesHuman(files))
	}
	return 0
}

// formatFilesHuman formats the file list for human readability
func formatFilesHuman(files []client.FileRecord) string {
	if len(files) == 0 {
		return "No files yet. Run 'filevault upload <path>' to add one."
	}

	var sb strings.Builder
	for _, f := range files {
		line := fmt.Sprintf("%-8s %s", f.FileID, f.Filename)
		if d := relativeDate(f.UploadDate); d != "" {
			line += "  (" + d + ")"
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n%d file(s)", len(files)))
	return sb.String()
}

// formatFilesJSON formats the file list as JSON
func formatFilesJSON(files []client.FileRecord) string {
	if files == nil {
		files = []client.FileRecord{}
	}
	data, _ := json.MarshalIndent(files, "", "  ")
	return string(data)
}

// relativeDate renders the server timestamp as a relative time.
// The backend emits RFC 1123 dates; anything else passes through as-is.
func relativeDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return humanize.Time(t)
		}
	}
	return raw
}
