// ABOUTME: Entry point for the filevault CLI
// ABOUTME: Terminal client for the FileVault file and user management API

package main

import (
	"fmt"
	"os"

	"github.com/filevault/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
