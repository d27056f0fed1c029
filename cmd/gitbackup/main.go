package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errFailed signals a run whose errors were already printed.
var errFailed = errors.New("backup failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitbackup",
		Short: "Manage git repositories backup",
		Long: `Mirror every repository of a GitHub organization into a local directory.
Missing repositories are cloned, existing ones are pulled.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.DisableAutoGenTag = true

	// Add subcommands
	cmd.AddCommand(
		newBackupCmd(),
		newCompletionCmd(),
		newManCmd(),
		newVersionCmd(),
	)

	return cmd
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
