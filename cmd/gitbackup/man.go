package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:    "man",
		Short:  "Render man pages",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			header := &doc.GenManHeader{
				Title:   "GITBACKUP",
				Section: "1",
				Source:  "gitbackup " + version,
				Manual:  "User Commands",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return fmt.Errorf("failed to render man pages: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Man pages written to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "man", "Output directory")
	cmd.MarkFlagDirname("dir")

	return cmd
}
