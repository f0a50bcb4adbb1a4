package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files <query>",
	Short: "search_files: path-component match over indexed file paths",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := ensureIndexed(ctx, o, root); err != nil {
		return err
	}

	paths, err := o.SearchFiles(args[0], config.MaxResults)
	if err != nil {
		return fmt.Errorf("search files: %w", err)
	}

	return newFormatter(cmd.OutOrStdout()).Files(paths)
}
