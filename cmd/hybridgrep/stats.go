package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show get_index_stats for --root",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := o.GetIndexStats()
	if err != nil {
		return fmt.Errorf("get index stats: %w", err)
	}

	return newFormatter(cmd.OutOrStdout()).Stats(stats)
}
