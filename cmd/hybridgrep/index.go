package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hybridgrep/hybridgrep/internal/output"
	"github.com/hybridgrep/hybridgrep/internal/pipeline"
)

var indexForceRebuild bool
var indexWatch bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build (or rebuild) the hybrid index for --root",
	Long: `Walk --root, parse every supported source file with tree-sitter, and
populate the symbol, full-text, and vector indices. Persists to --data-dir
so a later invocation can reload instead of rebuilding, unless the tree has
changed since the last build.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForceRebuild, "rebuild", false, "force a full rebuild even if the on-disk cache looks fresh")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "after the initial build, watch --root and reindex on changes until interrupted")
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	if !indexForceRebuild {
		// A fresh on-disk cache becomes the Ready index that IndexCodebase then
		// reuses; a miss or an unreadable cache falls through to a full build.
		_, _ = o.LoadCache(root)
	}

	result, err := o.IndexCodebase(ctx, root, pipeline.IndexCodebaseOptions{ForceRebuild: indexForceRebuild})
	if err != nil {
		return fmt.Errorf("index codebase: %w", err)
	}

	f := newFormatter(cmd.OutOrStdout())
	if err := f.IndexResult(output.IndexSummary{
		Success:      result.Success,
		TotalFiles:   result.TotalFiles,
		TotalSymbols: result.TotalSymbols,
		Languages:    result.Languages,
		DurationMS:   result.DurationMS,
		Errors:       result.Errors,
	}); err != nil {
		return err
	}

	if indexWatch {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s for changes (ctrl-c to stop)\n", root)
		return o.Watch(cmd.Context(), root, pipeline.DefaultWatchConfig())
	}
	return nil
}
