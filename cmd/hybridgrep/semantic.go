package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var semanticCmd = &cobra.Command{
	Use:   "semantic <query>",
	Short: "search_semantic: embed the query and run a direct vector-index search",
	Long: `Bypasses the full RRF fusion (use "query --preset semantic" for that) and
goes straight to the vector index, for callers that specifically want nearest
embeddings rather than a blended ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSemantic,
}

func init() {
	rootCmd.AddCommand(semanticCmd)
}

func runSemantic(cmd *cobra.Command, args []string) error {
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

	chunks, err := o.SearchSemantic(ctx, args[0], config.MaxResults)
	if err != nil {
		return fmt.Errorf("search semantic: %w", err)
	}

	return newFormatter(cmd.OutOrStdout()).Chunks(chunks)
}
