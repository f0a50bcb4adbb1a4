package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/pipeline"
)

var (
	queryKinds    []string
	queryPatterns []string
	queryPreset   string
)

var queryCmd = &cobra.Command{
	Use:   "query <keywords...>",
	Short: "Hybrid search: traditional + full-text + semantic, fused with RRF",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringSliceVar(&queryKinds, "kind", nil, "symbol kinds (Function,Method,Class,...) passed on the request; results are not filtered by kind")
	queryCmd.Flags().StringSliceVar(&queryPatterns, "path", nil, "glob patterns passed on the request; results are not filtered by path")
	queryCmd.Flags().StringVar(&queryPreset, "preset", "", "force a fusion preset instead of auto-classifying the query: balanced, exact, semantic, content")
}

func hybridPreset(name string) (*model.HybridConfig, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "balanced":
		c := model.PresetBalanced()
		return &c, nil
	case "exact":
		c := model.PresetExactMatch()
		return &c, nil
	case "semantic":
		c := model.PresetSemanticFocused()
		return &c, nil
	case "content":
		c := model.PresetContentFocused()
		return &c, nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	preset, err := hybridPreset(queryPreset)
	if err != nil {
		return err
	}

	kinds := make([]model.Kind, len(queryKinds))
	for i, k := range queryKinds {
		kinds[i] = model.Kind(k)
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

	chunks, err := o.QueryIndex(ctx, pipeline.IndexQuery{
		Keywords:     args,
		SymbolKinds:  kinds,
		FilePatterns: queryPatterns,
		MaxResults:   config.MaxResults,
		HybridConfig: preset,
	})
	if err != nil {
		return fmt.Errorf("query index: %w", err)
	}

	return newFormatter(cmd.OutOrStdout()).Chunks(chunks)
}
