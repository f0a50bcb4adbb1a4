package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List get_file_symbols for a single file within --root",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
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

	symbols, err := o.GetFileSymbols(args[0])
	if err != nil {
		return fmt.Errorf("get file symbols: %w", err)
	}

	return newFormatter(cmd.OutOrStdout()).Symbols(symbols)
}
