package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hybridgrep/hybridgrep/internal/embedding"
	"github.com/hybridgrep/hybridgrep/internal/logging"
	"github.com/hybridgrep/hybridgrep/internal/output"
	"github.com/hybridgrep/hybridgrep/internal/parser"
	"github.com/hybridgrep/hybridgrep/internal/pipeline"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cliConfig is a flat Config struct trimmed to the knobs the six
// orchestrator operations actually need.
type cliConfig struct {
	Root      string
	DataDir   string
	Workers   int
	ModelID   string
	JSON      bool
	Verbose   bool
	Color     bool
	LogLevel  string
	LogFormat string
	MaxResults int
}

var config cliConfig

var rootCmd = &cobra.Command{
	Use:     "hybridgrep",
	Short:   "Hybrid symbol/full-text/semantic search over a codebase",
	Version: fmt.Sprintf("%s (%s, built %s)", version, commit, date),
	Long: `hybridgrep indexes a codebase with a tree-sitter symbol extractor, a BM25
full-text index, and a local embedding-backed vector index, then answers
queries by fusing all three with Reciprocal Rank Fusion.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&config.Root, "root", ".", "codebase root to operate on")
	flags.StringVar(&config.DataDir, "data-dir", "", "cache directory for the persisted index (default: OS cache dir)")
	flags.IntVarP(&config.Workers, "workers", "w", 0, "parallel worker count (default: GOMAXPROCS)")
	flags.StringVar(&config.ModelID, "model-id", "hashembed-v1", "embedding model identifier recorded in the cache header")
	flags.BoolVar(&config.JSON, "json", false, "emit JSON instead of text")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "show additional detail in text output")
	flags.BoolVar(&config.Color, "color", false, "colorize text output")
	flags.StringVar(&config.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&config.LogFormat, "log-format", "text", "log format: text, json")
	flags.IntVar(&config.MaxResults, "max", 50, "maximum results to return")

	viper.BindPFlags(flags)
}

func initConfig() {
	viper.SetConfigName(".hybridgrep")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetEnvPrefix("HYBRIDGREP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() logging.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	format := logging.FormatText
	if strings.ToLower(config.LogFormat) == "json" {
		format = logging.FormatJSON
	}
	return logging.New(format, level)
}

// newOrchestrator constructs an Orchestrator per the ambient config flags.
// The parser is built through a LanguageRegistry so every supported
// language has its tree-sitter grammar and capture queries registered;
// a bare TreeSitterParser has no languages and parses nothing.
func newOrchestrator() (*pipeline.Orchestrator, error) {
	registry, err := parser.NewLanguageRegistry()
	if err != nil {
		return nil, fmt.Errorf("build language registry: %w", err)
	}
	cfg := pipeline.Config{
		AppDataDir: config.DataDir,
		Workers:    config.Workers,
		ModelID:    config.ModelID,
		Logger:     newLogger(),
	}
	return pipeline.New(cfg, registry.GetParser(), embedding.NewHashEmbedder()), nil
}

// ensureIndexed gets root into the Ready state: reuse a fresh on-disk cache
// via LoadCache, falling back to a full IndexCodebase build on a cache miss
// or staleness. Every read-only command (query/stats/symbols/files/semantic)
// goes through this so a bare invocation "just works" without a separate
// index step first.
func ensureIndexed(ctx context.Context, o *pipeline.Orchestrator, root string) error {
	hit, err := o.LoadCache(root)
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	if hit {
		return nil
	}
	_, err = o.IndexCodebase(ctx, root, pipeline.IndexCodebaseOptions{})
	if err != nil {
		return fmt.Errorf("index codebase: %w", err)
	}
	return nil
}

func resolveRoot() (string, error) {
	return filepath.Abs(config.Root)
}

func newFormatter(w io.Writer) output.Formatter {
	format := output.FormatText
	if config.JSON {
		format = output.FormatJSON
	}
	return output.NewFormatter(format, w, output.Config{ShowColors: config.Color, Verbose: config.Verbose})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 10*time.Minute)
}
