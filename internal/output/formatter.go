// Package output renders the six command responses (index_codebase,
// query_index, get_index_stats, get_file_symbols, search_files,
// search_semantic) as either human-readable text or machine-readable JSON.
//
// The pluggable Formatter interface plus a format-selecting factory renders
// each response; there is no ripgrep-style Match/Submatch/JSONMessage
// streaming protocol here, since this CLI emits whole result sets for a
// query, not a line-by-line match stream.
package output

import (
	"io"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// Format selects which Formatter a Factory builds.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// IndexSummary is the render-time shape of an index_codebase response,
// decoupled from pipeline.IndexResult so this package never imports the
// orchestrator.
type IndexSummary struct {
	Success      bool
	TotalFiles   int
	TotalSymbols int
	Languages    []string
	DurationMS   int64
	Errors       []string
}

// Config carries formatting knobs such as color and verbosity.
type Config struct {
	ShowColors bool
	Verbose    bool
}

// Formatter is the interface every one of the six command responses renders
// through.
type Formatter interface {
	Chunks(chunks []model.CodeChunk) error
	Symbols(symbols []model.Symbol) error
	Files(paths []string) error
	Stats(stats model.CodebaseStats) error
	IndexResult(summary IndexSummary) error
	Close() error
}

// NewFormatter builds a Formatter for the given format, writing to w.
func NewFormatter(format Format, w io.Writer, cfg Config) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(w)
	default:
		return NewTextFormatter(w, cfg)
	}
}
