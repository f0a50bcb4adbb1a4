package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// ANSI color codes used for --color output.
const (
	reset   = "\033[0m"
	magenta = "\033[35m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	bold    = "\033[1m"
)

// TextFormatter renders command responses as aligned plain text.
type TextFormatter struct {
	w   io.Writer
	cfg Config
}

func NewTextFormatter(w io.Writer, cfg Config) *TextFormatter {
	return &TextFormatter{w: w, cfg: cfg}
}

func (f *TextFormatter) colorize(s, color string) string {
	if !f.cfg.ShowColors {
		return s
	}
	return color + s + reset
}

// Chunks renders query_index/search_semantic results: one block per chunk,
// a path:line-range header with symbol names and score, followed by the
// chunk content only in verbose mode.
func (f *TextFormatter) Chunks(chunks []model.CodeChunk) error {
	if len(chunks) == 0 {
		_, err := fmt.Fprintln(f.w, "no matches")
		return err
	}
	for i, c := range chunks {
		header := fmt.Sprintf("%s:%d-%d", c.Path, c.StartLine, c.EndLine)
		if _, err := fmt.Fprintf(f.w, "%s", f.colorize(header, magenta)); err != nil {
			return err
		}
		if len(c.SymbolNames) > 0 {
			if _, err := fmt.Fprintf(f.w, "  %s", strings.Join(c.SymbolNames, ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(f.w, "  %s\n", f.colorize(fmt.Sprintf("score=%.4f", c.Score), yellow)); err != nil {
			return err
		}
		if f.cfg.Verbose && c.Content != "" {
			for _, line := range strings.Split(c.Content, "\n") {
				if _, err := fmt.Fprintf(f.w, "  %s\n", line); err != nil {
					return err
				}
			}
		}
		if i < len(chunks)-1 {
			if _, err := fmt.Fprintln(f.w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Symbols renders get_file_symbols results, sorted by start line.
func (f *TextFormatter) Symbols(symbols []model.Symbol) error {
	sorted := make([]model.Symbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	for _, s := range sorted {
		parent := ""
		if s.ParentName != "" {
			parent = fmt.Sprintf(" (in %s)", s.ParentName)
		}
		if _, err := fmt.Fprintf(f.w, "%s:%d  %s %s%s\n",
			s.Path, s.StartLine, f.colorize(string(s.Kind), green), s.Name, parent); err != nil {
			return err
		}
	}
	return nil
}

// Files renders search_files results, one path per line.
func (f *TextFormatter) Files(paths []string) error {
	for _, p := range paths {
		if _, err := fmt.Fprintln(f.w, f.colorize(p, magenta)); err != nil {
			return err
		}
	}
	return nil
}

// Stats renders get_index_stats.
func (f *TextFormatter) Stats(stats model.CodebaseStats) error {
	if _, err := fmt.Fprintf(f.w, "%s\n", f.colorize(stats.RootPath, bold)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.w, "files indexed: %d\n", stats.TotalFiles); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.w, "indexed at:    %s\n", stats.IndexedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	langs := make([]string, 0, len(stats.Languages))
	for l := range stats.Languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		if _, err := fmt.Fprintf(f.w, "  %-14s %d\n", l, stats.Languages[l]); err != nil {
			return err
		}
	}
	return nil
}

// IndexResult renders index_codebase.
func (f *TextFormatter) IndexResult(s IndexSummary) error {
	status := "ok"
	if !s.Success {
		status = "failed"
	}
	if _, err := fmt.Fprintf(f.w, "index %s in %dms: %d files, %d symbols\n",
		status, s.DurationMS, s.TotalFiles, s.TotalSymbols); err != nil {
		return err
	}
	if len(s.Languages) > 0 {
		if _, err := fmt.Fprintf(f.w, "languages: %s\n", strings.Join(s.Languages, ", ")); err != nil {
			return err
		}
	}
	if len(s.Errors) > 0 {
		if _, err := fmt.Fprintf(f.w, "%d errors:\n", len(s.Errors)); err != nil {
			return err
		}
		for _, e := range s.Errors {
			if _, err := fmt.Fprintf(f.w, "  %s\n", e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *TextFormatter) Close() error { return nil }
