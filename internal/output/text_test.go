package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

func TestTextFormatterChunksEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf, Config{})
	if err := f.Chunks(nil); err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if !strings.Contains(buf.String(), "no matches") {
		t.Fatalf("expected no-matches message, got %q", buf.String())
	}
}

func TestTextFormatterChunksHeader(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf, Config{})
	chunks := []model.CodeChunk{
		{Path: "a/b.go", StartLine: 10, EndLine: 20, SymbolNames: []string{"Foo"}, Score: 0.5},
	}
	if err := f.Chunks(chunks); err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a/b.go:10-20") {
		t.Fatalf("missing header in %q", out)
	}
	if !strings.Contains(out, "Foo") {
		t.Fatalf("missing symbol name in %q", out)
	}
}

func TestTextFormatterSymbolsSortedByLine(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf, Config{})
	symbols := []model.Symbol{
		{Name: "Second", Path: "a.go", StartLine: 20, Kind: model.KindFunction},
		{Name: "First", Path: "a.go", StartLine: 5, Kind: model.KindFunction},
	}
	if err := f.Symbols(symbols); err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "First") > strings.Index(out, "Second") {
		t.Fatalf("expected First before Second, got %q", out)
	}
}

func TestTextFormatterStats(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf, Config{})
	stats := model.CodebaseStats{
		TotalFiles: 3,
		Languages:  map[string]int{"Go": 2, "Python": 1},
		RootPath:   "/repo",
		IndexedAt:  time.Unix(0, 0),
	}
	if err := f.Stats(stats); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"/repo", "files indexed: 3", "Go", "Python"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}

func TestTextFormatterIndexResultWithErrors(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf, Config{})
	s := IndexSummary{Success: true, TotalFiles: 4, TotalSymbols: 12, Languages: []string{"Go"}, DurationMS: 150, Errors: []string{"bad.go: parse error"}}
	if err := f.IndexResult(s); err != nil {
		t.Fatalf("IndexResult: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ok") || !strings.Contains(out, "1 errors") || !strings.Contains(out, "bad.go") {
		t.Fatalf("unexpected output %q", out)
	}
}
