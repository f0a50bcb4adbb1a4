package output

import (
	"encoding/json"
	"io"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// JSONFormatter renders each command response as a single indented JSON
// document with HTML-escaping disabled, without a "type"/"data" envelope.
type JSONFormatter struct {
	enc *json.Encoder
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return &JSONFormatter{enc: enc}
}

func (f *JSONFormatter) Chunks(chunks []model.CodeChunk) error {
	if chunks == nil {
		chunks = []model.CodeChunk{}
	}
	return f.enc.Encode(chunks)
}

func (f *JSONFormatter) Symbols(symbols []model.Symbol) error {
	if symbols == nil {
		symbols = []model.Symbol{}
	}
	return f.enc.Encode(symbols)
}

func (f *JSONFormatter) Files(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	return f.enc.Encode(paths)
}

func (f *JSONFormatter) Stats(stats model.CodebaseStats) error {
	return f.enc.Encode(stats)
}

func (f *JSONFormatter) IndexResult(summary IndexSummary) error {
	return f.enc.Encode(summary)
}

func (f *JSONFormatter) Close() error { return nil }
