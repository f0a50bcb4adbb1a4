package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

func TestJSONFormatterChunksRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	chunks := []model.CodeChunk{{Path: "a.go", StartLine: 1, EndLine: 2, Score: 0.9}}
	if err := f.Chunks(chunks); err != nil {
		t.Fatalf("Chunks: %v", err)
	}

	var got []model.CodeChunk
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Path != "a.go" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}

func TestJSONFormatterEmptySliceNotNull(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	if err := f.Files(nil); err != nil {
		t.Fatalf("Files: %v", err)
	}
	if buf.String() == "null\n" {
		t.Fatalf("expected empty array, got null")
	}
	var got []string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %+v", got)
	}
}
