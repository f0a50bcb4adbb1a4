package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

func vecNorm(v []float32) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	return math.Sqrt(sumSq)
}

func TestEmbedReturnsUnitVectorOfFixedDimension(t *testing.T) {
	e := NewHashEmbedder()
	v, err := e.Embed(context.Background(), "parse http request body")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != Dim {
		t.Fatalf("len(Embed()) = %d, want %d", len(v), Dim)
	}
	if n := vecNorm(v); math.Abs(n-1.0) > 1e-6 {
		t.Fatalf("||Embed()|| = %f, want ~1.0", n)
	}
}

func TestEmbedIsDeterministicForSameEmbedder(t *testing.T) {
	e := NewHashEmbedder()
	a, _ := e.Embed(context.Background(), "connect to database")
	b, _ := e.Embed(context.Background(), "connect to database")
	if len(a) != len(b) {
		t.Fatal("two Embed() calls on the same text returned different lengths")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed() not deterministic at index %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestEmbedEmptyTextReturnsZeroVector(t *testing.T) {
	e := NewHashEmbedder()
	v, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed(whitespace): %v", err)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("Embed(empty) not all-zero at index %d: %f", i, x)
		}
	}
}

func TestEmbedRespectsCancelledContext(t *testing.T) {
	e := NewHashEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Embed(ctx, "anything"); err == nil {
		t.Fatal("Embed with cancelled context: expected error, got nil")
	}
}

func TestEmbedBatchMatchesIndividualEmbed(t *testing.T) {
	e := NewHashEmbedder()
	texts := []string{"alpha function", "beta struct", "gamma variable"}
	batch, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("EmbedBatch returned %d vectors, want %d", len(batch), len(texts))
	}
	for i, text := range texts {
		single, _ := e.Embed(context.Background(), text)
		for j := range single {
			if single[j] != batch[i][j] {
				t.Fatalf("EmbedBatch[%d] diverges from Embed() at index %d", i, j)
			}
		}
	}
}

func TestAvailableAlwaysTrue(t *testing.T) {
	if !NewHashEmbedder().Available() {
		t.Fatal("HashEmbedder.Available() = false, want true")
	}
}

func TestDeriveTextOrdersNameFirst(t *testing.T) {
	sym := model.Symbol{Name: "ParseRequest", Kind: model.KindFunction, Doc: "parses an incoming request", Signature: "func ParseRequest(r *http.Request) error"}
	text := DeriveText(sym)
	if text[:len("ParseRequest")] != "ParseRequest" {
		t.Fatalf("DeriveText() = %q, want to start with symbol name", text)
	}
}

func TestDeriveTextTruncatesLongSignature(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	sym := model.Symbol{Name: "F", Kind: model.KindFunction, Signature: string(long)}
	text := DeriveText(sym)
	if len(text) > len("F")+1+len(string(model.KindFunction))+1+200+1 {
		t.Fatalf("DeriveText() did not truncate signature, len=%d", len(text))
	}
}
