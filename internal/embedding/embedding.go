// Package embedding implements the Embedding Generator: symbol text ->
// fixed-dimension unit vector.
//
// No repository in the retrieved corpus wires a local, CPU-only, small
// (~23MB) transformer-inference binding in Go — every embedding-capable
// example (langchaingo, cloudwego/eino + eino-ext, google.golang.org/genai)
// is a remote-API client, which would violate the local-inference,
// no-network constraint. This package instead implements a deterministic
// feature-hashing embedder behind the same Embedder interface a real model
// binding would satisfy (see DESIGN.md for the full justification), so a
// true sentence-transformer can be dropped in later without touching callers.
package embedding

import (
	"context"
	"hash/maphash"
	"math"
	"strings"
	"time"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/normalize"
)

// Dim is the embedding dimensionality.
const Dim = 384

// BatchTimeout is the default per-batch inference bound.
const BatchTimeout = 30 * time.Second

// Embedder is the capability every embedding backend (hashed or a real model)
// implements. Available() lets callers degrade hybrid search gracefully when
// the embedding subsystem is unavailable.
type Embedder interface {
	Available() bool
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// HashEmbedder is the stdlib-only embedder described in the package doc.
type HashEmbedder struct {
	seed maphash.Seed
}

// NewHashEmbedder constructs a ready-to-use, always-Available embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{seed: maphash.MakeSeed()}
}

// Available always reports true: the hashing embedder has no load step.
func (e *HashEmbedder) Available() bool { return true }

// Embed implements `embed(text)`: tokenize, hash each token into a bucket of
// the Dim-length vector with a sign derived from the hash, mean-pool by
// dividing by token count, L2-normalize.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, herrors.Wrap(herrors.KindInferenceTimeout, "embed cancelled", ctx.Err())
	default:
	}

	tokens := normalize.Normalize(text)
	if len(tokens) == 0 {
		// Deterministic zero-information vector: no tokens, no signal to pool.
		return make([]float32, Dim), nil
	}

	vec := make([]float64, Dim)
	for _, tok := range tokens {
		var h maphash.Hash
		h.SetSeed(e.seed)
		_, _ = h.WriteString(tok)
		sum := h.Sum64()
		bucket := int(sum % uint64(Dim))
		sign := 1.0
		if (sum/uint64(Dim))%2 == 1 {
			sign = -1.0
		}
		vec[bucket] += sign
	}

	for i := range vec {
		vec[i] /= float64(len(tokens)) // mean pooling
	}

	return l2Normalize(vec), nil
}

// EmbedBatch implements `embed_batch(texts)`.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, BatchTimeout)
	defer cancel()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func l2Normalize(v []float64) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

// DeriveText builds the embedding input text for a symbol per the fixed ordering
// rule: name first (so it dominates the pooled representation), then kind
// tag, doc (if any), then signature truncated to 200 chars.
func DeriveText(sym model.Symbol) string {
	var b strings.Builder
	b.WriteString(sym.Name)
	b.WriteByte(' ')
	b.WriteString(string(sym.Kind))
	if sym.Doc != "" {
		b.WriteByte(' ')
		b.WriteString(sym.Doc)
	}
	if sym.Signature != "" {
		sig := sym.Signature
		if len(sig) > 200 {
			sig = sig[:200]
		}
		b.WriteByte(' ')
		b.WriteString(sig)
	}
	return b.String()
}
