// Package vectorindex implements the Vector Index: an HNSW graph with
// cosine metric over F32 vectors, plus a parallel metadata table keyed
// identically to the graph.
package vectorindex

import (
	"sync"
	"sync/atomic"

	"github.com/coder/hnsw"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
)

// Metadata mirrors the per-vector record stored alongside the HNSW graph.
type Metadata struct {
	SymbolName string
	Path       string
	Language   string
	StartLine  int
	EndLine    int
	Signature  string
	Doc        string
}

// Index owns the HNSW graph and its parallel metadata table.
type Index struct {
	mu       sync.RWMutex
	dim      int
	graph    *hnsw.Graph[uint64]
	metadata map[uint64]Metadata
	vectors  map[uint64][]float32 // retained alongside the graph so the index can be snapshotted (internal/persist)
	nextKey  atomic.Uint64
}

// New constructs an empty Index for vectors of the given dimensionality,
// using the connectivity/expansion parameters (M=16, efConstruction=128,
// efSearch=64).
func New(dim int) *Index {
	g := hnsw.NewGraph[uint64]()
	g.M = 16
	g.EfSearch = 64
	g.Distance = hnsw.CosineDistance

	return &Index{
		dim:      dim,
		graph:    g,
		metadata: make(map[uint64]Metadata),
		vectors:  make(map[uint64][]float32),
	}
}

// Dim reports the index's vector dimensionality.
func (idx *Index) Dim() int { return idx.dim }

// Entry is one (key, vector, metadata) record, for snapshotting (internal/persist).
type Entry struct {
	Key      uint64
	Vector   []float32
	Metadata Metadata
}

// All returns every stored entry, for persist.SaveVectorIndex.
func (idx *Index) All() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Entry, 0, len(idx.metadata))
	for k, m := range idx.metadata {
		out = append(out, Entry{Key: k, Vector: idx.vectors[k], Metadata: m})
	}
	return out
}

// Add implements `add(vector, metadata) -> key`: assigns the next dense key,
// fails with DimensionMismatch if len(vector) != D.
func (idx *Index) Add(vector []float32, meta Metadata) (uint64, error) {
	if len(vector) != idx.dim {
		return 0, herrors.New(herrors.KindDimensionMismatch, "vector length does not match index dimensionality")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := idx.nextKey.Add(1)
	idx.graph.Add(hnsw.MakeNode(key, vector))
	idx.metadata[key] = meta
	idx.vectors[key] = vector
	return key, nil
}

// Result is one nearest-neighbor hit.
type Result struct {
	Key      uint64
	Distance float32 // opaque cosine distance; not commensurable with BM25/Scorer output
	Metadata Metadata
}

// Search implements `search(query_vector, k) -> [](key, distance)`.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, herrors.New(herrors.KindDimensionMismatch, "query vector length does not match index dimensionality")
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	neighbors := idx.graph.Search(query, k)
	out := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		meta := idx.metadata[n.Key]
		out = append(out, Result{
			Key:      n.Key,
			Distance: hnsw.CosineDistance(query, n.Value),
			Metadata: meta,
		})
	}
	return out, nil
}

// Len reports the number of vectors currently stored, for verifying (key-set equality
// between the graph and the metadata table at quiescent points).
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.metadata)
}

// MetadataKeys returns every key in the metadata table, for cross-index verification.
func (idx *Index) MetadataKeys() []uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	keys := make([]uint64, 0, len(idx.metadata))
	for k := range idx.metadata {
		keys = append(keys, k)
	}
	return keys
}
