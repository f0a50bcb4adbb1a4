// Package fulltext implements the Full-Text Index: a tokenized,
// BM25-ranked inverted index over symbol name, signature, doc, and path,
// backed by bleve. Writes are append-only during a build; a single Commit
// publishes the batch atomically and is the only visible state transition.
package fulltext

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
	"github.com/hybridgrep/hybridgrep/internal/model"
)

// Document is one full-text document per symbol. Identity is (path, start, end).
type Document struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Doc       string `json:"doc"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

func docID(path string, start, end int) string {
	return fmt.Sprintf("%s:%d:%d", path, start, end)
}

func buildMapping() *bleve.IndexMapping {
	m := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	exactField := bleve.NewTextFieldMapping()
	exactField.Analyzer = "keyword"

	docMapping.AddFieldMappingsAt("name", textField)
	docMapping.AddFieldMappingsAt("path", textField)
	docMapping.AddFieldMappingsAt("signature", textField)
	docMapping.AddFieldMappingsAt("doc", textField)
	docMapping.AddFieldMappingsAt("language", exactField)
	docMapping.AddFieldMappingsAt("kind", exactField)

	m.AddDocumentMapping("_default", docMapping)
	return m
}

// Index wraps a bleve index rooted at the fulltext/ cache-layout directory.
type Index struct {
	mu      sync.Mutex
	bi      bleve.Index
	path    string
	batch   *bleve.Batch
	pending int
}

// Open opens (or creates) the bleve index at dir, matching the `fulltext/`
// entry of the on-disk cache layout.
func Open(dir string) (*Index, error) {
	bi, err := bleve.Open(dir)
	if err == nil {
		return &Index{bi: bi, path: dir}, nil
	}
	bi, err = bleve.New(dir, buildMapping())
	if err != nil {
		return nil, herrors.Wrap(herrors.KindSerializationError, "open full-text index", err)
	}
	return &Index{bi: bi, path: dir}, nil
}

// OpenFresh discards any existing directory and creates a new index, used
// when Persistence determines the cache is stale.
func OpenFresh(dir string) (*Index, error) {
	_ = os.RemoveAll(dir)
	bi, err := bleve.New(dir, buildMapping())
	if err != nil {
		return nil, herrors.Wrap(herrors.KindSerializationError, "create full-text index", err)
	}
	return &Index{bi: bi, path: dir}, nil
}

// BeginBuild starts a new append-only batch. Must be followed by Commit.
func (idx *Index) BeginBuild() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.batch = idx.bi.NewBatch()
	idx.pending = 0
}

// Add appends a full-text document (with its file's detected language tag) to
// the in-flight batch. Not visible to
// readers until Commit.
func (idx *Index) Add(sym model.Symbol, language string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.batch == nil {
		idx.batch = idx.bi.NewBatch()
	}
	doc := Document{
		Name:      sym.Name,
		Path:      sym.Path,
		Language:  language,
		Kind:      string(sym.Kind),
		Signature: sym.Signature,
		Doc:       sym.Doc,
		Start:     sym.StartLine,
		End:       sym.EndLine,
	}
	if err := idx.batch.Index(docID(sym.Path, sym.StartLine, sym.EndLine), doc); err != nil {
		return herrors.Wrap(herrors.KindSerializationError, "batch index symbol", err)
	}
	idx.pending++
	return nil
}

// Commit publishes the accumulated batch as the single visible transition.
// On failure the whole build is invalidated with a FullTextCommitFailed
// fatal error.
func (idx *Index) Commit() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.batch == nil || idx.pending == 0 {
		idx.batch = nil
		return nil
	}
	if err := idx.bi.Batch(idx.batch); err != nil {
		return herrors.Wrap(herrors.KindFullTextCommitFailed, "commit full-text batch", err)
	}
	idx.batch = nil
	idx.pending = 0
	return nil
}

// SearchResult is one ranked hit, with its rank position set by the caller.
type SearchResult struct {
	Path  string
	Start int
	End   int
	Score float64 // implementation-defined BM25 scale; ranks only are comparable
}

// Search runs an equal-weighted query across (name, signature, doc, path) and
// returns up to topN documents by BM25 score. A query parse failure is treated
// as an empty result, not an error.
func (idx *Index) Search(q string, topN int) []SearchResult {
	idx.mu.Lock()
	bi := idx.bi
	idx.mu.Unlock()

	if q == "" {
		return nil
	}

	fields := []string{"name", "signature", "doc", "path"}
	disjuncts := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(q)
		mq.SetField(f)
		mq.SetBoost(1.0) // equal weighting across fields
		disjuncts = append(disjuncts, mq)
	}
	dq := bleve.NewDisjunctionQuery(disjuncts...)

	req := bleve.NewSearchRequest(dq)
	req.Size = topN
	if req.Size <= 0 {
		req.Size = 50
	}

	res, err := bi.Search(req)
	if err != nil {
		return nil // parse failure -> empty result, not an error
	}

	out := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		path, start, end := parseDocID(hit.ID)
		out = append(out, SearchResult{Path: path, Start: start, End: end, Score: hit.Score})
	}
	return out
}

// parseDocID splits "path:start:end" from the right, since canonical paths
// never contain ':' themselves but may contain '/'.
func parseDocID(id string) (string, int, int) {
	lastColon := strings.LastIndexByte(id, ':')
	if lastColon < 0 {
		return id, 0, 0
	}
	secondLastColon := strings.LastIndexByte(id[:lastColon], ':')
	if secondLastColon < 0 {
		return id, 0, 0
	}
	path := id[:secondLastColon]
	start, err1 := strconv.Atoi(id[secondLastColon+1 : lastColon])
	end, err2 := strconv.Atoi(id[lastColon+1:])
	if err1 != nil || err2 != nil {
		return id, 0, 0
	}
	return path, start, end
}

// Close releases the underlying bleve index.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.bi.Close()
}
