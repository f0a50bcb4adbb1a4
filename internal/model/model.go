// Package model holds the canonical data types: Symbol, FileRecord,
// CodeChunk, and HybridConfig. Every component downstream of the Syntax Parser
// shares these types instead of inventing its own.
package model

import "time"

// Kind is the closed symbol-kind enumeration.
type Kind string

const (
	KindFunction  Kind = "Function"
	KindMethod    Kind = "Method"
	KindClass     Kind = "Class"
	KindStruct    Kind = "Struct"
	KindInterface Kind = "Interface"
	KindEnum      Kind = "Enum"
	KindConstant  Kind = "Constant"
	KindVariable  Kind = "Variable"
	KindImport    Kind = "Import"
	KindExport    Kind = "Export"
)

// Symbol is an extracted lexical entity.
type Symbol struct {
	Name       string
	Kind       Kind
	Path       string // canonical, forward-slash
	StartLine  int    // 1-based, inclusive
	EndLine    int    // 1-based, inclusive, >= StartLine
	Signature  string // optional, <= 4 KiB
	Doc        string // optional, adjacent leading comment block
	ParentName string // optional, enclosing symbol for nested definitions
}

// Identity returns the cross-index identity triple (path, start, end) used by
// the full-text index, vector index, and RRF fusion.
func (s Symbol) Identity() Identity {
	return Identity{Path: s.Path, Start: s.StartLine, End: s.EndLine}
}

// Identity is the one cross-index key: none of symbol/full-text/vector share a
// key space, so everything keys on (path, start, end) instead.
type Identity struct {
	Path  string
	Start int
	End   int
}

// FileRecord is one parsed file.
type FileRecord struct {
	Path     string // canonical
	Language string
	Symbols  []Symbol // document order
	Imports  []string
	ModTime  int64 // seconds since epoch
}

// CodeChunk is a query-time result record.
type CodeChunk struct {
	Path        string
	StartLine   int
	EndLine     int
	Content     string
	Language    string
	SymbolNames []string
	Score       float64 // query_index: post-RRF fused score; search_semantic: 1 - cosine distance
}

// HybridConfig carries the fusion weights and RRF parameters.
type HybridConfig struct {
	TraditionalWeight float64
	FullTextWeight    float64
	SemanticWeight    float64
	RRFConstant       float64 // k, default 60
	MaxResults        int
}

// Named weight presets for the hybrid fusion stage.
func PresetBalanced() HybridConfig {
	return HybridConfig{TraditionalWeight: 0.2, FullTextWeight: 0.4, SemanticWeight: 0.4, RRFConstant: 60, MaxResults: 50}
}

func PresetExactMatch() HybridConfig {
	return HybridConfig{TraditionalWeight: 0.7, FullTextWeight: 0.2, SemanticWeight: 0.1, RRFConstant: 60, MaxResults: 50}
}

func PresetSemanticFocused() HybridConfig {
	return HybridConfig{TraditionalWeight: 0.1, FullTextWeight: 0.2, SemanticWeight: 0.7, RRFConstant: 60, MaxResults: 50}
}

func PresetContentFocused() HybridConfig {
	return HybridConfig{TraditionalWeight: 0.1, FullTextWeight: 0.6, SemanticWeight: 0.3, RRFConstant: 60, MaxResults: 50}
}

// Valid reports the HybridConfig invariant: weights sum > 0, k > 0.
func (c HybridConfig) Valid() bool {
	sum := c.TraditionalWeight + c.FullTextWeight + c.SemanticWeight
	return sum > 0 && c.RRFConstant > 0
}

// CodebaseStats is the response shape for get_index_stats.
type CodebaseStats struct {
	TotalFiles int
	Languages  map[string]int
	RootPath   string
	IndexedAt  time.Time
}
