// Package symbolindex implements the Symbol Index: name -> symbols,
// stemmed-token -> symbols, and path-component -> file-index mappings, built
// strictly additively during one pipeline run and never partially observable.
package symbolindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/normalize"
)

// Index is the in-memory codebase symbol index, minus persistence (handled by internal/persist).
type Index struct {
	mu sync.RWMutex

	RootPath  string
	BuiltAt   int64
	Files     map[string]model.FileRecord // path -> file record
	filePaths []string                    // ordered sequence, inverse of pathComponents

	byName    map[string][]model.Symbol // original-name -> symbols
	byStem    map[string][]model.Symbol // stemmed-token -> symbols
	pathComp  map[string]map[int]bool   // lowercased path component -> file index set
	LangCount map[string]int
}

// New builds an empty Index for root.
func New(root string) *Index {
	return &Index{
		RootPath:  root,
		Files:     make(map[string]model.FileRecord),
		byName:    make(map[string][]model.Symbol),
		byStem:    make(map[string][]model.Symbol),
		pathComp:  make(map[string]map[int]bool),
		LangCount: make(map[string]int),
	}
}

// AddFile records a parsed file and all of its symbols. Additive-only: it never
// removes or mutates a previously added record from the caller's perspective
// mid-build; replacement of an existing path happens as a single atomic swap.
func (idx *Index) AddFile(rec model.FileRecord) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.Files[rec.Path]; !exists {
		idx.filePaths = append(idx.filePaths, rec.Path)
	}
	idx.Files[rec.Path] = rec
	idx.LangCount[rec.Language]++

	fileIdx := len(idx.filePaths) - 1
	for _, comp := range pathComponents(rec.Path) {
		comp = strings.ToLower(comp)
		set, ok := idx.pathComp[comp]
		if !ok {
			set = make(map[int]bool)
			idx.pathComp[comp] = set
		}
		set[fileIdx] = true
	}

	for _, sym := range rec.Symbols {
		idx.byName[sym.Name] = append(idx.byName[sym.Name], sym)
		for _, stem := range normalize.NormalizeSymbol(sym.Name) {
			idx.byStem[stem] = append(idx.byStem[stem], sym)
		}
	}
}

// LookupExact implements `lookup_exact(name)`, O(1) expected.
func (idx *Index) LookupExact(name string) []model.Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]model.Symbol(nil), idx.byName[name]...)
}

// LookupStemmed implements `lookup_stemmed(stem)`.
func (idx *Index) LookupStemmed(stem string) []model.Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]model.Symbol(nil), idx.byStem[stem]...)
}

// LookupPathComponent implements `lookup_path_component(component_lower)`.
func (idx *Index) LookupPathComponent(componentLower string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.pathComp[strings.ToLower(componentLower)]
	out := make([]string, 0, len(set))
	for i := range set {
		if i < len(idx.filePaths) {
			out = append(out, idx.filePaths[i])
		}
	}
	sort.Strings(out)
	return out
}

// ContainsSubstring is the O(n) substring-match fallback, bounded by maxResults.
func (idx *Index) ContainsSubstring(query string, maxResults int) []model.Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	q := strings.ToLower(query)
	var out []model.Symbol
	for name, syms := range idx.byName {
		if !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, syms...)
		if maxResults > 0 && len(out) >= maxResults {
			return out[:maxResults]
		}
	}
	return out
}

// GetFileSymbols implements the `get_file_symbols` operation (every
// returned symbol's path equals the requested path).
func (idx *Index) GetFileSymbols(path string) ([]model.Symbol, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rec, ok := idx.Files[path]
	if !ok {
		return nil, false
	}
	return append([]model.Symbol(nil), rec.Symbols...), true
}

// Stats returns the CodebaseStats response shape for get_index_stats.
func (idx *Index) Stats() model.CodebaseStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	langs := make(map[string]int, len(idx.LangCount))
	for k, v := range idx.LangCount {
		langs[k] = v
	}
	return model.CodebaseStats{
		TotalFiles: len(idx.filePaths),
		Languages:  langs,
		RootPath:   idx.RootPath,
	}
}

// TotalSymbols returns the corpus size used as the IDF denominator.
func (idx *Index) TotalSymbols() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	total := 0
	for _, syms := range idx.byName {
		total += len(syms)
	}
	return total
}

// TermFrequency returns how many symbols match a given stemmed term, for the scorer's idfBonus.
func (idx *Index) TermFrequency(stem string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byStem[stem])
}

func pathComponents(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
