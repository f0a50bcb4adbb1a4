// Package pipeline implements the Pipeline Orchestrator: it owns the
// three indices behind one shared reader-writer guard, drives walk -> parse -> index/embed,
// and exposes the six external-interface commands.
//
// The build phase collapses a two-phase symbols-then-references design into
// a single parse -> (symbol index, FT index, embedding batch -> vector index)
// pass, since cross-file reference resolution is out of scope.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hybridgrep/hybridgrep/internal/embedding"
	"github.com/hybridgrep/hybridgrep/internal/fulltext"
	"github.com/hybridgrep/hybridgrep/internal/herrors"
	"github.com/hybridgrep/hybridgrep/internal/hybrid"
	"github.com/hybridgrep/hybridgrep/internal/logging"
	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/parser"
	"github.com/hybridgrep/hybridgrep/internal/persist"
	"github.com/hybridgrep/hybridgrep/internal/queryanalyzer"
	"github.com/hybridgrep/hybridgrep/internal/score"
	"github.com/hybridgrep/hybridgrep/internal/symbolindex"
	"github.com/hybridgrep/hybridgrep/internal/vectorindex"
	"github.com/hybridgrep/hybridgrep/internal/walker"
)

// State is the index lifecycle state machine: Empty -> Loading ->
// Ready -> Invalidated -> Loading. Queries are rejected unless Ready.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateInvalidated:
		return "Invalidated"
	default:
		return "Unknown"
	}
}

// Config carries the orchestrator's ambient configuration knobs.
type Config struct {
	AppDataDir       string
	Workers          int
	ModelID          string
	ValidationPolicy persist.ValidationPolicy
	Logger           logging.Logger
}

func (c *Config) setDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ModelID == "" {
		c.ModelID = "hashembed-v1"
	}
	if c.AppDataDir == "" {
		c.AppDataDir = defaultAppDataDir()
	}
	if c.Logger == nil {
		c.Logger = logging.Discard()
	}
}

func defaultAppDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "hybridgrep")
	}
	return ".hybridgrep-cache"
}

// IndexResult is the response shape for index_codebase.
type IndexResult struct {
	Success      bool
	TotalFiles   int
	TotalSymbols int
	Languages    []string
	DurationMS   int64
	Errors       []string
}

// Orchestrator is the single owner object replacing the source's "global
// mutable indexer handle": one object, explicit guards.
type Orchestrator struct {
	cfg Config

	mu    sync.RWMutex
	state State
	root  string // canonical root path

	symbolIdx *symbolindex.Index
	ftIdx     *fulltext.Index
	vecIdx    *vectorindex.Index
	layout    persist.Layout
	header    persist.Header

	embedder embedding.Embedder
	parsers  *parser.TreeSitterParser

	build       singleflight.Group
	buildCancel context.CancelFunc
	buildMu     sync.Mutex
}

// New constructs an orchestrator in the Empty state.
func New(cfg Config, p *parser.TreeSitterParser, embedder embedding.Embedder) *Orchestrator {
	cfg.setDefaults()
	p.SetLogger(cfg.Logger)
	return &Orchestrator{
		cfg:      cfg,
		state:    StateEmpty,
		parsers:  p,
		embedder: embedder,
	}
}

// LoadCache attempts the cold-start path of Persistence: read
// meta.bin, validate it against the live file system, and on a hit rebuild
// the in-memory index from the persisted symbols.bin/vectors.bin/fulltext
// artifacts instead of re-walking and re-parsing. Returns (false, nil) on a
// clean cache miss (caller should then call IndexCodebase); a non-nil error
// means the cache existed but was corrupt.
func (o *Orchestrator) LoadCache(root string) (bool, error) {
	canonicalRoot, err := filepath.Abs(root)
	if err != nil {
		return false, herrors.Wrap(herrors.KindRootNotFound, "resolve root path", err)
	}
	canonicalRoot = filepath.ToSlash(canonicalRoot)

	layout := persist.NewLayout(o.cfg.AppDataDir, canonicalRoot)
	header, err := persist.ReadHeader(layout)
	if err != nil {
		return false, nil // no meta.bin yet: ordinary cache miss
	}

	v := persist.Validate(header, canonicalRoot, o.cfg.ModelID, statModTime)
	if persist.ShouldRebuild(v, false, o.cfg.ValidationPolicy) {
		return false, nil
	}

	files, err := persist.LoadSymbolIndex(layout.Symbols)
	if err != nil {
		return false, err
	}
	symIdx := symbolindex.New(canonicalRoot)
	for _, rec := range files {
		symIdx.AddFile(rec)
	}

	vecIdx, err := persist.LoadVectorIndex(layout.Vectors, embedding.Dim)
	if err != nil {
		return false, err
	}

	ftIdx, err := fulltext.Open(layout.FullText)
	if err != nil {
		return false, err
	}

	o.mu.Lock()
	o.root = canonicalRoot
	o.symbolIdx = symIdx
	o.ftIdx = ftIdx
	o.vecIdx = vecIdx
	o.layout = layout
	o.header = header
	o.mu.Unlock()
	o.setState(StateReady)

	return true, nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// IndexCodebaseOptions mirrors the index_codebase request.
type IndexCodebaseOptions struct {
	ForceRebuild bool
}

// IndexCodebase implements `index_codebase`: walk, parse, populate all
// three indices. A second concurrent call is collapsed via singleflight and
// rejected with BuildInProgress.
func (o *Orchestrator) IndexCodebase(ctx context.Context, root string, opts IndexCodebaseOptions) (*IndexResult, error) {
	canonicalRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, herrors.Wrap(herrors.KindRootNotFound, "resolve root path", err)
	}
	canonicalRoot = filepath.ToSlash(canonicalRoot)

	if _, err := os.Stat(root); err != nil {
		return nil, herrors.WithPath(herrors.KindRootNotFound, root, "root path does not exist", err)
	}

	if res := o.tryReuse(canonicalRoot, opts); res != nil {
		return res, nil
	}

	o.buildMu.Lock()
	if o.buildCancel != nil {
		o.buildMu.Unlock()
		return nil, herrors.New(herrors.KindBuildInProgress, "an index build is already running")
	}
	buildCtx, cancel := context.WithCancel(ctx)
	o.buildCancel = cancel
	o.buildMu.Unlock()

	defer func() {
		o.buildMu.Lock()
		o.buildCancel = nil
		o.buildMu.Unlock()
	}()

	v, err, _ := o.build.Do(canonicalRoot, func() (any, error) {
		return o.runBuild(buildCtx, canonicalRoot, opts)
	})
	if err != nil {
		if buildCtx.Err() == context.Canceled {
			o.setState(StateEmpty)
			return nil, herrors.New(herrors.KindCancelled, "index build cancelled")
		}
		return nil, err
	}
	return v.(*IndexResult), nil
}

// tryReuse serves index_codebase from the already-loaded in-memory index when
// it is Ready for this same root and not stale, skipping a redundant rebuild
// (the mtime-comparison policy of persist.Validate/ShouldRebuild, applied here
// to the in-process cache rather than a cold on-disk load).
func (o *Orchestrator) tryReuse(canonicalRoot string, opts IndexCodebaseOptions) *IndexResult {
	if opts.ForceRebuild {
		return nil
	}
	o.mu.RLock()
	state, root, header, symIdx := o.state, o.root, o.header, o.symbolIdx
	o.mu.RUnlock()

	if state != StateReady || root != canonicalRoot || symIdx == nil {
		return nil
	}

	v := persist.Validate(header, canonicalRoot, o.cfg.ModelID, statModTime)
	if persist.ShouldRebuild(v, false, o.cfg.ValidationPolicy) {
		o.setState(StateInvalidated)
		return nil
	}

	stats := symIdx.Stats()
	langs := make([]string, 0, len(stats.Languages))
	for l := range stats.Languages {
		langs = append(langs, l)
	}
	return &IndexResult{
		Success:      true,
		TotalFiles:   stats.TotalFiles,
		TotalSymbols: symIdx.TotalSymbols(),
		Languages:    langs,
	}
}

func statModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (o *Orchestrator) runBuild(ctx context.Context, canonicalRoot string, opts IndexCodebaseOptions) (*IndexResult, error) {
	start := time.Now()
	o.setState(StateLoading)

	layout := persist.NewLayout(o.cfg.AppDataDir, canonicalRoot)

	ftIdx, err := fulltext.OpenFresh(layout.FullText)
	if err != nil {
		o.setState(StateInvalidated)
		return nil, err
	}
	ftIdx.BeginBuild()

	vecIdx := vectorindex.New(embedding.Dim)
	symIdx := symbolindex.New(canonicalRoot)

	w, err := walker.New(walker.DefaultConfig())
	if err != nil {
		o.setState(StateInvalidated)
		return nil, herrors.Wrap(herrors.KindWalkError, "create walker", err)
	}

	results, err := w.Walk(canonicalRoot)
	if err != nil {
		o.setState(StateInvalidated)
		return nil, herrors.WithPath(herrors.KindWalkError, canonicalRoot, "walk failed", err)
	}

	var (
		mu           sync.Mutex
		buildErrors  []string
		totalSymbols int
		fileMetas    []persist.FileMeta
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)

	for res := range results {
		res := res
		if res.Error != nil {
			mu.Lock()
			buildErrors = append(buildErrors, res.Error.Error())
			mu.Unlock()
			continue
		}
		if res.Info == nil || res.Info.IsDir() {
			continue
		}

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			content, err := os.ReadFile(res.Path)
			if err != nil {
				mu.Lock()
				buildErrors = append(buildErrors, fmt.Sprintf("%s: %v", res.RelPath, err))
				mu.Unlock()
				return nil // Data-class error: accumulated, build continues.
			}

			parsed, err := o.parsers.ParseFile(res.RelPath, content)
			if err != nil {
				// Unsupported extension: silently skipped, not an error.
				return nil
			}

			symbols := parser.ToModelSymbols(parsed.Symbols)
			rec := model.FileRecord{
				Path:     parser.CanonicalPath(res.RelPath),
				Language: parsed.Language,
				Symbols:  symbols,
				ModTime:  res.Info.ModTime().Unix(),
			}

			mu.Lock()
			symIdx.AddFile(rec)
			totalSymbols += len(symbols)
			fileMetas = append(fileMetas, persist.FileMeta{Path: res.Path, ModTime: rec.ModTime})
			mu.Unlock()

			for _, sym := range symbols {
				if err := ftIdx.Add(sym, rec.Language); err != nil {
					return herrors.Wrap(herrors.KindFullTextCommitFailed, "add full-text document", err)
				}
			}

			if o.embedder != nil && o.embedder.Available() {
				texts := make([]string, len(symbols))
				for i, sym := range symbols {
					texts[i] = embedding.DeriveText(sym)
				}
				vecs, err := o.embedder.EmbedBatch(gctx, texts)
				if err != nil {
					mu.Lock()
					buildErrors = append(buildErrors, fmt.Sprintf("%s: embedding: %v", res.RelPath, err))
					mu.Unlock()
				} else {
					mu.Lock()
					for i, sym := range symbols {
						_, _ = vecIdx.Add(vecs[i], vectorindex.Metadata{
							SymbolName: sym.Name, Path: sym.Path, Language: rec.Language,
							StartLine: sym.StartLine, EndLine: sym.EndLine,
							Signature: sym.Signature, Doc: sym.Doc,
						})
					}
					mu.Unlock()
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ftIdx.Close()
		if ctx.Err() != nil {
			o.setState(StateEmpty)
			return nil, herrors.New(herrors.KindCancelled, "index build cancelled")
		}
		o.setState(StateInvalidated)
		return nil, err
	}

	if err := ftIdx.Commit(); err != nil {
		o.setState(StateInvalidated)
		return nil, err
	}

	if err := persist.SaveSymbolIndex(layout.Symbols, symIdx.Files); err != nil {
		o.cfg.Logger.Error("symbol cache persist failed", "err", err)
	}
	if err := persist.SaveVectorIndex(layout.Vectors, vecIdx); err != nil {
		o.cfg.Logger.Error("vector cache persist failed", "err", err)
	}

	header := persist.Header{
		Root:    canonicalRoot,
		BuiltAt: time.Now().Unix(),
		ModelID: o.cfg.ModelID,
		Files:   fileMetas,
	}
	if err := persist.WriteHeader(layout, header); err != nil {
		o.cfg.Logger.Error("cache persist failed", "err", err)
		// Fatal, but the previous Ready snapshot (if any) remains
		// intact; only this build's cache write is lost.
	}

	o.mu.Lock()
	o.root = canonicalRoot
	o.symbolIdx = symIdx
	o.ftIdx = ftIdx
	o.vecIdx = vecIdx
	o.layout = layout
	o.header = header
	o.mu.Unlock()
	o.setState(StateReady)

	langs := symIdx.Stats().Languages
	langNames := make([]string, 0, len(langs))
	for l := range langs {
		langNames = append(langNames, l)
	}

	return &IndexResult{
		Success:      true,
		TotalFiles:   len(fileMetas),
		TotalSymbols: totalSymbols,
		Languages:    langNames,
		DurationMS:   time.Since(start).Milliseconds(),
		Errors:       buildErrors,
	}, nil
}

// Cancel requests cancellation of an in-flight index_codebase call.
func (o *Orchestrator) Cancel() {
	o.buildMu.Lock()
	defer o.buildMu.Unlock()
	if o.buildCancel != nil {
		o.buildCancel()
	}
}

// requireReady rejects queries unless the index is Ready.
func (o *Orchestrator) requireReady() error {
	if o.State() != StateReady {
		return herrors.New(herrors.KindNoIndex, "no index is loaded")
	}
	return nil
}

// IndexQuery mirrors the query_index request. SymbolKinds and FilePatterns
// are carried on the request, but QueryIndex does not filter results by them.
type IndexQuery struct {
	Keywords     []string
	SymbolKinds  []model.Kind
	FilePatterns []string
	MaxResults   int
	HybridConfig *model.HybridConfig
}

// QueryIndex implements `query_index`: dispatch via the Query Analyzer
// and Hybrid Searcher.
func (o *Orchestrator) QueryIndex(ctx context.Context, q IndexQuery) ([]model.CodeChunk, error) {
	if err := o.requireReady(); err != nil {
		return nil, err
	}

	o.mu.RLock()
	symIdx, ftIdx, vecIdx := o.symbolIdx, o.ftIdx, o.vecIdx
	o.mu.RUnlock()

	queryText := joinKeywords(q.Keywords)
	cfg := q.HybridConfig
	if cfg == nil {
		qt := queryanalyzer.Classify(queryText)
		preset := queryanalyzer.Preset(qt)
		cfg = &preset
	}
	if q.MaxResults > 0 {
		cfg.MaxResults = q.MaxResults
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}

	traditional := func(ctx context.Context, query string, limit int) ([]hybrid.Candidate, error) {
		return traditionalSearch(symIdx, query, limit), nil
	}
	fullText := func(ctx context.Context, query string, limit int) ([]hybrid.Candidate, error) {
		return fullTextSearch(ftIdx, query, limit), nil
	}
	var semantic hybrid.Searcher
	if o.embedder != nil && o.embedder.Available() {
		semantic = func(ctx context.Context, query string, limit int) ([]hybrid.Candidate, error) {
			return o.semanticSearch(ctx, vecIdx, query, limit)
		}
	}

	return hybrid.Search(ctx, queryText, *cfg, traditional, fullText, semantic)
}

func joinKeywords(keywords []string) string {
	out := ""
	for i, k := range keywords {
		if i > 0 {
			out += " "
		}
		out += k
	}
	return out
}

// scoredSymbol pairs a symbol with its relevance score for a single ranking pass.
type scoredSymbol struct {
	sym model.Symbol
	sc  float64
}

func traditionalSearch(symIdx *symbolindex.Index, query string, limit int) []hybrid.Candidate {
	if symIdx == nil || query == "" {
		return nil
	}
	total := symIdx.TotalSymbols()

	var matches []scoredSymbol

	exact := symIdx.LookupExact(query)
	for _, s := range exact {
		matches = append(matches, scoredSymbol{s, score.Score(score.Inputs{
			Term: query, Name: s.Name, Kind: score.Kind(s.Kind), MatchType: score.MatchExact,
			HasDoc: s.Doc != "", CorpusTotal: total, CorpusFreq: len(exact),
		})})
	}

	substr := symIdx.ContainsSubstring(query, limit*4)
	for _, s := range substr {
		if s.Name == query {
			continue // already scored as exact above
		}
		matches = append(matches, scoredSymbol{s, score.Score(score.Inputs{
			Term: query, Name: s.Name, Kind: score.Kind(s.Kind), MatchType: score.MatchContains,
			HasDoc: s.Doc != "", CorpusTotal: total, CorpusFreq: len(substr),
		})})
	}

	sortScoredDesc(matches)
	out := make([]hybrid.Candidate, 0, len(matches))
	for _, m := range matches {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, hybrid.Candidate{
			Identity:    m.sym.Identity(),
			SymbolNames: []string{m.sym.Name},
		})
	}
	return out
}

func sortScoredDesc(matches []scoredSymbol) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].sc > matches[j-1].sc; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

func fullTextSearch(ftIdx *fulltext.Index, query string, limit int) []hybrid.Candidate {
	if ftIdx == nil {
		return nil
	}
	hits := ftIdx.Search(query, limit)
	out := make([]hybrid.Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, hybrid.Candidate{
			Identity: model.Identity{Path: h.Path, Start: h.Start, End: h.End},
		})
	}
	return out
}

func (o *Orchestrator) semanticSearch(ctx context.Context, vecIdx *vectorindex.Index, query string, limit int) ([]hybrid.Candidate, error) {
	if vecIdx == nil {
		return nil, nil
	}
	vec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := vecIdx.Search(vec, limit)
	if err != nil {
		return nil, err
	}
	out := make([]hybrid.Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, hybrid.Candidate{
			Identity:    model.Identity{Path: r.Metadata.Path, Start: r.Metadata.StartLine, End: r.Metadata.EndLine},
			Language:    r.Metadata.Language,
			SymbolNames: []string{r.Metadata.SymbolName},
		})
	}
	return out, nil
}

// GetIndexStats implements `get_index_stats`.
func (o *Orchestrator) GetIndexStats() (model.CodebaseStats, error) {
	if err := o.requireReady(); err != nil {
		return model.CodebaseStats{}, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.symbolIdx.Stats(), nil
}

// GetFileSymbols implements `get_file_symbols` (every returned symbol's
// path equals the requested path).
func (o *Orchestrator) GetFileSymbols(path string) ([]model.Symbol, error) {
	if err := o.requireReady(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	symbols, ok := o.symbolIdx.GetFileSymbols(parser.CanonicalPath(path))
	if !ok {
		return nil, herrors.WithPath(herrors.KindUnknownFilePath, path, "file not found in index", nil)
	}
	return symbols, nil
}

// SearchFiles implements `search_files`: path-component match, scored
// equal > prefix > contains.
func (o *Orchestrator) SearchFiles(query string, max int) ([]string, error) {
	if err := o.requireReady(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	symIdx := o.symbolIdx
	o.mu.RUnlock()

	type scoredPath struct {
		path string
		sc   int
	}
	seen := make(map[string]bool)
	var matches []scoredPath

	paths := make([]string, 0, len(symIdx.Files))
	for p := range symIdx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	lowerQuery := lowerASCII(query)
	for _, comp := range splitPath(query) {
		for _, path := range paths {
			if seen[path] || !strings.Contains(lowerASCII(path), comp) {
				continue
			}
			seen[path] = true
			sc := 1 // contains
			base := lowerASCII(filepath.Base(path))
			if base == lowerQuery {
				sc = 3 // equal
			} else if hasPrefixFold(base, lowerQuery) {
				sc = 2 // prefix
			}
			matches = append(matches, scoredPath{path, sc})
		}
	}

	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].sc > matches[j-1].sc; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if max > 0 && len(out) >= max {
			break
		}
		out = append(out, m.path)
	}
	return out, nil
}

// SearchSemantic implements `search_semantic`: direct embed-then-ANN path.
func (o *Orchestrator) SearchSemantic(ctx context.Context, query string, max int) ([]model.CodeChunk, error) {
	if err := o.requireReady(); err != nil {
		return nil, err
	}
	if o.embedder == nil || !o.embedder.Available() {
		return nil, herrors.New(herrors.KindModelNotLoaded, "embedding model unavailable")
	}

	o.mu.RLock()
	vecIdx := o.vecIdx
	o.mu.RUnlock()

	vec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := vecIdx.Search(vec, max)
	if err != nil {
		return nil, err
	}

	out := make([]model.CodeChunk, 0, len(results))
	for _, r := range results {
		out = append(out, model.CodeChunk{
			Path:        r.Metadata.Path,
			StartLine:   r.Metadata.StartLine,
			EndLine:     r.Metadata.EndLine,
			Language:    r.Metadata.Language,
			SymbolNames: []string{r.Metadata.SymbolName},
			Score:       float64(1 - r.Distance), // cosine distance -> similarity, opaque scale
		})
	}
	return out, nil
}

func splitPath(p string) []string {
	var parts []string
	cur := ""
	for _, r := range p {
		if r == '/' || r == '\\' {
			if cur != "" {
				parts = append(parts, lowerASCII(cur))
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		parts = append(parts, lowerASCII(cur))
	}
	return parts
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func hasPrefixFold(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return lowerASCII(s[:len(prefix)]) == lowerASCII(prefix)
}

// Close releases resources held by a Ready index.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ftIdx != nil {
		return o.ftIdx.Close()
	}
	return nil
}
