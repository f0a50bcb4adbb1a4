package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/embedding"
	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/parser"
)

const sampleGoSource = `package sample

// ValidateLogin checks a user's credentials against the auth store.
func ValidateLogin(username, password string) error {
	return nil
}

// SessionStore holds active sessions.
type SessionStore struct {
	sessions map[string]string
}
`

func writeSampleRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "auth.go"), []byte(sampleGoSource), 0o644); err != nil {
		t.Fatalf("write sample file: %v", err)
	}
	return root
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	registry, err := parser.NewLanguageRegistry()
	if err != nil {
		t.Fatalf("NewLanguageRegistry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })
	cfg := Config{AppDataDir: t.TempDir(), ModelID: "hashembed-v1"}
	return New(cfg, registry.GetParser(), embedding.NewHashEmbedder())
}

func TestIndexCodebaseBuildsAllThreeIndices(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)

	res, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{})
	if err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}
	if !res.Success {
		t.Fatalf("IndexResult.Success = false: %+v", res)
	}
	if res.TotalFiles != 1 {
		t.Fatalf("IndexResult.TotalFiles = %d, want 1", res.TotalFiles)
	}
	if res.TotalSymbols == 0 {
		t.Fatal("IndexResult.TotalSymbols = 0, want at least ValidateLogin + SessionStore")
	}
	if o.State() != StateReady {
		t.Fatalf("State() = %v, want Ready", o.State())
	}
}

func TestIndexCodebaseRejectsMissingRoot(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.IndexCodebase(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), IndexCodebaseOptions{})
	if err == nil {
		t.Fatal("IndexCodebase on a missing root: expected error, got nil")
	}
}

func TestQueryIndexRejectedBeforeReady(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.QueryIndex(context.Background(), IndexQuery{Keywords: []string{"login"}})
	if err == nil {
		t.Fatal("QueryIndex before any index_codebase call: expected NoIndex error, got nil")
	}
}

func TestQueryIndexFindsIndexedSymbol(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	chunks, err := o.QueryIndex(context.Background(), IndexQuery{Keywords: []string{"ValidateLogin"}})
	if err != nil {
		t.Fatalf("QueryIndex: %v", err)
	}
	found := false
	for _, c := range chunks {
		for _, name := range c.SymbolNames {
			if name == "ValidateLogin" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("QueryIndex(ValidateLogin) = %+v, want to include ValidateLogin", chunks)
	}
}

func TestGetFileSymbolsOnlyReturnsRequestedFile(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	syms, err := o.GetFileSymbols("auth.go")
	if err != nil {
		t.Fatalf("GetFileSymbols: %v", err)
	}
	if len(syms) == 0 {
		t.Fatal("GetFileSymbols(auth.go) returned no symbols")
	}
	for _, s := range syms {
		if s.Path != "auth.go" {
			t.Fatalf("GetFileSymbols returned symbol from wrong path: %+v", s)
		}
	}

	if _, err := o.GetFileSymbols("missing.go"); err == nil {
		t.Fatal("GetFileSymbols(missing.go): expected UnknownFilePath error, got nil")
	}
}

func TestSearchFilesMatchesPathComponent(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	paths, err := o.SearchFiles("auth", 10)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(paths) != 1 || paths[0] != "auth.go" {
		t.Fatalf("SearchFiles(auth) = %v, want [auth.go]", paths)
	}
}

func TestGetIndexStatsReportsLanguageCounts(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	stats, err := o.GetIndexStats()
	if err != nil {
		t.Fatalf("GetIndexStats: %v", err)
	}
	if stats.TotalFiles != 1 {
		t.Fatalf("GetIndexStats().TotalFiles = %d, want 1", stats.TotalFiles)
	}
	if stats.Languages["go"] != 1 {
		t.Fatalf("GetIndexStats().Languages = %+v, want go:1", stats.Languages)
	}
}

func TestSearchSemanticReturnsNearestSymbol(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	chunks, err := o.SearchSemantic(context.Background(), "user login validation", 5)
	if err != nil {
		t.Fatalf("SearchSemantic: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("SearchSemantic returned no results")
	}
}

func TestIndexCodebaseReuseSkipsRebuildWhenFresh(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	first, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{})
	if err != nil {
		t.Fatalf("first IndexCodebase: %v", err)
	}

	second, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{})
	if err != nil {
		t.Fatalf("second IndexCodebase: %v", err)
	}
	if second.TotalFiles != first.TotalFiles || second.TotalSymbols != first.TotalSymbols {
		t.Fatalf("reused IndexResult = %+v, want to match first build %+v", second, first)
	}
}

func TestIndexCodebaseForceRebuildBypassesReuse(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("first IndexCodebase: %v", err)
	}
	res, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{ForceRebuild: true})
	if err != nil {
		t.Fatalf("forced IndexCodebase: %v", err)
	}
	if !res.Success {
		t.Fatalf("forced rebuild IndexResult.Success = false: %+v", res)
	}
}

func TestLoadCacheMissOnUnindexedRoot(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	hit, err := o.LoadCache(root)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if hit {
		t.Fatal("LoadCache on a never-indexed root: hit = true, want false")
	}
}

func TestLoadCacheHitsAfterIndexCodebase(t *testing.T) {
	root := writeSampleRepo(t)
	registry, err := parser.NewLanguageRegistry()
	if err != nil {
		t.Fatalf("NewLanguageRegistry: %v", err)
	}
	defer registry.Close()

	cfg := Config{AppDataDir: t.TempDir(), ModelID: "hashembed-v1"}
	first := New(cfg, registry.GetParser(), embedding.NewHashEmbedder())
	if _, err := first.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}

	second := New(cfg, registry.GetParser(), embedding.NewHashEmbedder())
	hit, err := second.LoadCache(root)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if !hit {
		t.Fatal("LoadCache after a prior IndexCodebase on the same app data dir: hit = false, want true")
	}
	if second.State() != StateReady {
		t.Fatalf("State() after cache hit = %v, want Ready", second.State())
	}
}

func TestStateStringValues(t *testing.T) {
	cases := map[State]string{
		StateEmpty:       "Empty",
		StateLoading:     "Loading",
		StateReady:       "Ready",
		StateInvalidated: "Invalidated",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestCloseReleasesFullTextIndex(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestJoinKeywordsDisabledEmbedderStillQueries(t *testing.T) {
	root := writeSampleRepo(t)
	registry, err := parser.NewLanguageRegistry()
	if err != nil {
		t.Fatalf("NewLanguageRegistry: %v", err)
	}
	defer registry.Close()

	cfg := Config{AppDataDir: t.TempDir(), ModelID: "hashembed-v1"}
	o := New(cfg, registry.GetParser(), nil)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("IndexCodebase: %v", err)
	}
	_, err = o.QueryIndex(context.Background(), IndexQuery{Keywords: []string{"ValidateLogin"}, HybridConfig: &model.HybridConfig{
		TraditionalWeight: 1, FullTextWeight: 1, SemanticWeight: 0, RRFConstant: 60, MaxResults: 10,
	}})
	if err != nil {
		t.Fatalf("QueryIndex with nil embedder: %v", err)
	}
}
