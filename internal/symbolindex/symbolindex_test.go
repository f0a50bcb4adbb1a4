package symbolindex

import (
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

func fixtureFile() model.FileRecord {
	return model.FileRecord{
		Path:     "internal/auth/login.go",
		Language: "go",
		Symbols: []model.Symbol{
			{Name: "ValidateLogin", Kind: model.KindFunction, Path: "internal/auth/login.go", StartLine: 10, EndLine: 20},
			{Name: "sessionToken", Kind: model.KindVariable, Path: "internal/auth/login.go", StartLine: 22, EndLine: 22},
		},
	}
}

func TestAddFileThenLookupExact(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())

	got := idx.LookupExact("ValidateLogin")
	if len(got) != 1 || got[0].Name != "ValidateLogin" {
		t.Fatalf("LookupExact(ValidateLogin) = %+v", got)
	}
	if got := idx.LookupExact("NoSuchSymbol"); len(got) != 0 {
		t.Fatalf("LookupExact(NoSuchSymbol) = %+v, want empty", got)
	}
}

func TestLookupStemmedFindsCamelCaseParts(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())

	got := idx.LookupStemmed("login")
	if len(got) == 0 {
		t.Fatal("LookupStemmed(login) returned no results, want ValidateLogin")
	}
}

func TestLookupPathComponentIsCaseInsensitiveAndSorted(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())
	idx.AddFile(model.FileRecord{Path: "internal/Auth/middleware.go", Language: "go"})

	got := idx.LookupPathComponent("AUTH")
	want := []string{"internal/Auth/middleware.go", "internal/auth/login.go"}
	if len(got) != len(want) {
		t.Fatalf("LookupPathComponent(AUTH) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LookupPathComponent(AUTH) = %v, want %v", got, want)
		}
	}
}

func TestContainsSubstringRespectsMaxResults(t *testing.T) {
	idx := New("/repo")
	for i := 0; i < 5; i++ {
		idx.AddFile(model.FileRecord{
			Path: "f.go",
			Symbols: []model.Symbol{
				{Name: "handleRequest" + string(rune('A'+i)), Kind: model.KindFunction, Path: "f.go"},
			},
		})
	}
	got := idx.ContainsSubstring("handlerequest", 3)
	if len(got) != 3 {
		t.Fatalf("ContainsSubstring with max=3 returned %d results, want 3", len(got))
	}
}

func TestGetFileSymbolsOnlyReturnsRequestedFile(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())

	syms, ok := idx.GetFileSymbols("internal/auth/login.go")
	if !ok {
		t.Fatal("GetFileSymbols: ok = false, want true")
	}
	for _, s := range syms {
		if s.Path != "internal/auth/login.go" {
			t.Fatalf("GetFileSymbols returned symbol from wrong path: %+v", s)
		}
	}

	if _, ok := idx.GetFileSymbols("does/not/exist.go"); ok {
		t.Fatal("GetFileSymbols on missing path: ok = true, want false")
	}
}

func TestStatsReportsFileCountAndLanguages(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())
	idx.AddFile(model.FileRecord{Path: "main.py", Language: "python"})

	stats := idx.Stats()
	if stats.TotalFiles != 2 {
		t.Fatalf("Stats().TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.Languages["go"] != 1 || stats.Languages["python"] != 1 {
		t.Fatalf("Stats().Languages = %+v", stats.Languages)
	}
	if stats.RootPath != "/repo" {
		t.Fatalf("Stats().RootPath = %q, want /repo", stats.RootPath)
	}
}

func TestTotalSymbolsAndTermFrequency(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(fixtureFile())

	if got := idx.TotalSymbols(); got != 2 {
		t.Fatalf("TotalSymbols() = %d, want 2", got)
	}
	if got := idx.TermFrequency("login"); got == 0 {
		t.Fatal("TermFrequency(login) = 0, want > 0")
	}
	if got := idx.TermFrequency("nonexistentterm"); got != 0 {
		t.Fatalf("TermFrequency(nonexistentterm) = %d, want 0", got)
	}
}

func TestAddFileReplacesExistingPathAtomically(t *testing.T) {
	idx := New("/repo")
	idx.AddFile(model.FileRecord{Path: "a.go", Language: "go", Symbols: []model.Symbol{
		{Name: "Old", Kind: model.KindFunction, Path: "a.go"},
	}})
	idx.AddFile(model.FileRecord{Path: "a.go", Language: "go", Symbols: []model.Symbol{
		{Name: "New", Kind: model.KindFunction, Path: "a.go"},
	}})

	stats := idx.Stats()
	if stats.TotalFiles != 1 {
		t.Fatalf("TotalFiles = %d after re-adding same path, want 1", stats.TotalFiles)
	}
	syms, _ := idx.GetFileSymbols("a.go")
	if len(syms) != 1 || syms[0].Name != "New" {
		t.Fatalf("GetFileSymbols(a.go) = %+v, want only New", syms)
	}
}
