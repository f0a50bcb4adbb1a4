package fulltext

import (
	"path/filepath"
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

func buildIndex(t *testing.T, syms []model.Symbol) *Index {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "fulltext")
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	idx.BeginBuild()
	for _, s := range syms {
		if err := idx.Add(s, "go"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return idx
}

func TestSearchFindsCommittedSymbolByName(t *testing.T) {
	idx := buildIndex(t, []model.Symbol{
		{Name: "ValidateLogin", Path: "auth/login.go", StartLine: 1, EndLine: 10, Signature: "func ValidateLogin(u User) error"},
		{Name: "ParseConfig", Path: "config/parse.go", StartLine: 1, EndLine: 20},
	})

	results := idx.Search("login", 10)
	if len(results) == 0 {
		t.Fatal("Search(login) returned no results")
	}
	found := false
	for _, r := range results {
		if r.Path == "auth/login.go" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Search(login) = %+v, want to include auth/login.go", results)
	}
}

func TestSearchEmptyQueryReturnsNoResults(t *testing.T) {
	idx := buildIndex(t, []model.Symbol{{Name: "Foo", Path: "a.go"}})
	if got := idx.Search("", 10); got != nil {
		t.Fatalf("Search(\"\") = %v, want nil", got)
	}
}

func TestSearchRespectsTopN(t *testing.T) {
	syms := make([]model.Symbol, 5)
	for i := range syms {
		syms[i] = model.Symbol{Name: "HandleRequest", Path: "h.go", StartLine: i, EndLine: i}
	}
	idx := buildIndex(t, syms)
	results := idx.Search("handle", 2)
	if len(results) > 2 {
		t.Fatalf("Search() with topN=2 returned %d results", len(results))
	}
}

func TestUncommittedAddsAreNotVisible(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fulltext")
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	idx.BeginBuild()
	if err := idx.Add(model.Symbol{Name: "UncommittedSymbol", Path: "x.go"}, "go"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// No Commit call: readers must not see this document.
	results := idx.Search("uncommittedsymbol", 10)
	if len(results) != 0 {
		t.Fatalf("Search() before Commit = %+v, want empty", results)
	}
}

func TestOpenFreshDiscardsExistingData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fulltext")
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx.BeginBuild()
	idx.Add(model.Symbol{Name: "StaleSymbol", Path: "s.go"}, "go")
	idx.Commit()
	idx.Close()

	fresh, err := OpenFresh(dir)
	if err != nil {
		t.Fatalf("OpenFresh: %v", err)
	}
	defer fresh.Close()

	if got := fresh.Search("stalesymbol", 10); len(got) != 0 {
		t.Fatalf("Search() on fresh index = %+v, want empty", got)
	}
}

func TestDocIDRoundTrip(t *testing.T) {
	id := docID("some/nested/path.go", 10, 25)
	path, start, end := parseDocID(id)
	if path != "some/nested/path.go" || start != 10 || end != 25 {
		t.Fatalf("parseDocID(docID(...)) = (%q, %d, %d), want (some/nested/path.go, 10, 25)", path, start, end)
	}
}
