package vectorindex

import (
	"testing"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
)

func unit(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestAddThenSearchFindsNearestVector(t *testing.T) {
	idx := New(4)
	keyA, err := idx.Add(unit(4, 0), Metadata{SymbolName: "A"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = idx.Add(unit(4, 2), Metadata{SymbolName: "B"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(unit(4, 0), 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Key != keyA {
		t.Fatalf("Search() = %+v, want nearest neighbor to be key %d", results, keyA)
	}
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	idx := New(4)
	_, err := idx.Add([]float32{1, 2, 3}, Metadata{})
	if !herrors.Is(err, herrors.KindDimensionMismatch) {
		t.Fatalf("Add() with wrong dim = %v, want DimensionMismatch", err)
	}
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	idx := New(4)
	_, err := idx.Search([]float32{1, 2}, 1)
	if !herrors.Is(err, herrors.KindDimensionMismatch) {
		t.Fatalf("Search() with wrong dim = %v, want DimensionMismatch", err)
	}
}

func TestLenAndMetadataKeysTrackAdds(t *testing.T) {
	idx := New(3)
	if idx.Len() != 0 {
		t.Fatalf("Len() on empty index = %d, want 0", idx.Len())
	}
	k1, _ := idx.Add(unit(3, 0), Metadata{SymbolName: "A"})
	k2, _ := idx.Add(unit(3, 1), Metadata{SymbolName: "B"})
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	keys := idx.MetadataKeys()
	seen := map[uint64]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen[k1] || !seen[k2] {
		t.Fatalf("MetadataKeys() = %v, want to contain %d and %d", keys, k1, k2)
	}
}

func TestAllReturnsEveryStoredEntry(t *testing.T) {
	idx := New(2)
	idx.Add(unit(2, 0), Metadata{SymbolName: "A", Path: "a.go"})
	idx.Add(unit(2, 1), Metadata{SymbolName: "B", Path: "b.go"})

	entries := idx.All()
	if len(entries) != 2 {
		t.Fatalf("All() returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if len(e.Vector) != 2 {
			t.Fatalf("All() entry has vector of length %d, want 2", len(e.Vector))
		}
	}
}

func TestDimReportsConfiguredDimensionality(t *testing.T) {
	idx := New(384)
	if idx.Dim() != 384 {
		t.Fatalf("Dim() = %d, want 384", idx.Dim())
	}
}
