package herrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryAssignments(t *testing.T) {
	cases := []struct {
		kind Kind
		want Category
	}{
		{KindModelNotLoaded, CategoryTransient},
		{KindBuildInProgress, CategoryTransient},
		{KindInvalidQuery, CategoryInput},
		{KindNoIndex, CategoryInput},
		{KindParseError, CategoryData},
		{KindWalkError, CategoryData},
		{KindRootNotFound, CategoryFatal},
		{KindCancelled, CategoryFatal},
	}
	for _, c := range cases {
		if got := c.kind.Category(); got != c.want {
			t.Errorf("Kind(%s).Category() = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestUnknownKindDefaultsToFatal(t *testing.T) {
	if got := Kind("SomethingNew").Category(); got != CategoryFatal {
		t.Fatalf("unknown Kind.Category() = %v, want CategoryFatal (fail safe)", got)
	}
}

func TestCategoryString(t *testing.T) {
	if CategoryTransient.String() != "transient" {
		t.Fatalf("CategoryTransient.String() = %q", CategoryTransient.String())
	}
	if Category(99).String() != "unknown" {
		t.Fatalf("Category(99).String() = %q, want unknown", Category(99).String())
	}
}

func TestErrorFormattingWithAndWithoutPath(t *testing.T) {
	plain := New(KindInvalidQuery, "query must not be empty")
	if plain.Error() != "InvalidQuery: query must not be empty" {
		t.Fatalf("plain.Error() = %q", plain.Error())
	}
	withPath := WithPath(KindWalkError, "/tmp/x.go", "permission denied", nil)
	want := "WalkError: permission denied (path=/tmp/x.go)"
	if withPath.Error() != want {
		t.Fatalf("withPath.Error() = %q, want %q", withPath.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(KindCachePersistFailed, "persist snapshot", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatalf("errors.Is(wrapped, cause) = false, want true")
	}
}

func TestIsMatchesAcrossWrapping(t *testing.T) {
	base := New(KindRootNotFound, "root missing")
	outer := fmt.Errorf("index codebase: %w", base)
	if !Is(outer, KindRootNotFound) {
		t.Fatalf("Is(outer, KindRootNotFound) = false, want true")
	}
	if Is(outer, KindParseError) {
		t.Fatalf("Is(outer, KindParseError) = true, want false")
	}
}

func TestIsReturnsFalseForNonHybridError(t *testing.T) {
	if Is(errors.New("plain"), KindParseError) {
		t.Fatalf("Is(plain error, _) = true, want false")
	}
}
