package persist

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRootHashIsStableAndFixedLength(t *testing.T) {
	a := RootHash("/home/user/repo")
	b := RootHash("/home/user/repo")
	if a != b {
		t.Fatalf("RootHash not stable: %s != %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("RootHash length = %d, want 16", len(a))
	}
	if c := RootHash("/home/user/other"); c == a {
		t.Fatal("RootHash collided for distinct roots")
	}
}

func TestNewLayoutPaths(t *testing.T) {
	l := NewLayout("/cache", "/repo")
	hash := RootHash("/repo")
	wantRoot := filepath.Join("/cache", "indexes", hash)
	if l.Root != wantRoot {
		t.Fatalf("Layout.Root = %s, want %s", l.Root, wantRoot)
	}
	if l.Meta != filepath.Join(wantRoot, "meta.bin") {
		t.Fatalf("Layout.Meta = %s", l.Meta)
	}
	if l.FullText != filepath.Join(wantRoot, "fulltext") {
		t.Fatalf("Layout.FullText = %s", l.FullText)
	}
}

func TestWriteHeaderThenReadHeaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(dir, "/repo")

	h := Header{
		Root:    "/repo",
		BuiltAt: 100,
		ModelID: "hashembed-v1",
		Files:   []FileMeta{{Path: "/repo/a.go", ModTime: 42}},
	}
	if err := WriteHeader(layout, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	got, err := ReadHeader(layout)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Root != h.Root || got.ModelID != h.ModelID || got.Version != cacheVersion {
		t.Fatalf("ReadHeader() = %+v, want matching %+v with version %d", got, h, cacheVersion)
	}
	if len(got.Files) != 1 || got.Files[0].Path != "/repo/a.go" {
		t.Fatalf("ReadHeader().Files = %+v", got.Files)
	}
}

func TestReadHeaderMissingFile(t *testing.T) {
	layout := NewLayout(t.TempDir(), "/repo")
	if _, err := ReadHeader(layout); err == nil {
		t.Fatal("ReadHeader on missing meta.bin: expected error, got nil")
	}
}

func TestValidateRootMismatchInvalidatesOutright(t *testing.T) {
	h := Header{Root: "/other", ModelID: "m", Version: cacheVersion}
	res := Validate(h, "/repo", "m", func(string) (time.Time, error) { return time.Unix(0, 0), nil })
	if res.Valid {
		t.Fatal("Validate() with root mismatch: Valid = true, want false")
	}
}

func TestValidateModelMismatchInvalidatesOutright(t *testing.T) {
	h := Header{Root: "/repo", ModelID: "old-model", Version: cacheVersion}
	res := Validate(h, "/repo", "new-model", func(string) (time.Time, error) { return time.Unix(0, 0), nil })
	if res.Valid {
		t.Fatal("Validate() with model fingerprint mismatch: Valid = true, want false")
	}
}

func TestValidateDetectsStaleMtime(t *testing.T) {
	h := Header{
		Root:    "/repo",
		ModelID: "m",
		Version: cacheVersion,
		Files:   []FileMeta{{Path: "/repo/a.go", ModTime: 100}},
	}
	res := Validate(h, "/repo", "m", func(string) (time.Time, error) { return time.Unix(200, 0), nil })
	if !res.Valid || !res.Stale {
		t.Fatalf("Validate() with changed mtime = %+v, want Valid=true Stale=true", res)
	}
}

func TestValidateFreshWhenMtimesMatch(t *testing.T) {
	h := Header{
		Root:    "/repo",
		ModelID: "m",
		Version: cacheVersion,
		Files:   []FileMeta{{Path: "/repo/a.go", ModTime: 100}},
	}
	res := Validate(h, "/repo", "m", func(string) (time.Time, error) { return time.Unix(100, 0), nil })
	if !res.Valid || res.Stale {
		t.Fatalf("Validate() with matching mtimes = %+v, want Valid=true Stale=false", res)
	}
}

func TestShouldRebuildForceAlwaysRebuilds(t *testing.T) {
	fresh := ValidationResult{Valid: true, Stale: false}
	if !ShouldRebuild(fresh, true, PolicyFullRebuild) {
		t.Fatal("ShouldRebuild(forceRebuild=true) = false, want true even for a fresh cache")
	}
}

func TestShouldRebuildInvalidAlwaysRebuilds(t *testing.T) {
	invalid := ValidationResult{Valid: false}
	if !ShouldRebuild(invalid, false, PolicyFullRebuild) {
		t.Fatal("ShouldRebuild with invalid cache = false, want true")
	}
}

func TestShouldRebuildStalePolicy(t *testing.T) {
	stale := ValidationResult{Valid: true, Stale: true}
	if !ShouldRebuild(stale, false, PolicyFullRebuild) {
		t.Fatal("ShouldRebuild(stale, PolicyFullRebuild) = false, want true")
	}
	if ShouldRebuild(stale, false, PolicyAcceptStale) {
		t.Fatal("ShouldRebuild(stale, PolicyAcceptStale) = true, want false")
	}
}

func TestShouldRebuildFreshNeverRebuilds(t *testing.T) {
	fresh := ValidationResult{Valid: true, Stale: false}
	if ShouldRebuild(fresh, false, PolicyFullRebuild) {
		t.Fatal("ShouldRebuild(fresh) = true, want false")
	}
}
