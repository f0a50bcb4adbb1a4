// Package persist implements Persistence and the on-disk cache layout:
//
//	<app-data>/indexes/<root-hash>/
//	  meta.bin        header: version, root, built_at, model_id, files:[{path,mtime}]
//	  symbols.bin     serialized codebase index (badger directory)
//	  fulltext/       FT index directory
//	  vectors.bin     HNSW graph + metadata table (badger directory)
//
package persist

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
)

const cacheVersion = 1

// FileMeta is one tracked file's path and last-observed mtime (seconds).
type FileMeta struct {
	Path    string
	ModTime int64
}

// Header is the meta.bin artifact of the cache layout.
type Header struct {
	Version    int
	Root       string
	BuiltAt    int64
	ModelID    string
	Files      []FileMeta
}

// RootHash computes the stable `<root-hash>` directory-name component of the cache layout.
func RootHash(canonicalRoot string) string {
	sum := sha256.Sum256([]byte(canonicalRoot))
	return hex.EncodeToString(sum[:])[:16]
}

// Layout resolves the on-disk paths for one indexed root under appDataDir.
type Layout struct {
	Root     string // <app-data>/indexes/<root-hash>
	Meta     string // meta.bin
	Symbols  string // symbols.bin (badger dir)
	FullText string // fulltext/
	Vectors  string // vectors.bin (badger dir)
}

// NewLayout resolves the cache layout for a canonical root path.
func NewLayout(appDataDir, canonicalRoot string) Layout {
	dir := filepath.Join(appDataDir, "indexes", RootHash(canonicalRoot))
	return Layout{
		Root:     dir,
		Meta:     filepath.Join(dir, "meta.bin"),
		Symbols:  filepath.Join(dir, "symbols.bin"),
		FullText: filepath.Join(dir, "fulltext"),
		Vectors:  filepath.Join(dir, "vectors.bin"),
	}
}

// WriteHeader persists meta.bin atomically: write to a sibling staging
// directory, then rename into place, so a partial write is never observable
// on the next start.
func WriteHeader(layout Layout, h Header) error {
	h.Version = cacheVersion

	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "create cache directory", err)
	}

	staging := layout.Meta + ".staging-" + uuid.NewString()
	f, err := os.Create(staging)
	if err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "create staging meta file", err)
	}
	if err := gob.NewEncoder(f).Encode(h); err != nil {
		f.Close()
		os.Remove(staging)
		return herrors.Wrap(herrors.KindSerializationError, "encode meta header", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(staging)
		return herrors.Wrap(herrors.KindCachePersistFailed, "close staging meta file", err)
	}
	if err := os.Rename(staging, layout.Meta); err != nil {
		os.Remove(staging)
		return herrors.Wrap(herrors.KindCachePersistFailed, "rename meta file into place", err)
	}
	return nil
}

// ReadHeader loads meta.bin, if present.
func ReadHeader(layout Layout) (Header, error) {
	f, err := os.Open(layout.Meta)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	var h Header
	if err := gob.NewDecoder(f).Decode(&h); err != nil {
		return Header{}, herrors.Wrap(herrors.KindSerializationError, "decode meta header", err)
	}
	return h, nil
}

// ValidationPolicy selects load-time staleness handling.
type ValidationPolicy int

const (
	PolicyFullRebuild ValidationPolicy = iota // default
	PolicyAcceptStale
)

// ValidationResult reports whether a loaded cache is usable.
type ValidationResult struct {
	Valid  bool
	Stale  bool
	Reason string
}

// Validate implements load-time validation: root-path or
// model-fingerprint mismatch invalidates outright; otherwise every tracked
// file's current mtime is compared against the stored one.
func Validate(h Header, canonicalRoot, modelID string, statFn func(path string) (time.Time, error)) ValidationResult {
	if h.Root != canonicalRoot {
		return ValidationResult{Valid: false, Reason: "root path mismatch"}
	}
	if h.ModelID != modelID {
		return ValidationResult{Valid: false, Reason: "model fingerprint mismatch"}
	}
	if h.Version != cacheVersion {
		return ValidationResult{Valid: false, Reason: "cache version mismatch"}
	}

	for _, fm := range h.Files {
		mtime, err := statFn(fm.Path)
		if err != nil {
			return ValidationResult{Valid: true, Stale: true, Reason: fmt.Sprintf("missing tracked file: %s", fm.Path)}
		}
		if mtime.Unix() != fm.ModTime {
			return ValidationResult{Valid: true, Stale: true, Reason: fmt.Sprintf("mtime changed: %s", fm.Path)}
		}
	}

	return ValidationResult{Valid: true, Stale: false}
}

// ShouldRebuild applies the staleness policy: under force_rebuild=false, rebuild only if stale
// or invalid; under force_rebuild=true, always rebuild.
func ShouldRebuild(v ValidationResult, forceRebuild bool, policy ValidationPolicy) bool {
	if forceRebuild {
		return true
	}
	if !v.Valid {
		return true
	}
	if v.Stale && policy == PolicyFullRebuild {
		return true
	}
	return false
}
