// Snapshotting for the symbol and vector indices onto the `symbols.bin` and
// `vectors.bin` badger directories of the on-disk cache layout.
//
// Grounded on internal/index/badger.go's BadgerStorage: this trims away its
// general-purpose Batch/Txn/Iterator/Stats surface (engine.go's consumers
// needed a generic KV abstraction across possible backends; persist only ever
// needs "write every record once, read every record back once") and keeps the
// options this package actually exercises — ZSTD compression, async writes
// for bulk indexing throughput, disabled internal logging.
package persist

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/hybridgrep/hybridgrep/internal/herrors"
	"github.com/hybridgrep/hybridgrep/internal/model"
	"github.com/hybridgrep/hybridgrep/internal/vectorindex"
)

func openBadger(dir string, readOnly bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(false).
		WithCompression(options.ZSTD).
		WithLogger(nil).
		WithReadOnly(readOnly)
	return badger.Open(opts)
}

func keyUint64(k uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, k)
	return b
}

// SaveSymbolIndex writes every file record in files to a fresh badger
// directory at dir, one key per canonical file path.
func SaveSymbolIndex(dir string, files map[string]model.FileRecord) error {
	_ = os.RemoveAll(dir)
	db, err := openBadger(dir, false)
	if err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "open symbols store", err)
	}
	defer db.Close()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for path, rec := range files {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
			return herrors.Wrap(herrors.KindSerializationError, "encode file record", err)
		}
		if err := wb.Set([]byte(path), buf.Bytes()); err != nil {
			return herrors.Wrap(herrors.KindCachePersistFailed, "stage file record", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "flush symbols store", err)
	}
	return nil
}

// LoadSymbolIndex reads back every file record persisted by SaveSymbolIndex.
func LoadSymbolIndex(dir string) (map[string]model.FileRecord, error) {
	db, err := openBadger(dir, true)
	if err != nil {
		return nil, herrors.Wrap(herrors.KindCachePersistFailed, "open symbols store", err)
	}
	defer db.Close()

	out := make(map[string]model.FileRecord)
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec model.FileRecord
			if verr := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&rec)
			}); verr != nil {
				return verr
			}
			out[string(item.KeyCopy(nil))] = rec
		}
		return nil
	})
	if err != nil {
		return nil, herrors.Wrap(herrors.KindSerializationError, "decode symbols store", err)
	}
	return out, nil
}

// SaveVectorIndex writes every entry of a vector index to a fresh badger
// directory at dir, one key per dense vector key.
func SaveVectorIndex(dir string, idx *vectorindex.Index) error {
	_ = os.RemoveAll(dir)
	db, err := openBadger(dir, false)
	if err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "open vectors store", err)
	}
	defer db.Close()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range idx.All() {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(e); err != nil {
			return herrors.Wrap(herrors.KindSerializationError, "encode vector entry", err)
		}
		if err := wb.Set(keyUint64(e.Key), buf.Bytes()); err != nil {
			return herrors.Wrap(herrors.KindCachePersistFailed, "stage vector entry", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return herrors.Wrap(herrors.KindCachePersistFailed, "flush vectors store", err)
	}
	return nil
}

// LoadVectorIndex rebuilds a vector index of dimensionality dim from a
// directory written by SaveVectorIndex. Re-insertion order is stable (by
// stored key) but assigned keys are not preserved, since nothing outside this
// package depends on the dense key — only the (path, start, end) identity in
// each entry's metadata does.
func LoadVectorIndex(dir string, dim int) (*vectorindex.Index, error) {
	db, err := openBadger(dir, true)
	if err != nil {
		return nil, herrors.Wrap(herrors.KindCachePersistFailed, "open vectors store", err)
	}
	defer db.Close()

	idx := vectorindex.New(dim)
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var e vectorindex.Entry
			if verr := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&e)
			}); verr != nil {
				return verr
			}
			if len(e.Vector) != dim {
				continue // dimension mismatch against a stale cache; skip rather than fail the whole load
			}
			if _, addErr := idx.Add(e.Vector, e.Metadata); addErr != nil {
				return addErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, herrors.Wrap(herrors.KindSerializationError, "decode vectors store", err)
	}
	return idx, nil
}
