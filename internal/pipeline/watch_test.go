package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultWatchConfigHasPositiveDebounce(t *testing.T) {
	cfg := DefaultWatchConfig()
	if cfg.DebounceDuration <= 0 {
		t.Fatalf("DefaultWatchConfig().DebounceDuration = %v, want > 0", cfg.DebounceDuration)
	}
	if !cfg.Recursive {
		t.Fatal("DefaultWatchConfig().Recursive = false, want true")
	}
}

func TestWatchStopsOnCancelAfterFileChange(t *testing.T) {
	root := writeSampleRepo(t)
	o := newTestOrchestrator(t)
	if _, err := o.IndexCodebase(context.Background(), root, IndexCodebaseOptions{}); err != nil {
		t.Fatalf("initial IndexCodebase: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- o.Watch(ctx, root, WatchConfig{DebounceDuration: 30 * time.Millisecond, Recursive: true})
	}()

	// give the watcher time to register the tree before the edit.
	time.Sleep(50 * time.Millisecond)
	extra := filepath.Join(root, "extra.go")
	if err := os.WriteFile(extra, []byte("package sample\n\nfunc Extra() {}\n"), 0o644); err != nil {
		t.Fatalf("write extra file: %v", err)
	}

	// allow the debounce window to settle and the reindex to run.
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Watch() returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after context cancellation")
	}
}
