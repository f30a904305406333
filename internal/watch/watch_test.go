package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rebuildLog struct {
	mu       sync.Mutex
	triggers []string
}

func (l *rebuildLog) rebuild(_ context.Context, trigger string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.triggers = append(l.triggers, trigger)
	return nil
}

func (l *rebuildLog) count(trigger string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.triggers {
		if t == trigger {
			n++
		}
	}
	return n
}

func TestShouldIgnore(t *testing.T) {
	tests := map[string]bool{
		"notes/page.md":       false,
		"notes/.page.md.swp":  true,
		"notes/page.md~":      true,
		"notes/#page.md#":     true,
		".DS_Store":           true,
		"Thumbs.db":           true,
		"assets/pic.png":      false,
		"notes/page.md.tmp":   true,
		"notes/.hidden-notes": true,
	}
	for path, want := range tests {
		assert.Equal(t, want, shouldIgnore(path), path)
	}
}

func TestInsideHidden(t *testing.T) {
	assert.True(t, insideHidden("/v", "/v/.obsidian/workspace.json"))
	assert.False(t, insideHidden("/v", "/v/notes/a.md"))
	assert.False(t, insideHidden("/v", "/v"))
}

func TestDebouncer_Coalesces(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	for range 5 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	d.Trigger()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestRequest_Coalesces(t *testing.T) {
	w := New(t.TempDir(), func(context.Context, string) error { return nil }, Options{})
	w.Request(TriggerChange)
	w.Request(TriggerChange)
	w.Request(TriggerRescan)
	assert.Len(t, w.requests, 1)
	assert.Equal(t, TriggerChange, <-w.requests)
}

func TestRun_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".obsidian"), 0o750))

	log := &rebuildLog{}
	w := New(root, log.rebuild, Options{Debounce: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return log.count(TriggerStartup) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".obsidian", "workspace.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "a.md"), []byte("# A"), 0o600))
	require.Eventually(t, func() bool { return log.count(TriggerChange) >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_Rescan(t *testing.T) {
	log := &rebuildLog{}
	w := New(t.TempDir(), log.rebuild, Options{Debounce: 10 * time.Millisecond, RescanInterval: 50 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return log.count(TriggerRescan) >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestRun_MissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil }, Options{})
	require.Error(t, w.Run(context.Background()))
}

func TestLoop_StopsWhenWatcherCloses(t *testing.T) {
	w := New(t.TempDir(), func(context.Context, string) error { return nil }, Options{})

	t.Run("events closed", func(t *testing.T) {
		events := make(chan fsnotify.Event, 2)
		var triggered atomic.Int32
		events <- fsnotify.Event{Name: "a.md", Op: fsnotify.Write}
		events <- fsnotify.Event{Name: "skip.tmp", Op: fsnotify.Write}
		close(events)

		done := make(chan struct{})
		go func() {
			defer close(done)
			w.loop(context.Background(), events, make(chan error),
				func(ev fsnotify.Event) bool { return ev.Name == "a.md" },
				func() { triggered.Add(1) })
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not return after the events channel closed")
		}
		assert.Equal(t, int32(1), triggered.Load())
	})

	t.Run("errors closed", func(t *testing.T) {
		errs := make(chan error, 1)
		errs <- os.ErrPermission
		close(errs)

		done := make(chan struct{})
		go func() {
			defer close(done)
			w.loop(context.Background(), make(chan fsnotify.Event), errs,
				func(fsnotify.Event) bool { return true }, func() {})
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not return after the errors channel closed")
		}
	})
}
