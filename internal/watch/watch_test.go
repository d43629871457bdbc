// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	calls := make(chan string, 10)
	w := New(dir, ".tex", 100*time.Millisecond, func(_ context.Context, path string) {
		calls <- path
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher stopped: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}

	path := filepath.Join(dir, "paper.tex")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case got := <-calls:
		assert.Equal(t, "paper.tex", filepath.Base(got))
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}
	select {
	case got := <-calls:
		t.Fatalf("unexpected second call for %s", got)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), ".tex", time.Millisecond, func(context.Context, string) {}, nil)
	assert.Error(t, w.Run(context.Background()))
}

func TestDebouncerDropsSupersededTimer(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	defer d.stop()

	d.touch("a.tex")
	// Let the first timer fire and block on the channel before the path
	// changes again.
	time.Sleep(20 * time.Millisecond)
	d.touch("a.tex")

	receive := func() settle {
		select {
		case s := <-d.out:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("timer did not fire")
			return settle{}
		}
	}
	s := receive()
	for !d.settled(s) {
		s = receive()
	}
	assert.Equal(t, "a.tex", s.path)

	select {
	case stale := <-d.out:
		assert.False(t, d.settled(stale), "superseded change settled")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncerStopReleasesFiredTimers(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	d.touch("a.tex")
	d.touch("b.tex")
	time.Sleep(20 * time.Millisecond)
	d.touch("c.tex")

	stopped := make(chan struct{})
	go func() {
		d.stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stop blocked on pending timers")
	}
}
