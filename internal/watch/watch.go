// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reconverts source files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per settled change of a matching file. Calls are
// serialized.
type Handler func(ctx context.Context, path string)

// Watcher watches one directory for changes to files with a given
// extension. Bursts of events for the same path are collapsed: the
// handler runs once the path has been quiet for the debounce interval.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration
	handle   Handler
	log      *slog.Logger
	ready    chan struct{}
}

// New returns a watcher for files ending in ext inside dir.
func New(dir, ext string, debounce time.Duration, handle Handler, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		dir:      dir,
		ext:      ext,
		debounce: debounce,
		handle:   handle,
		log:      log,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. It returns an error only when the
// directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.dir, err)
	}
	base, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer base.Close()
	if err := base.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	close(w.ready)
	w.log.Info("watching", "dir", abs, "ext", w.ext)

	d := newDebouncer(w.debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-base.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		case ev, ok := <-base.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				d.touch(ev.Name)
			}
		case s := <-d.out:
			if !d.settled(s) {
				continue
			}
			w.log.Debug("file changed", "path", s.path)
			w.handle(ctx, s.path)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(ev.Name), w.ext) {
		return false
	}
	fi, err := os.Lstat(ev.Name)
	return err == nil && fi.Mode().IsRegular()
}

// settle is a path that has been quiet for the debounce interval. gen
// identifies the change that armed its timer.
type settle struct {
	path string
	gen  uint64
}

// debouncer collapses bursts of changes per path. Only the latest change
// of a path settles; a timer that fired before a newer change arrived is
// ignored.
type debouncer struct {
	delay  time.Duration
	out    chan settle
	done   chan struct{}
	wg     sync.WaitGroup
	gen    uint64
	latest map[string]uint64
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		out:    make(chan settle),
		done:   make(chan struct{}),
		latest: make(map[string]uint64),
		timers: make(map[string]*time.Timer),
	}
}

// touch records a change of path and restarts its quiet period.
func (d *debouncer) touch(path string) {
	if t, ok := d.timers[path]; ok && t.Stop() {
		d.wg.Done()
	}
	d.gen++
	s := settle{path: path, gen: d.gen}
	d.latest[path] = s.gen
	d.wg.Add(1)
	d.timers[path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		select {
		case d.out <- s:
		case <-d.done:
		}
	})
}

// settled reports whether s is the latest change of its path and, if so,
// forgets the path.
func (d *debouncer) settled(s settle) bool {
	if d.latest[s.path] != s.gen {
		return false
	}
	delete(d.latest, s.path)
	delete(d.timers, s.path)
	return true
}

// stop cancels pending timers and waits for fired ones to return.
func (d *debouncer) stop() {
	for _, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
	}
	close(d.done)
	d.wg.Wait()
}
