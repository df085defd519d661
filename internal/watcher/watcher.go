// Package watcher implements the recursive filesystem watcher (C5): for
// every create/modify event it re-runs the per-file ingest recipe against
// the index store; for delete it removes the FileRecord and its file-list
// entry. Adapted from the teacher's FileWatcher/eventDebouncer
// (internal/indexing/watcher.go in the teacher repo).
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	manifolderrors "github.com/standardbeagle/manifold/internal/errors"
	"github.com/standardbeagle/manifold/internal/ingest"
	"github.com/standardbeagle/manifold/internal/store"
)

// EventType classifies a debounced filesystem event.
type EventType int

const (
	EventWrite EventType = iota
	EventRemove
)

// Options configures a Watcher.
type Options struct {
	Root       string
	Recipe     ingest.Recipe
	MaxBytes   int64
	DebounceMs int
}

// Watcher recursively watches Options.Root and keeps the index store in
// sync with the filesystem.
type Watcher struct {
	fsw   *fsnotify.Watcher
	store *store.Store
	opts  Options

	debouncer *debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu    sync.RWMutex
	processed  int64
	errorCount int64
	unchanged  int64

	// lastHash is an in-process fast-path check (xxhash.Sum64 of the last
	// written content per path) that skips reprocessing a file whose bytes
	// didn't actually change between two debounced write events, the same
	// "compare a cheap hash before redoing expensive work" shape the
	// teacher's file content store uses for its FastHash field.
	hashMu   sync.Mutex
	lastHash map[string]uint64

	// OnError receives watcher-callback failures as *manifolderrors.Error
	// (kind WatcherException); nil is a valid no-op sink.
	OnError func(err error)
}

// New constructs a Watcher over opts.Root, adding a recursive fsnotify
// watch tree rooted there.
func New(st *store.Store, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	debounce := time.Duration(opts.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	w := &Watcher{
		fsw:      fsw,
		store:    st,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		lastHash: make(map[string]uint64),
	}
	w.debouncer = newDebouncer(debounce, w.applyEvent)

	if err := w.addWatches(opts.Root); err != nil {
		cancel()
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start launches the event-processing and debounce-flush goroutines.
func (w *Watcher) Start() {
	w.wg.Add(2)
	go w.processEvents()
	go w.debouncer.run(w.ctx, &w.wg)
}

// Stop cancels the watcher's context, closes the fsnotify handle, and waits
// for its goroutines to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Stats reports cumulative processed-event, error, and fast-path-skip counts.
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	UnchangedSkips  int64
}

// Stats returns a snapshot of watcher counters.
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return Stats{EventsProcessed: w.processed, ErrorCount: w.errorCount, UnchangedSkips: w.unchanged}
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if path != root && ingest.IsSkippedDir(info.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("watcher: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(manifolderrors.New(manifolderrors.WatcherException, "fsnotify", err).WithRecoverable(true))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)
	if statErr != nil {
		if event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0 {
			if w.shouldTrack(event.Name) {
				w.debouncer.add(event.Name, EventRemove)
			}
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !ingest.IsSkippedDir(info.Name()) {
			if err := w.fsw.Add(event.Name); err != nil {
				log.Printf("watcher: failed to add watch for new directory %s: %v", event.Name, err)
			}
		}
		return
	}

	if !w.shouldTrack(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0, event.Op&fsnotify.Write != 0:
		w.debouncer.add(event.Name, EventWrite)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.debouncer.add(event.Name, EventRemove)
	}
}

func (w *Watcher) shouldTrack(path string) bool {
	return !ingest.IsSkippedFile(path)
}

// applyEvent re-runs the ingest recipe (write) or removes the FileRecord
// (remove) for one debounced path, the watcher's half of spec.md §4.5.
func (w *Watcher) applyEvent(abs string, kind EventType) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("watcher: recovered from panic handling %s: %v", abs, r)
			w.bumpError()
		}
	}()

	rel, err := filepath.Rel(w.opts.Root, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)

	ctx := context.Background()
	switch kind {
	case EventRemove:
		if err := w.store.DeleteFile(ctx, rel); err != nil {
			w.reportError(manifolderrors.New(manifolderrors.WatcherException, "delete_file", err).WithPath(rel).WithRecoverable(true))
			w.bumpError()
			return
		}
		w.forgetHash(rel)
	case EventWrite:
		maxBytes := w.opts.MaxBytes
		if maxBytes <= 0 {
			maxBytes = 512 * 1024
		}
		content, readErr := os.ReadFile(abs)
		if readErr != nil {
			w.reportError(manifolderrors.New(manifolderrors.PerFileIO, "read_file", readErr).WithPath(rel).WithRecoverable(true))
			w.bumpError()
			return
		}
		if int64(len(content)) > maxBytes {
			content = content[:maxBytes]
		}

		hash := xxhash.Sum64(content)
		if w.sameAsLast(rel, hash) {
			w.statsMu.Lock()
			w.unchanged++
			w.statsMu.Unlock()
			return
		}

		rec := ingest.BuildRecord(rel, content, w.opts.Recipe)
		if err := w.store.PutFile(ctx, rel, rec.Fields, rec.ByteLen); err != nil {
			w.reportError(manifolderrors.New(manifolderrors.WatcherException, "put_file", err).WithPath(rel).WithRecoverable(true))
			w.bumpError()
			return
		}
		w.rememberHash(rel, hash)
	}

	w.statsMu.Lock()
	w.processed++
	w.statsMu.Unlock()
}

func (w *Watcher) sameAsLast(rel string, hash uint64) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	last, ok := w.lastHash[rel]
	return ok && last == hash
}

func (w *Watcher) rememberHash(rel string, hash uint64) {
	w.hashMu.Lock()
	w.lastHash[rel] = hash
	w.hashMu.Unlock()
}

func (w *Watcher) forgetHash(rel string) {
	w.hashMu.Lock()
	delete(w.lastHash, rel)
	w.hashMu.Unlock()
}

func (w *Watcher) bumpError() {
	w.statsMu.Lock()
	w.errorCount++
	w.statsMu.Unlock()
}

func (w *Watcher) reportError(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
