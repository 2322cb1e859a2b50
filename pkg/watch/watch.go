// Package watch reloads a markup file whenever it changes on disk.
package watch

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// DefaultDebounce is the quiet period after the last write before a reload.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the freshly loaded document, or the load error.
type Handler func(doc *fxom.Document, err error)

// Config tunes a watcher.
type Config struct {
	// Debounce is the quiet period before a reload. Defaults to
	// DefaultDebounce.
	Debounce time.Duration

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// Watcher reloads one file on change.
//
// The directory of the file is watched rather than the file itself so that
// editors replacing the file by rename are followed.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	opts     fxom.Options
	handle   Handler
	logger   *log.Logger
	debounce time.Duration

	pending time.Time
	reloads int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for path. Documents are loaded with opts.
func New(path string, opts fxom.Options, handle Handler, cfg Config) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if opts.Location == "" {
		opts.Location = path
	}
	return &Watcher{
		watcher:  fw,
		path:     abs,
		opts:     opts,
		handle:   handle,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block; reloads run on a separate
// goroutine until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("watching", "path", w.path)
	go w.run(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", "err", err)
	}
}

// Reloads returns the number of reloads so far.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		case <-tick.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	w.logger.Debug("change", "path", ev.Name, "op", ev.Op.String())
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.reloads++
	w.mu.Unlock()

	doc, err := fxom.LoadFile(ctx, w.path, w.opts)
	if err != nil {
		w.logger.Debug("reload failed", "path", w.path, "err", err)
	}
	w.handle(doc, err)
}
