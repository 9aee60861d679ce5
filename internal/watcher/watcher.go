package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Change is one source file touched within a batch.
type Change struct {
	Path string
	Op   EventOp
}

// Batch groups the source changes that arrived within one quiet window.
type Batch struct {
	Changes []Change
	Time    time.Time
}

// Paths returns the changed paths in sorted order.
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Changes))
	for i, c := range b.Changes {
		paths[i] = c.Path
	}
	return paths
}

// Config holds configuration for the source watcher.
type Config struct {
	// Root is the source directory to watch recursively.
	Root string
	// Extensions limits events to files with these extensions.
	Extensions []string
	// Matcher excludes paths; nil excludes nothing.
	Matcher *Matcher
	// Debounce is the quiet window before a batch is emitted.
	Debounce time.Duration
	Logger   zerolog.Logger
}

// DefaultDebounce is the quiet window used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a source tree and emits debounced batches of changes.
type Watcher struct {
	cfg    Config
	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a watcher for cfg.Root.
func NewWatcher(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{cfg: cfg}
}

// Start begins watching and returns the channel of batches. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Batch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	if err := w.addRecursive(w.cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan Batch, 16)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.cfg.Matcher.Match(path, true) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) wanted(path string) bool {
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)

	pending := make(map[string]EventOp)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := Batch{Time: time.Now()}
		for path, op := range pending {
			batch.Changes = append(batch.Changes, Change{Path: path, Op: op})
		}
		sort.Slice(batch.Changes, func(i, j int) bool { return batch.Changes[i].Path < batch.Changes[j].Path })
		pending = make(map[string]EventOp)
		select {
		case out <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			flush()

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// New directories are watched as they appear.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if !w.cfg.Matcher.Match(fsEvent.Name, true) {
						if err := w.addRecursive(fsEvent.Name); err != nil {
							w.cfg.Logger.Warn().Err(err).Str("dir", fsEvent.Name).Msg("cannot watch new directory")
						}
					}
					continue
				}
			}

			if !w.wanted(fsEvent.Name) || w.cfg.Matcher.Match(fsEvent.Name, false) {
				continue
			}
			pending[fsEvent.Name] = op
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.cfg.Logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
