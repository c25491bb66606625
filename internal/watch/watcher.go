// Package watch reports changes to a fixed set of document files
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long a burst of events is collected before it is
// reported
const DefaultDelay = 100 * time.Millisecond

// Watcher reports writes to the files it was created with. Editors that
// replace a file instead of writing it are covered by watching the parent
// directories.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]string // absolute path -> path as given
	debounce *Debouncer
	log      *zap.Logger
}

// New watches paths. The parent directory of every path must exist.
func New(paths []string, delay time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fs,
		files:    make(map[string]string, len(paths)),
		debounce: NewDebouncer(delay),
		log:      log,
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, err
		}
		w.files[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}
	return w, nil
}

// Run calls onChange with each batch of changed files, as they were given to
// New, until ctx is done. onChange runs on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func([]string)) error {
	defer w.debounce.Stop()
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, watched := w.files[filepath.Clean(event.Name)]; watched {
				w.log.Debug("file changed", zap.String("path", p), zap.Stringer("op", event.Op))
				w.debounce.Add(p)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case files := <-w.debounce.C():
			onChange(files)
		}
	}
}

// Debouncer collects names and releases them as one sorted batch once no
// new name arrived for the delay
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
	files map[string]struct{}
	out   chan []string
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
		files: make(map[string]struct{}),
		out:   make(chan []string, 1),
	}
}

// C delivers batches
func (d *Debouncer) C() <-chan []string { return d.out }

// Add records name and restarts the quiet period
func (d *Debouncer) Add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[name] = struct{}{}
	d.arm()
}

func (d *Debouncer) arm() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.files) == 0 {
		return
	}
	files := make([]string, 0, len(d.files))
	for f := range d.files {
		files = append(files, f)
	}
	sort.Strings(files)

	select {
	case d.out <- files:
		d.files = make(map[string]struct{})
	default:
		// previous batch not taken yet
		d.arm()
	}
}

// Stop cancels a pending batch
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
