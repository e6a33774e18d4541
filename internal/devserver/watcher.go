package devserver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sfckit/sfcc/internal/output"
)

// DefaultDebounce coalesces bursts of events for one file.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changed component files below Root. Editors often emit
// several events per save; each file fires once per Debounce window.
type Watcher struct {
	Root     string
	Debounce time.Duration
	// Match selects the files to report. Nil matches *.vue.
	Match func(path string) bool

	fsw *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher watches root and every directory below it.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		Root:     root,
		Debounce: DefaultDebounce,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) match(p string) bool {
	if w.Match != nil {
		return w.Match(p)
	}
	return filepath.Ext(p) == ".vue"
}

// Run delivers changed files, relative to Root and slash-separated, until
// ctx is done. onChange is called from timer goroutines.
func (w *Watcher) Run(ctx context.Context, onChange func(file string)) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			output.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, onChange func(string)) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				output.Warn("watch new directory", "path", ev.Name, "err", err)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.match(ev.Name) {
		return
	}
	rel, err := filepath.Rel(w.Root, ev.Name)
	if err != nil {
		return
	}
	w.schedule(filepath.ToSlash(rel), onChange)
}

func (w *Watcher) schedule(file string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[file]; ok {
		t.Reset(w.Debounce)
		return
	}
	w.timers[file] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, file)
		w.mu.Unlock()
		output.Debug("component changed", "file", file)
		onChange(file)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for file, t := range w.timers {
		t.Stop()
		delete(w.timers, file)
	}
	w.mu.Unlock()
	w.fsw.Close()
}
