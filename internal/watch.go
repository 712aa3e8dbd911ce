package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-checks source files as they change on disk.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	out     io.Writer

	// debounce collapses editor write bursts into one check.
	debounce time.Duration
}

// NewWatcher wraps an engine with a filesystem watcher writing results
// to out.
func NewWatcher(engine *Engine, out io.Writer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		engine:   engine,
		watcher:  fsw,
		out:      out,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Add registers a file or directory tree with the watcher.
func (w *Watcher) Add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return w.watcher.Add(root)
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run blocks, re-checking changed files until ctx is canceled or the
// event stream closes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.out, "watch error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !strings.HasSuffix(event.Name, SourceExt) {
		return
	}
	time.Sleep(w.debounce)

	report := w.engine.Check(ctx, event.Name)
	fmt.Fprint(w.out, FormatReport(report))
}
