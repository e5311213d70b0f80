package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"promptpress/internal/graph"
	"promptpress/internal/spec"
	"promptpress/internal/store"
)

// Watcher re-validates managed documents as they change on disk. Events are
// debounced so a burst of editor writes produces one validation pass.
type Watcher struct {
	store    *store.Store
	graph    *graph.Graph
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

func New(s *store.Store, g *graph.Graph) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		store:    s,
		graph:    g,
		fsw:      fsw,
		debounce: 200 * time.Millisecond,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run watches the specs tree until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addDirs(); err != nil {
		return err
	}
	fmt.Printf("👀 Watching %s\n", w.store.SpecsDir())

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = struct{}{}
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("⚠️  Watch error: %v\n", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) addDirs() error {
	return filepath.Walk(w.store.SpecsDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				return fmt.Errorf("failed to watch %s: %w", path, addErr)
			}
		}
		return nil
	})
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	for _, path := range paths {
		w.validate(path)
	}
}

func (w *Watcher) validate(path string) {
	text, err := w.store.Read(path)
	if err != nil {
		return
	}
	doc := spec.Parse(text)
	if doc.Meta == nil {
		return
	}
	diags := w.graph.Validate(doc)
	if len(diags) == 0 {
		fmt.Printf("✅ %s\n", filepath.Base(path))
		return
	}
	fmt.Printf("❗ %s\n", filepath.Base(path))
	for _, d := range diags {
		fmt.Printf("   %s\n", d)
	}
}
