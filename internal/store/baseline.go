package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// BaselineCache persists the last snapshot a cascade successfully processed,
// one file per document, under <root>/.promptpress/cache/.
type BaselineCache struct {
	dir string
}

func NewBaselineCache(root string) *BaselineCache {
	return &BaselineCache{dir: filepath.Join(root, ".promptpress", "cache")}
}

func (c *BaselineCache) path(filename string) string {
	return filepath.Join(c.dir, filename+".baseline")
}

// Get returns the cached baseline for a document file name, or ok=false when
// none has been recorded.
func (c *BaselineCache) Get(filename string) (string, bool) {
	data, err := os.ReadFile(c.path(filename))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put records a new baseline. Callers treat failures as non-fatal.
func (c *BaselineCache) Put(filename, content string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create baseline cache dir: %w", err)
	}
	if err := os.WriteFile(c.path(filename), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write baseline for %s: %w", filename, err)
	}
	return nil
}
