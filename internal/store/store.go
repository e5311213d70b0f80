package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promptpress/internal/spec"
)

// ErrNotFound is returned when a referenced document has no file on disk.
var ErrNotFound = errors.New("document not found")

// ConOpsFile is the file name of the root concept document.
const ConOpsFile = "ConOps.md"

// Store reads and writes spec documents under <root>/specs/ using the
// canonical layout <phase-dir>/<artifact>.<suffix>.md.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// SpecsDir returns the directory holding all managed documents.
func (s *Store) SpecsDir() string {
	return filepath.Join(s.root, "specs")
}

// DocPath is pure path arithmetic keyed off the reference's phase.
func (s *Store) DocPath(ref spec.Ref) string {
	return filepath.Join(s.SpecsDir(), ref.Phase.Dir(), ref.Filename())
}

// ConOpsPath returns the path of the root concept document.
func (s *Store) ConOpsPath() string {
	return filepath.Join(s.SpecsDir(), ConOpsFile)
}

// RelPath converts an absolute path under the root to a slash-separated
// path relative to it, the form version control expects.
func (s *Store) RelPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (s *Store) Exists(ref spec.Ref) bool {
	_, err := os.Stat(s.DocPath(ref))
	return err == nil
}

func (s *Store) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func (s *Store) Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadRef reads and parses the document a reference points to.
func (s *Store) LoadRef(ref spec.Ref) (*spec.Document, error) {
	text, err := s.Read(s.DocPath(ref))
	if err != nil {
		return nil, err
	}
	return spec.Parse(text), nil
}

// StoredDoc pairs a parsed document with its on-disk location.
type StoredDoc struct {
	Path string
	Doc  *spec.Document
}

// List walks the specs tree and parses every Markdown document, the concept
// document included. Unreadable files are skipped.
func (s *Store) List() ([]StoredDoc, error) {
	var docs []StoredDoc
	err := filepath.Walk(s.SpecsDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		text, readErr := s.Read(path)
		if readErr != nil {
			return nil
		}
		docs = append(docs, StoredDoc{Path: path, Doc: spec.Parse(text)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.SpecsDir(), err)
	}
	return docs, nil
}
