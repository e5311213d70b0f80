package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"promptpress/internal/store"
)

type fakeVCS struct {
	committed map[string]string
	staged    map[string]string
}

func (f *fakeVCS) HasUnstagedChanges() (bool, error) { return false, nil }
func (f *fakeVCS) StageAll() error                   { return nil }

func (f *fakeVCS) CommittedContent(relPath string) (string, bool, error) {
	content, ok := f.committed[relPath]
	return content, ok, nil
}

func (f *fakeVCS) StagedContent(relPath string) (string, bool, error) {
	content, ok := f.staged[relPath]
	return content, ok, nil
}

func TestResolveBaseline_Priority(t *testing.T) {
	cache := store.NewBaselineCache(t.TempDir())
	assert.NoError(t, cache.Put("doc.req.md", "cached"))

	v := &fakeVCS{
		committed: map[string]string{"specs/requirements/doc.req.md": "committed"},
		staged:    map[string]string{"specs/requirements/doc.req.md": "staged"},
	}

	content, source := ResolveBaseline(v, cache, "specs/requirements/doc.req.md", "doc.req.md", "current")
	assert.Equal(t, "committed", content)
	assert.Equal(t, BaselineCommitted, source)

	v.committed = nil
	content, source = ResolveBaseline(v, cache, "specs/requirements/doc.req.md", "doc.req.md", "current")
	assert.Equal(t, "staged", content)
	assert.Equal(t, BaselineStaged, source)

	v.staged = nil
	content, source = ResolveBaseline(v, cache, "specs/requirements/doc.req.md", "doc.req.md", "current")
	assert.Equal(t, "cached", content)
	assert.Equal(t, BaselineCached, source)
}

func TestResolveBaseline_NoneMeansNoChange(t *testing.T) {
	cache := store.NewBaselineCache(t.TempDir())

	content, source := ResolveBaseline(nil, cache, "specs/requirements/doc.req.md", "doc.req.md", "current")

	assert.Equal(t, BaselineNone, source)
	// The current content doubles as the baseline, so the detector reports
	// no changes instead of treating the whole document as new.
	assert.False(t, Compare(content, "current").HasChanges)
}
