package diff

import (
	"promptpress/internal/store"
	"promptpress/internal/vcs"
)

// BaselineSource records where the diff anchor came from.
type BaselineSource string

const (
	BaselineCommitted BaselineSource = "committed"
	BaselineStaged    BaselineSource = "staged"
	BaselineCached    BaselineSource = "cache"
	BaselineNone      BaselineSource = "none"
)

// ResolveBaseline picks the snapshot to diff the current content against:
// last committed content, then staged content, then the cached baseline.
// When none exists the current content is returned as its own baseline, so
// the cascade sees no detectable change rather than treating everything as
// new.
func ResolveBaseline(v vcs.VersionControl, cache *store.BaselineCache, relPath, filename, current string) (string, BaselineSource) {
	if v != nil {
		if content, found, err := v.CommittedContent(relPath); err == nil && found {
			return content, BaselineCommitted
		}
		if content, found, err := v.StagedContent(relPath); err == nil && found {
			return content, BaselineStaged
		}
	}
	if cache != nil {
		if content, found := cache.Get(filename); found {
			return content, BaselineCached
		}
	}
	return current, BaselineNone
}
