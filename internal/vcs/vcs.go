package vcs

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// VersionControl is the collaborator the cascade engine consults for the
// working-tree state and for historical file content. Content lookups report
// absence via found=false, not an error.
type VersionControl interface {
	HasUnstagedChanges() (bool, error)
	StageAll() error
	CommittedContent(relPath string) (content string, found bool, err error)
	StagedContent(relPath string) (content string, found bool, err error)
}

// Git implements VersionControl over a local repository via go-git.
type Git struct {
	repo *git.Repository
}

// Open opens the repository rooted at path.
func Open(path string) (*Git, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &Git{repo: repo}, nil
}

func (g *Git) HasUnstagedChanges() (bool, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return !status.IsClean(), nil
}

// StageAll stages every pending change. Best-effort from the caller's point
// of view: a failure here never aborts a cascade.
func (g *Git) StageAll() error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// CommittedContent returns the file's content at HEAD.
func (g *Git) CommittedContent(relPath string) (string, bool, error) {
	head, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return "", false, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	file, err := commit.File(relPath)
	if err != nil {
		return "", false, nil
	}
	content, err := file.Contents()
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s at HEAD: %w", relPath, err)
	}
	return content, true, nil
}

// StagedContent returns the file's content in the index.
func (g *Git) StagedContent(relPath string) (string, bool, error) {
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return "", false, fmt.Errorf("failed to read index: %w", err)
	}
	entry, err := idx.Entry(relPath)
	if err != nil {
		return "", false, nil
	}
	blob, err := g.repo.BlobObject(entry.Hash)
	if err != nil {
		return "", false, nil
	}
	reader, err := blob.Reader()
	if err != nil {
		return "", false, fmt.Errorf("failed to open staged blob for %s: %w", relPath, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", false, fmt.Errorf("failed to read staged blob for %s: %w", relPath, err)
	}
	return string(data), true, nil
}
