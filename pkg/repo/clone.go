// Package repo clones generated app repositories into a local workspace.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	// DefaultBranch is cloned when none is given.
	DefaultBranch = "main"

	// DefaultTimeout bounds a whole clone.
	DefaultTimeout = 60 * time.Second
)

// ErrTimeout reports that a clone did not finish within its budget.
var ErrTimeout = errors.New("clone operation timed out")

// Clone describes a finished clone.
type Clone struct {
	URL      string
	Path     string
	Branch   string
	Head     string
	ClonedAt time.Time
}

type options struct {
	depth   int
	timeout time.Duration
}

// Option customizes a clone.
type Option func(*options)

// WithDepth sets the history depth; zero clones full history.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// CloneBranch makes a shallow single-branch clone of url into path.
// The parent of path is created when missing.
func CloneBranch(ctx context.Context, url, path, branch string, opts ...Option) (*Clone, error) {
	o := options{depth: 1, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if url == "" {
		return nil, errors.New("repo_url is required")
	}
	if path == "" {
		return nil, errors.New("local_path is required")
	}
	if branch == "" {
		branch = DefaultBranch
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve local path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create parent directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	r, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         o.depth,
	})
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w after %s", ErrTimeout, o.timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, fmt.Errorf("git clone interrupted: %w", context.Canceled)
		}
		return nil, fmt.Errorf("git clone failed: %w", err)
	}

	if info, err := os.Stat(filepath.Join(path, git.GitDirName)); err != nil || !info.IsDir() {
		return nil, errors.New("clone succeeded but .git directory not found")
	}

	c := &Clone{URL: url, Path: path, Branch: branch, ClonedAt: time.Now()}
	if head, err := r.Head(); err == nil {
		c.Head = head.Hash().String()
	}
	return c, nil
}
