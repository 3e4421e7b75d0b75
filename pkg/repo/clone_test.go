package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSourceRepo creates a repository with one commit on "main".
func newSourceRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>app</h1>"), 0600))

	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash)
	require.NoError(t, r.Storer.SetReference(ref))
	return dir, hash.String()
}

func TestCloneBranch(t *testing.T) {
	src, head := newSourceRepo(t)
	dest := filepath.Join(t.TempDir(), "nested", "app")

	c, err := CloneBranch(context.Background(), src, dest, "", WithDepth(0))
	require.NoError(t, err)

	assert.Equal(t, src, c.URL)
	assert.Equal(t, dest, c.Path)
	assert.Equal(t, DefaultBranch, c.Branch)
	assert.Equal(t, head, c.Head)
	assert.FileExists(t, filepath.Join(dest, "index.html"))
	assert.DirExists(t, filepath.Join(dest, ".git"))
}

func TestCloneBranchMissingBranch(t *testing.T) {
	src, _ := newSourceRepo(t)

	_, err := CloneBranch(context.Background(), src, filepath.Join(t.TempDir(), "app"), "does-not-exist", WithDepth(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git clone failed")
}

func TestCloneBranchValidation(t *testing.T) {
	_, err := CloneBranch(context.Background(), "", "x", "main")
	assert.EqualError(t, err, "repo_url is required")

	_, err = CloneBranch(context.Background(), "https://example.com/r.git", "", "main")
	assert.EqualError(t, err, "local_path is required")
}

func TestCloneBranchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CloneBranch(ctx, filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "app"), "main")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}
