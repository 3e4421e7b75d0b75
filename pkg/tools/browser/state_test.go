package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "aistudio.json")
	h := NewStateHandle(path)

	assert.False(t, h.Exists())
	err := h.Require()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Contains(t, err.Error(), path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	assert.True(t, h.Exists())
	assert.NoError(t, h.Require())

	require.NoError(t, h.Remove())
	assert.False(t, h.Exists())
	assert.NoError(t, h.Remove(), "removing a missing file is not an error")
}

func TestStateHandleExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	h := NewStateHandle("~/.shipyard/state/v0.json")
	assert.Equal(t, filepath.Join(home, ".shipyard", "state", "v0.json"), h.Path())
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, `role=button[name="Build"] exact`, Button("Build").WithExact().String())
	assert.Equal(t, `text="Finished"`, Text("Finished").String())
	assert.Equal(t, `button:has-text("Redeploy") >> first`, ButtonWithText("Redeploy").AtFirst().String())
}
