package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("missing file yields empty config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		assert.Equal(t, path, store.Path())
		assert.False(t, store.IsModified())

		section, err := store.GetSection("anything")
		require.NoError(t, err)
		assert.Empty(t, section)
	})

	t.Run("default path under home", func(t *testing.T) {
		store, err := NewFileStore("")
		require.NoError(t, err)

		homeDir, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(homeDir, ".shipyard", "config.json"), store.Path())
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})
}

func TestFileStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("browser", map[string]interface{}{"headless": true}))
	assert.True(t, store.IsModified())
	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, storeVersion, doc.Version)

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	section, err := reloaded.GetSection("browser")
	require.NoError(t, err)
	assert.Equal(t, true, section["headless"])
}

func TestFileStoreReturnsCopies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	data := map[string]interface{}{"dir": "/a"}
	require.NoError(t, store.SetSection("docs", data))
	data["dir"] = "/mutated"

	got, err := store.GetSection("docs")
	require.NoError(t, err)
	assert.Equal(t, "/a", got["dir"])

	got["dir"] = "/mutated-again"
	again, _ := store.GetSection("docs")
	assert.Equal(t, "/a", again["dir"])
}
