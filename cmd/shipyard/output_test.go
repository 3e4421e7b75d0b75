package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
)

func TestWriteResultPlain(t *testing.T) {
	var buf bytes.Buffer
	r := tools.Success(1500*time.Millisecond).With("app_url", "https://aistudio.google.com/apps/drive/1?a=b&c=d")

	require.NoError(t, writeResult(&buf, r, false))

	assert.JSONEq(t, `{
		"status": "success",
		"duration_seconds": 1.5,
		"app_url": "https://aistudio.google.com/apps/drive/1?a=b&c=d"
	}`, buf.String())
	assert.Contains(t, buf.String(), "&c=d")
	assert.Contains(t, buf.String(), "\n  \"")
}

func TestWriteResultColor(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeResult(&buf, tools.Success(0), true))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "success")
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "✓ success in 96.0s", statusLine(tools.Success(96*time.Second), false))

	timeout := &tools.Result{Envelope: tools.Envelope{Status: tools.StatusTimeout, DurationSeconds: 300, Error: "implementation did not complete within 300 seconds"}}
	assert.Equal(t, "⏱ timeout in 300.0s: implementation did not complete within 300 seconds", statusLine(timeout, false))

	assert.Equal(t, "✗ error in 0.0s: app_url is required", statusLine(tools.Errorf(0, "app_url is required"), false))
}

func TestResultURL(t *testing.T) {
	deployment := tools.Success(0).With("deployed_url", "https://habit-tracker-7c2k9-uc.a.run.app")
	combined := tools.Success(0).
		With("commit", tools.Success(0)).
		With("deployment", deployment)

	assert.Equal(t, "https://habit-tracker-7c2k9-uc.a.run.app", resultURL(combined))
	assert.Equal(t, "https://abc.vercel.app", resultURL(tools.Success(0).With("production_url", "https://abc.vercel.app")))
	assert.Empty(t, resultURL(tools.Success(0).With("view", (*tools.Result)(nil))))
	assert.Empty(t, resultURL(nil))
}

func TestCopyURL(t *testing.T) {
	var copied string
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = clipboardDefault })

	var buf bytes.Buffer
	copyURL(&buf, tools.Success(0).With("app_url", "https://aistudio.google.com/apps/drive/1"))
	assert.Equal(t, "https://aistudio.google.com/apps/drive/1", copied)
	assert.Equal(t, "copied https://aistudio.google.com/apps/drive/1\n", buf.String())

	buf.Reset()
	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	copyURL(&buf, tools.Success(0).With("app_url", "x"))
	assert.Contains(t, buf.String(), "no clipboard utility")

	buf.Reset()
	copyURL(&buf, tools.Success(0))
	assert.Equal(t, "nothing to copy\n", buf.String())
}

func TestProgressModel(t *testing.T) {
	m := newProgressModel("aistudio_wait_for_implementation")
	assert.Contains(t, m.View(), "running aistudio_wait_for_implementation")

	next, cmd := m.Update(attemptMsg{site: "implementation", attempt: poll.Attempt{Number: 3, Elapsed: 96 * time.Second}})
	assert.Nil(t, cmd)
	m = next.(progressModel)
	assert.Contains(t, m.View(), "attempt 3, 1m36s elapsed")

	next, cmd = m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}
