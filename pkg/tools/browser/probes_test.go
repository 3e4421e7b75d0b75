package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/browser/browsertest"
)

var stop = browser.CSS(`button[aria-label*="Stop"]`).AtFirst()

func TestHiddenProbe(t *testing.T) {
	page := browsertest.NewPage("https://aistudio.google.com/apps/drive/1")
	page.ScriptVisible(stop, true, true, false)

	probe := browser.HiddenProbe(page, stop)
	ctx := context.Background()

	assert.Equal(t, poll.StatusPending, probe(ctx).Status())
	assert.Equal(t, poll.StatusPending, probe(ctx).Status())

	obs := probe(ctx)
	assert.Equal(t, poll.StatusDone, obs.Status())
	assert.Equal(t, "https://aistudio.google.com/apps/drive/1", obs.Payload())
}

func TestProbeErrorClassification(t *testing.T) {
	t.Run("transient locator error stays pending", func(t *testing.T) {
		page := browsertest.NewPage("about:blank")
		page.SetError(stop, errors.New("strict mode violation"))

		obs := browser.HiddenProbe(page, stop)(context.Background())
		assert.Equal(t, poll.StatusPending, obs.Status())
	})

	t.Run("closed page fails the probe", func(t *testing.T) {
		page := browsertest.NewPage("about:blank")
		require.NoError(t, page.Close())

		obs := browser.VisibleProbe(page, stop)(context.Background())
		assert.Equal(t, poll.StatusFailed, obs.Status())
		assert.ErrorIs(t, obs.Cause(), browser.ErrPageClosed)
	})
}

func TestFailIfVisibleTakesPrecedence(t *testing.T) {
	banner := browser.Text("An internal error occurred")
	finished := browser.Text("Finished")

	page := browsertest.NewPage("https://aistudio.google.com/apps/temp/1")
	page.SetVisible(banner, true).SetVisible(finished, true)

	probe := poll.Any(
		browser.FailIfVisible(page, banner, "internal error"),
		browser.VisibleProbe(page, finished),
	)
	obs := probe(context.Background())
	assert.Equal(t, poll.StatusFailed, obs.Status())
	assert.EqualError(t, obs.Cause(), "internal error")
}

func TestURLProbe(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		want    poll.Status
	}{
		{"drive project", "**/apps/drive/**", "https://aistudio.google.com/apps/drive/abc?source=start", poll.StatusDone},
		{"temp project", "**/apps/temp/**", "https://aistudio.google.com/apps/temp/1", poll.StatusDone},
		{"still on start page", "**/apps/drive/**", "https://aistudio.google.com/apps?source=start", poll.StatusPending},
		{"single star stays in segment", "https://v0.app/*", "https://v0.app/chat/abc", poll.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.NewPage(tt.url)
			probe, err := browser.URLProbe(page, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, probe(context.Background()).Status())
		})
	}

	_, err := browser.URLProbe(browsertest.NewPage(""), "[unclosed")
	assert.Error(t, err)
}

func TestDeployedURLProbeWithPollRun(t *testing.T) {
	page := browsertest.NewPage("https://aistudio.google.com/apps/drive/1")
	calls := 0

	probe := func(ctx context.Context) poll.Observation[string] {
		calls++
		if calls == 3 {
			page.SetContent(`<html><body><a href="https://my-app-123.run.app">Open</a></body></html>`)
		}
		return browser.DeployedURLProbe(page)(ctx)
	}

	cfg := poll.MustConfig(0, time.Millisecond, time.Second)
	out := poll.Run(context.Background(), cfg, probe)
	require.True(t, out.Succeeded())
	assert.Equal(t, "https://my-app-123.run.app", out.Value())
	assert.Equal(t, 3, out.Attempts())
}
