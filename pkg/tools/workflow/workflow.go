// Package workflow holds what the AI Studio and v0 workflows share: the
// browser opener, per-site wait budgets, logging and the poll runner.
package workflow

import (
	"context"
	"time"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/logging"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// progressEvery is how often a long wait reports at info level.
const progressEvery = 30 * time.Second

// Env is the collaborator set a workflow runs against.
type Env struct {
	Opener browser.Opener
	Timing *config.TimingSection
	Logger *logging.Logger

	// Headless applies to non-interactive sessions; logins are always headed
	Headless bool

	// SnapshotDir receives screenshots when a workflow cannot proceed
	SnapshotDir string

	// Clock drives every wait; nil means real time
	Clock poll.Clock

	// Progress, when set, receives every probe attempt of every wait
	Progress func(site string, a poll.Attempt)
}

// Config returns the budget for a wait site.
func (e Env) Config(site string) poll.Config {
	if e.Timing != nil {
		return e.Timing.Get(site)
	}
	return config.DefaultTimings[site]
}

// Now returns the current time of the env's clock.
func (e Env) Now() time.Time {
	return e.clock().Now()
}

// Since returns the time elapsed since t on the env's clock.
func (e Env) Since(t time.Time) time.Duration {
	return e.clock().Now().Sub(t)
}

func (e Env) clock() poll.Clock {
	if e.Clock != nil {
		return e.Clock
	}
	return poll.RealClock()
}

// Sleep suspends for d on the env's clock, returning early with the
// context's cause when ctx is done.
func (e Env) Sleep(ctx context.Context, d time.Duration) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-e.clock().After(d):
		return nil
	}
}

// Wait runs probe under the budget configured for site.
func (e Env) Wait(ctx context.Context, site string, probe poll.Probe[string]) poll.Outcome[string] {
	return e.WaitWith(ctx, site, e.Config(site), probe)
}

// WaitWith runs probe under cfg, logging attempts at debug level and a
// progress line every 30 seconds.
func (e Env) WaitWith(ctx context.Context, site string, cfg poll.Config, probe poll.Probe[string]) poll.Outcome[string] {
	logger := e.Logger
	logger.Debugf("waiting for %s (%s)", site, cfg)

	var nextReport time.Duration = progressEvery
	observer := func(a poll.Attempt) {
		logger.Debugf("%s attempt %d: %s after %s", site, a.Number, a.Status, a.Elapsed.Round(time.Millisecond))
		if a.Elapsed >= nextReport {
			logger.Infof("still waiting for %s (%ds elapsed)", site, int(a.Elapsed.Seconds()))
			for nextReport <= a.Elapsed {
				nextReport += progressEvery
			}
		}
		if e.Progress != nil {
			e.Progress(site, a)
		}
	}

	out := poll.Run(ctx, cfg, probe, poll.WithClock(e.clock()), poll.WithObserver(observer))
	switch out.Kind() {
	case poll.KindSuccess:
		logger.Infof("%s done after %s (%d attempts)", site, out.Elapsed().Round(time.Millisecond), out.Attempts())
	case poll.KindTimeout:
		logger.Warnf("%s: %v", site, out.Err())
	default:
		logger.Errorf("%s failed: %v", site, out.Err())
	}
	return out
}

// ClickIfVisible clicks t when it is currently visible and reports whether it did.
func ClickIfVisible(page browser.Page, t browser.Target) (bool, error) {
	visible, err := page.IsVisible(t)
	if err != nil || !visible {
		return false, nil
	}
	if err := page.Click(t); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot saves a screenshot of page under the env's snapshot directory
// and returns its path, or "" when no directory is configured or capture fails.
func (e Env) Snapshot(page browser.Page, name string) string {
	if e.SnapshotDir == "" {
		return ""
	}
	path, err := browser.Snapshot(page, e.SnapshotDir, name)
	if err != nil {
		e.Logger.Warnf("snapshot %s failed: %v", name, err)
		return ""
	}
	e.Logger.Infof("saved snapshot %s", path)
	return path
}

// Timestamp formats t for result fields.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
