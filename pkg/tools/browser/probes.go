package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/shipyard/pkg/poll"
)

// VisibleProbe is Done with the page URL once t is visible.
func VisibleProbe(page Page, t Target) poll.Probe[string] {
	return func(context.Context) poll.Observation[string] {
		visible, err := page.IsVisible(t)
		if err != nil {
			return pendingOrClosed(page, err)
		}
		if visible {
			return poll.Done(page.URL())
		}
		return poll.Pending[string]()
	}
}

// HiddenProbe is Done with the page URL once t is not visible.
// An element that does not exist counts as hidden.
func HiddenProbe(page Page, t Target) poll.Probe[string] {
	return func(context.Context) poll.Observation[string] {
		visible, err := page.IsVisible(t)
		if err != nil {
			return pendingOrClosed(page, err)
		}
		if !visible {
			return poll.Done(page.URL())
		}
		return poll.Pending[string]()
	}
}

// FailIfVisible reports ProbeFailed with message when t is visible and
// Pending otherwise. Compose it ahead of a completion probe with poll.Any.
func FailIfVisible(page Page, t Target, message string) poll.Probe[string] {
	return func(context.Context) poll.Observation[string] {
		visible, err := page.IsVisible(t)
		if err != nil {
			return pendingOrClosed(page, err)
		}
		if visible {
			return poll.ProbeFailed[string](errors.New(message))
		}
		return poll.Pending[string]()
	}
}

// URLProbe is Done with the page URL once it matches pattern. Patterns use
// Playwright's URL glob syntax: "*" stays within a path segment, "**"
// crosses segments.
func URLProbe(page Page, pattern string) (poll.Probe[string], error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
	}
	return func(context.Context) poll.Observation[string] {
		if page.IsClosed() {
			return poll.ProbeFailed[string](ErrPageClosed)
		}
		url := page.URL()
		if g.Match(url) {
			return poll.Done(url)
		}
		return poll.Pending[string]()
	}, nil
}

// MustURLProbe is URLProbe for patterns known at compile time.
func MustURLProbe(page Page, pattern string) poll.Probe[string] {
	probe, err := URLProbe(page, pattern)
	if err != nil {
		panic(err)
	}
	return probe
}

// DeployedURLProbe is Done with the first Cloud Run URL found in the page.
func DeployedURLProbe(page Page) poll.Probe[string] {
	return func(context.Context) poll.Observation[string] {
		content, err := page.Content()
		if err != nil {
			return pendingOrClosed(page, err)
		}
		if url, ok := FindDeployedURL(content); ok {
			return poll.Done(url)
		}
		return poll.Pending[string]()
	}
}

// pendingOrClosed treats a closed page as fatal and anything else as "not yet".
func pendingOrClosed(page Page, err error) poll.Observation[string] {
	if IsClosed(page, err) {
		return poll.ProbeFailed[string](fmt.Errorf("%w: %w", ErrPageClosed, err))
	}
	return poll.Pending[string]()
}
