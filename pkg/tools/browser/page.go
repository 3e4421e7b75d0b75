package browser

import (
	"context"
	"errors"
	"time"
)

// ErrPageClosed reports that the page or its browser went away.
var ErrPageClosed = errors.New("browser page closed")

// Page is the element-level surface workflows and probes use.
type Page interface {
	Goto(url string) error
	URL() string
	Click(t Target) error
	Fill(t Target, value string) error
	IsVisible(t Target) (bool, error)
	WaitFor(t Target, state WaitState, timeout time.Duration) error
	WaitForURL(pattern string, timeout time.Duration) error
	Content() (string, error)
	Screenshot(path string) error
	IsClosed() bool
	Close() error
}

// Session is one browser context with its active page.
type Session interface {
	Page() Page
	SaveState(h StateHandle) error
	Close() error
}

// Opener opens browser sessions. *Launcher is the production implementation.
type Opener interface {
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}

// IsClosed reports whether err means the page is gone.
func IsClosed(page Page, err error) bool {
	if errors.Is(err, ErrPageClosed) {
		return true
	}
	return page != nil && page.IsClosed()
}
