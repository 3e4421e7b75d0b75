package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/shipyard/pkg/logging"
)

// Launcher owns the Playwright driver and the sessions opened through it.
type Launcher struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	sessions    map[*pwSession]struct{}
	viewport    Viewport
	timeout     time.Duration
	initialized bool
	logger      *logging.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithViewport sets the viewport of every session.
func WithViewport(v Viewport) LauncherOption {
	return func(l *Launcher) {
		if v.Width > 0 && v.Height > 0 {
			l.viewport = v
		}
	}
}

// WithActionTimeout sets Playwright's default timeout for single actions.
func WithActionTimeout(d time.Duration) LauncherOption {
	return func(l *Launcher) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger *logging.Logger) LauncherOption {
	return func(l *Launcher) { l.logger = logger }
}

// NewLauncher creates a launcher. Playwright starts on the first Open.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		sessions: make(map[*pwSession]struct{}),
		viewport: Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Install downloads the Playwright driver and Chromium.
func Install(out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  true,
		Stdout:   out,
		Stderr:   out,
	})
	if err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// initialize starts Playwright. Caller holds l.mu.
func (l *Launcher) initialize() error {
	if l.initialized {
		return nil
	}

	// Driver output would corrupt stdout, which carries MCP frames
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	l.playwright = pw
	l.initialized = true
	return nil
}

// Open starts a browser session.
func (l *Launcher) Open(ctx context.Context, opts OpenOptions) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.RequireState {
		if opts.State == nil {
			return nil, ErrNotAuthenticated
		}
		if err := opts.State.Require(); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.initialize(); err != nil {
		return nil, err
	}

	size := &playwright.Size{Width: l.viewport.Width, Height: l.viewport.Height}

	var s *pwSession
	if opts.ProfileDir != "" {
		if err := os.MkdirAll(opts.ProfileDir, 0700); err != nil {
			return nil, fmt.Errorf("profile directory: %w", err)
		}
		bctx, err := l.playwright.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(opts.Headless),
			Viewport: size,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch persistent context: %w", err)
		}
		var page playwright.Page
		if pages := bctx.Pages(); len(pages) > 0 {
			page = pages[0]
		} else if page, err = bctx.NewPage(); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
		s = &pwSession{launcher: l, context: bctx, page: newPage(page, l.timeout)}
		l.logger.Debugf("opened persistent session profile=%s headless=%t", opts.ProfileDir, opts.Headless)
	} else {
		browser, err := l.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}

		contextOpts := playwright.BrowserNewContextOptions{Viewport: size}
		if opts.State != nil && opts.State.Exists() {
			contextOpts.StorageStatePath = playwright.String(opts.State.Path())
		}
		bctx, err := browser.NewContext(contextOpts)
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}
		page, err := bctx.NewPage()
		if err != nil {
			bctx.Close()
			browser.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
		s = &pwSession{launcher: l, browser: browser, context: bctx, page: newPage(page, l.timeout)}
		l.logger.Debugf("opened session headless=%t state=%t", opts.Headless, contextOpts.StorageStatePath != nil)
	}

	l.sessions[s] = struct{}{}
	return s, nil
}

func (l *Launcher) forget(s *pwSession) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, s)
}

// Shutdown closes all sessions and stops Playwright.
func (l *Launcher) Shutdown() error {
	l.mu.Lock()
	open := make([]*pwSession, 0, len(l.sessions))
	for s := range l.sessions {
		open = append(open, s)
	}
	l.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized && l.playwright != nil {
		if err := l.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		l.initialized = false
	}
	return errors.Join(errs...)
}
