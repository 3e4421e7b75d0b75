package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pwPage adapts playwright.Page to Page.
type pwPage struct {
	page playwright.Page
}

func newPage(page playwright.Page, timeout time.Duration) *pwPage {
	page.SetDefaultTimeout(millis(timeout))
	return &pwPage{page: page}
}

func (p *pwPage) locator(t Target) playwright.Locator {
	var loc playwright.Locator
	switch {
	case t.Role != "":
		loc = p.page.GetByRole(playwright.AriaRole(t.Role), playwright.PageGetByRoleOptions{
			Name:  t.Name,
			Exact: playwright.Bool(t.Exact),
		})
	case t.Text != "":
		loc = p.page.GetByText(t.Text, playwright.PageGetByTextOptions{
			Exact: playwright.Bool(t.Exact),
		})
	default:
		opts := playwright.PageLocatorOptions{}
		if t.HasText != "" {
			opts.HasText = t.HasText
		}
		loc = p.page.Locator(t.CSS, opts)
	}
	if t.First {
		loc = loc.First()
	}
	return loc
}

func (p *pwPage) Goto(url string) error {
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, translate(err))
	}
	return nil
}

func (p *pwPage) URL() string { return p.page.URL() }

func (p *pwPage) Click(t Target) error {
	if err := p.locator(t).Click(); err != nil {
		return fmt.Errorf("click %s: %w", t, translate(err))
	}
	return nil
}

func (p *pwPage) Fill(t Target, value string) error {
	if err := p.locator(t).Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", t, translate(err))
	}
	return nil
}

func (p *pwPage) IsVisible(t Target) (bool, error) {
	visible, err := p.locator(t).IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility of %s: %w", t, translate(err))
	}
	return visible, nil
}

func (p *pwPage) WaitFor(t Target, state WaitState, timeout time.Duration) error {
	opts := playwright.LocatorWaitForOptions{Timeout: playwright.Float(millis(timeout))}
	if state == StateHidden {
		opts.State = playwright.WaitForSelectorStateHidden
	} else {
		opts.State = playwright.WaitForSelectorStateVisible
	}
	if err := p.locator(t).WaitFor(opts); err != nil {
		return fmt.Errorf("wait for %s %s: %w", t, state, translate(err))
	}
	return nil
}

func (p *pwPage) WaitForURL(pattern string, timeout time.Duration) error {
	err := p.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("wait for url %s: %w", pattern, translate(err))
	}
	return nil
}

func (p *pwPage) Content() (string, error) {
	content, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", translate(err))
	}
	return content, nil
}

func (p *pwPage) Screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("screenshot directory: %w", err)
	}
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot: %w", translate(err))
	}
	return nil
}

func (p *pwPage) IsClosed() bool { return p.page.IsClosed() }

func (p *pwPage) Close() error {
	if p.page.IsClosed() {
		return nil
	}
	return p.page.Close()
}

// pwSession adapts a context (and, for ephemeral sessions, its browser).
type pwSession struct {
	launcher *Launcher
	browser  playwright.Browser
	context  playwright.BrowserContext
	page     *pwPage
}

func (s *pwSession) Page() Page { return s.page }

// SaveState writes the context's storage state to h, creating parent directories.
func (s *pwSession) SaveState(h StateHandle) error {
	if err := os.MkdirAll(filepath.Dir(h.Path()), 0700); err != nil {
		return fmt.Errorf("state directory: %w", err)
	}
	if _, err := s.context.StorageState(h.Path()); err != nil {
		return fmt.Errorf("save session state to %s: %w", h.Path(), translate(err))
	}
	return nil
}

// Close releases page, context and browser. Errors are joined, cleanup continues.
func (s *pwSession) Close() error {
	var errs []error
	if err := s.page.Close(); err != nil && !errors.Is(translate(err), ErrPageClosed) {
		errs = append(errs, err)
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.launcher.forget(s)
	return errors.Join(errs...)
}

// translate maps Playwright's closed-target error onto ErrPageClosed.
func translate(err error) error {
	if errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("%w: %w", ErrPageClosed, err)
	}
	return err
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
