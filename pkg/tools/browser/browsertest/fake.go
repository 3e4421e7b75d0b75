// Package browsertest provides in-memory fakes of the browser package's
// Page, Session and Opener for workflow tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// Page is a scriptable browser.Page. Visibility answers are keyed by
// Target.String(); an unscripted target is not visible.
type Page struct {
	mu       sync.Mutex
	url      string
	content  string
	closed   bool
	visible  map[string][]bool
	errs     map[string]error
	onClick  map[string]func(p *Page) error
	onGoto   func(p *Page, url string) error
	clicks   []string
	fills    map[string]string
	visits   []string
	shots    []string
	probes   map[string]int
	closeErr error
}

// NewPage returns a page showing url.
func NewPage(url string) *Page {
	return &Page{
		url:     url,
		visible: make(map[string][]bool),
		errs:    make(map[string]error),
		onClick: make(map[string]func(p *Page) error),
		fills:   make(map[string]string),
		probes:  make(map[string]int),
	}
}

// SetVisible fixes the visibility of t.
func (p *Page) SetVisible(t browser.Target, visible bool) *Page {
	return p.ScriptVisible(t, visible)
}

// ScriptVisible makes successive IsVisible calls for t answer seq in order;
// the last answer repeats.
func (p *Page) ScriptVisible(t browser.Target, seq ...bool) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[t.String()] = append([]bool(nil), seq...)
	return p
}

// SetError makes every call addressing t fail with err.
func (p *Page) SetError(t browser.Target, err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[t.String()] = err
	return p
}

// OnClick runs fn when t is clicked.
func (p *Page) OnClick(t browser.Target, fn func(p *Page) error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick[t.String()] = fn
	return p
}

// OnGoto runs fn on every navigation, after the URL changes.
func (p *Page) OnGoto(fn func(p *Page, url string) error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onGoto = fn
	return p
}

// SetURL changes the current URL.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// SetContent sets the HTML returned by Content.
func (p *Page) SetContent(html string) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = html
	return p
}

// CloseAfter closes the page once t has been probed n times.
func (p *Page) CloseAfter(t browser.Target, n int) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes["close:"+t.String()] = n
	return p
}

func (p *Page) Goto(url string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return browser.ErrPageClosed
	}
	p.url = url
	p.visits = append(p.visits, url)
	fn := p.onGoto
	p.mu.Unlock()
	if fn != nil {
		return fn(p, url)
	}
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Click(t browser.Target) error {
	p.mu.Lock()
	if err := p.checkLocked(t); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("click %s: %w", t, err)
	}
	p.clicks = append(p.clicks, t.String())
	fn := p.onClick[t.String()]
	p.mu.Unlock()
	if fn != nil {
		return fn(p)
	}
	return nil
}

func (p *Page) Fill(t browser.Target, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(t); err != nil {
		return fmt.Errorf("fill %s: %w", t, err)
	}
	p.fills[t.String()] = value
	return nil
}

func (p *Page) IsVisible(t browser.Target) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(t); err != nil {
		return false, err
	}
	key := t.String()
	p.probes[key]++
	if limit, ok := p.probes["close:"+key]; ok && p.probes[key] > limit {
		p.closed = true
		return false, browser.ErrPageClosed
	}
	seq := p.visible[key]
	if len(seq) == 0 {
		return false, nil
	}
	v := seq[0]
	if len(seq) > 1 {
		p.visible[key] = seq[1:]
	}
	return v, nil
}

// WaitFor answers from the current scripted visibility without blocking.
func (p *Page) WaitFor(t browser.Target, state browser.WaitState, timeout time.Duration) error {
	visible, err := p.IsVisible(t)
	if err != nil {
		return err
	}
	if visible == (state == browser.StateVisible) {
		return nil
	}
	return fmt.Errorf("wait for %s %s: timeout %s exceeded", t, state, timeout)
}

func (p *Page) WaitForURL(pattern string, timeout time.Duration) error {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return err
	}
	if g.Match(p.URL()) {
		return nil
	}
	return fmt.Errorf("wait for url %s: timeout %s exceeded", pattern, timeout)
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrPageClosed
	}
	return p.content, nil
}

// Screenshot records the path and writes an empty file there.
func (p *Page) Screenshot(path string) error {
	p.mu.Lock()
	p.shots = append(p.shots, path)
	p.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0600)
}

func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeErr
}

// Clicks returns the targets clicked, in order.
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Filled returns the value filled into t.
func (p *Page) Filled(t browser.Target) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.fills[t.String()]
	return v, ok
}

// Visits returns the URLs navigated to, in order.
func (p *Page) Visits() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visits...)
}

// Screenshots returns the screenshot paths taken.
func (p *Page) Screenshots() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.shots...)
}

// ProbeCount returns how many times t's visibility was queried.
func (p *Page) ProbeCount(t browser.Target) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.probes[t.String()]
}

func (p *Page) checkLocked(t browser.Target) error {
	if p.closed {
		return browser.ErrPageClosed
	}
	return p.errs[t.String()]
}

// Session is a fake browser.Session.
type Session struct {
	mu      sync.Mutex
	Main    *Page
	Saved   []string
	SaveErr error
	Closed  bool
}

// NewSession returns a session whose active page is main.
func NewSession(main *Page) *Session {
	return &Session{Main: main}
}

func (s *Session) Page() browser.Page { return s.Main }

// SaveState writes an empty storage-state document to h.
func (s *Session) SaveState(h browser.StateHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if err := os.MkdirAll(filepath.Dir(h.Path()), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(h.Path(), []byte(`{"cookies":[],"origins":[]}`), 0600); err != nil {
		return err
	}
	s.Saved = append(s.Saved, h.Path())
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	if s.Main != nil {
		s.Main.Close()
	}
	return nil
}

// Opener hands out Session, or fails with Err. It enforces RequireState
// like the real launcher.
type Opener struct {
	mu      sync.Mutex
	Session *Session
	Err     error
	Opened  []browser.OpenOptions
}

// NewOpener returns an opener for session.
func NewOpener(session *Session) *Opener {
	return &Opener{Session: session}
}

func (o *Opener) Open(ctx context.Context, opts browser.OpenOptions) (browser.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Opened = append(o.Opened, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.RequireState {
		if opts.State == nil {
			return nil, browser.ErrNotAuthenticated
		}
		if err := opts.State.Require(); err != nil {
			return nil, err
		}
	}
	if o.Err != nil {
		return nil, o.Err
	}
	if o.Session == nil {
		return nil, errors.New("browsertest: no session configured")
	}
	return o.Session, nil
}
