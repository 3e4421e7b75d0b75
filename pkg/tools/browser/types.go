package browser

import (
	"fmt"
	"strings"
	"time"
)

// Target addresses one element on a page. Exactly one of Role, Text or CSS
// selects the strategy, checked in that order.
type Target struct {
	// Role is an ARIA role such as "button" or "link", matched with Name
	Role string
	Name string

	// Text matches visible text
	Text string

	// CSS is a Playwright selector, optionally narrowed by HasText
	CSS     string
	HasText string

	// Exact disables substring matching for Name and Text
	Exact bool

	// First narrows a multi-element match to its first element
	First bool
}

// Role targets an element by ARIA role and accessible name.
func Role(role, name string) Target { return Target{Role: role, Name: name} }

// Button targets a button by accessible name.
func Button(name string) Target { return Role("button", name) }

// Link targets a link by accessible name.
func Link(name string) Target { return Role("link", name) }

// Text targets an element by its visible text.
func Text(text string) Target { return Target{Text: text} }

// CSS targets elements with a Playwright selector.
func CSS(selector string) Target { return Target{CSS: selector} }

// ButtonWithText targets a <button> containing text.
func ButtonWithText(text string) Target { return Target{CSS: "button", HasText: text} }

// WithExact returns a copy of t matching Name or Text exactly.
func (t Target) WithExact() Target {
	t.Exact = true
	return t
}

// AtFirst returns a copy of t narrowed to the first match.
func (t Target) AtFirst() Target {
	t.First = true
	return t
}

// String describes the target for logs and error messages.
func (t Target) String() string {
	var b strings.Builder
	switch {
	case t.Role != "":
		fmt.Fprintf(&b, "role=%s[name=%q]", t.Role, t.Name)
	case t.Text != "":
		fmt.Fprintf(&b, "text=%q", t.Text)
	default:
		b.WriteString(t.CSS)
		if t.HasText != "" {
			fmt.Fprintf(&b, ":has-text(%q)", t.HasText)
		}
	}
	if t.Exact {
		b.WriteString(" exact")
	}
	if t.First {
		b.WriteString(" >> first")
	}
	return b.String()
}

// WaitState is the element state a blocking wait targets.
type WaitState string

const (
	StateVisible WaitState = "visible"
	StateHidden  WaitState = "hidden"
)

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Default session settings
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// DefaultTimeout bounds single Playwright actions (click, fill, goto)
	DefaultTimeout = 30 * time.Second
)

// OpenOptions configures one session.
type OpenOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ProfileDir, when set, opens a persistent Chromium profile
	ProfileDir string

	// State seeds an ephemeral context when its file exists
	State *StateHandle

	// RequireState fails the open with ErrNotAuthenticated when State is missing
	RequireState bool
}
