package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/shipyard/pkg/tools"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	amber      = lipgloss.Color("#FFD59E")
	mutedGray  = lipgloss.Color("#6B7280")

	successStyle = lipgloss.NewStyle().Foreground(mintGreen).Bold(true)
	timeoutStyle = lipgloss.NewStyle().Foreground(amber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(salmonPink).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(mutedGray)
)

// urlFields are the result fields worth copying, most specific first.
var urlFields = []string{"deployed_url", "production_url", "app_url", "repo_url", "local_path"}

// writeResult prints r as indented JSON, highlighted when color is set.
func writeResult(w io.Writer, r *tools.Result, color bool) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if color {
		if err := quick.Highlight(w, buf.String(), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// statusLine summarizes r in one line for stderr.
func statusLine(r *tools.Result, color bool) string {
	var mark string
	var style lipgloss.Style
	switch r.Status {
	case tools.StatusSuccess:
		mark, style = "✓ success", successStyle
	case tools.StatusTimeout:
		mark, style = "⏱ timeout", timeoutStyle
	default:
		mark, style = "✗ "+string(r.Status), errorStyle
	}

	detail := fmt.Sprintf("in %.1fs", r.DurationSeconds)
	if r.Error != "" {
		detail += ": " + r.Error
	}
	if !color {
		return mark + " " + detail
	}
	return style.Render(mark) + " " + detailStyle.Render(detail)
}

// exitCode maps a status to the process exit code.
func exitCode(r *tools.Result) int {
	switch r.Status {
	case tools.StatusSuccess:
		return exitSuccess
	case tools.StatusTimeout:
		return exitTimeout
	default:
		return exitError
	}
}

// resultURL returns the most useful URL in r, looking into nested step
// results.
func resultURL(r *tools.Result) string {
	if r == nil {
		return ""
	}
	for _, key := range urlFields {
		if v := r.StringField(key); v != "" {
			return v
		}
	}
	for _, key := range []string{"deployment", "view", "publish", "commit", "pull"} {
		if nested, ok := r.Field(key).(*tools.Result); ok {
			if v := resultURL(nested); v != "" {
				return v
			}
		}
	}
	return ""
}

var (
	clipboardDefault = clipboard.WriteAll
	writeClipboard   = clipboardDefault
)

// copyURL puts the result URL on the clipboard and reports it on w.
func copyURL(w io.Writer, r *tools.Result) {
	url := resultURL(r)
	if url == "" {
		fmt.Fprintln(w, "nothing to copy")
		return
	}
	if err := writeClipboard(url); err != nil {
		fmt.Fprintf(w, "failed to copy %s: %v\n", url, err)
		return
	}
	fmt.Fprintf(w, "copied %s\n", url)
}
