// Package prompts holds the workflow prompts offered to MCP clients. Each
// prompt is a text/template rendered with the caller's arguments.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFiles embed.FS

var (
	// ErrUnknownPrompt is returned for names no set knows.
	ErrUnknownPrompt = errors.New("unknown prompt")
	// ErrMissingArgument is returned when a required argument is empty.
	ErrMissingArgument = errors.New("missing required argument")
)

// Argument declares one prompt parameter.
type Argument struct {
	Name        string
	Description string
	Required    bool
}

// Prompt is a named workflow template.
type Prompt struct {
	Name        string
	Description string
	Arguments   []Argument

	// summary is rendered into Rendered.Description
	summary string
}

// Rendered is a prompt filled in with arguments.
type Rendered struct {
	Description string
	Text        string
}

// Set is an ordered collection of prompts.
type Set struct {
	prompts []Prompt
	tmpl    *template.Template
}

var funcs = template.FuncMap{
	// flag renders a "true"/"false" argument as a boolean word.
	"flag": func(s string) string {
		if strings.EqualFold(strings.TrimSpace(s), "true") {
			return "true"
		}
		return "false"
	},
}

// NewSet parses the templates for prompts. Every prompt needs a
// templates/<name>.md file.
func NewSet(prompts ...Prompt) (*Set, error) {
	tmpl := template.New("prompts").Funcs(funcs).Option("missingkey=zero")
	for _, p := range prompts {
		body, err := templateFiles.ReadFile("templates/" + p.Name + ".md")
		if err != nil {
			return nil, fmt.Errorf("failed to read template for %s: %w", p.Name, err)
		}
		if _, err := tmpl.New(p.Name).Parse(string(body)); err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", p.Name, err)
		}
		if _, err := tmpl.New(p.Name + ".summary").Parse(p.summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary for %s: %w", p.Name, err)
		}
	}
	return &Set{prompts: append([]Prompt(nil), prompts...), tmpl: tmpl}, nil
}

// MustSet is NewSet that panics; the templates are compiled in.
func MustSet(prompts ...Prompt) *Set {
	s, err := NewSet(prompts...)
	if err != nil {
		panic(err)
	}
	return s
}

// List returns the prompts in declaration order.
func (s *Set) List() []Prompt {
	return append([]Prompt(nil), s.prompts...)
}

// Get returns the named prompt.
func (s *Set) Get(name string) (Prompt, bool) {
	for _, p := range s.prompts {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}

// Render fills in the named prompt. Unset optional arguments render as
// empty strings.
func (s *Set) Render(name string, args map[string]string) (*Rendered, error) {
	p, ok := s.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	if args == nil {
		args = map[string]string{}
	}
	for _, a := range p.Arguments {
		if a.Required && strings.TrimSpace(args[a.Name]) == "" {
			return nil, fmt.Errorf("%w: %s requires %s", ErrMissingArgument, name, a.Name)
		}
	}

	var text, summary strings.Builder
	if err := s.tmpl.ExecuteTemplate(&text, p.Name, args); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	if err := s.tmpl.ExecuteTemplate(&summary, p.Name+".summary", args); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return &Rendered{Description: summary.String(), Text: text.String()}, nil
}
