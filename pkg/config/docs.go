package config

import (
	"path/filepath"
	"sync"
)

// SectionIDDocs is the identifier for the documentation section
const SectionIDDocs = "docs"

// DocsSection locates the markdown served as MCP resources.
type DocsSection struct {
	mu   sync.RWMutex
	Dir  string
	root string
}

// NewDocsSection creates a docs section defaulting to <root>/docs.
func NewDocsSection(root string) *DocsSection {
	s := &DocsSection{root: root}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *DocsSection) ID() string { return SectionIDDocs }

// Title returns the section title.
func (s *DocsSection) Title() string { return "Documentation" }

// Description returns the section description.
func (s *DocsSection) Description() string {
	return "Directory holding the workflow guides exposed as MCP resources."
}

// Data returns the current configuration data.
func (s *DocsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{"dir": s.Dir}
}

// SetData updates the configuration from the provided data.
func (s *DocsSection) SetData(data map[string]interface{}) error {
	value, ok := data["dir"]
	if !ok {
		return nil
	}
	dir, err := stringValue("dir", value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dir = dir
	return nil
}

// Validate accepts any directory; a missing one yields empty listings.
func (s *DocsSection) Validate() error { return nil }

// Reset resets the section to default configuration.
func (s *DocsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dir = filepath.Join(s.root, "docs")
}

// Directory returns the configured directory.
func (s *DocsSection) Directory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dir
}
