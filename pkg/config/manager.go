package config

import (
	"fmt"
	"sync"
)

// Section is one named group of settings persisted under its ID.
type Section interface {
	ID() string
	Title() string
	Description() string

	// Data returns the settings as JSON-compatible values
	Data() map[string]interface{}

	// SetData applies stored values; unknown keys are ignored
	SetData(data map[string]interface{}) error

	Validate() error
	Reset()
}

// Manager coordinates sections and their store.
type Manager struct {
	mu       sync.RWMutex
	store    Store
	sections []Section
	byID     map[string]Section
}

// NewManager creates a manager over store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		byID:  make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[section.ID()]; exists {
		return fmt.Errorf("section %q already registered", section.ID())
	}
	m.sections = append(m.sections, section)
	m.byID[section.ID()] = section
	return nil
}

// GetSection returns a section by ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	return s, ok
}

// GetSections returns the sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Section(nil), m.sections...)
}

// LoadAll reloads the store and applies each section's stored data.
// A section whose stored data fails validation is reset to defaults.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, section := range m.GetSections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", section.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("invalid data in section %s: %w", section.ID(), err)
		}
		if err := section.Validate(); err != nil {
			section.Reset()
			return fmt.Errorf("invalid section %s: %w", section.ID(), err)
		}
	}
	return nil
}

// SaveAll validates every section, then writes them to the store.
func (m *Manager) SaveAll() error {
	sections := m.GetSections()
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("invalid section %s: %w", section.ID(), err)
		}
	}
	for _, section := range sections {
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", section.ID(), err)
		}
	}
	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ResetAll restores every section's defaults.
func (m *Manager) ResetAll() {
	for _, section := range m.GetSections() {
		section.Reset()
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Path returns the file backing the store, or "" when it has none.
func (m *Manager) Path() string {
	if p, ok := m.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
