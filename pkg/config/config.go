// Package config persists shipyard's user settings in ~/.shipyard/config.json.
package config

import (
	"path/filepath"
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// New creates a manager over the file at configPath with the default
// sections registered and loaded. Section paths default to siblings of
// the config file.
func New(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(store.Path())

	manager := NewManager(store)
	for _, section := range []Section{
		NewBrowserSection(root),
		NewTimingSection(),
		NewDocsSection(root),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Initialize creates and installs the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	manager, err := New(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func section[T Section](m *Manager, id string) T {
	var zero T
	if m == nil {
		return zero
	}
	s, ok := m.GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := s.(T)
	if !ok {
		return zero
	}
	return typed
}

// Browser returns the browser section of m.
func Browser(m *Manager) *BrowserSection { return section[*BrowserSection](m, SectionIDBrowser) }

// Timing returns the timing section of m.
func Timing(m *Manager) *TimingSection { return section[*TimingSection](m, SectionIDTiming) }

// Docs returns the docs section of m.
func Docs(m *Manager) *DocsSection { return section[*DocsSection](m, SectionIDDocs) }

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	return Browser(Global())
}

// GetTiming returns the timing section from global config.
// Returns nil if config is not initialized.
func GetTiming() *TimingSection {
	if !IsInitialized() {
		return nil
	}
	return Timing(Global())
}

// GetDocs returns the docs section from global config.
// Returns nil if config is not initialized.
func GetDocs() *DocsSection {
	if !IsInitialized() {
		return nil
	}
	return Docs(Global())
}
