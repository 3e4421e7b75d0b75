package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
	defaultActionTimeout  = 30 * time.Second
)

// BrowserSection holds browser launch settings and session-state locations.
type BrowserSection struct {
	mu sync.RWMutex

	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	ActionTimeout  time.Duration

	// ProfileDir is the persistent Chromium profile used for AI Studio login
	ProfileDir string

	AIStudioStatePath string
	V0StatePath       string

	// SnapshotDir receives screenshots taken when a workflow cannot proceed
	SnapshotDir string

	root string
}

// NewBrowserSection creates a browser section with paths under root
// (normally ~/.shipyard).
func NewBrowserSection(root string) *BrowserSection {
	s := &BrowserSection{root: root}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string { return SectionIDBrowser }

// Title returns the section title.
func (s *BrowserSection) Title() string { return "Browser" }

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Chromium launch options and where login sessions are stored."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"headless":            s.Headless,
		"viewport_width":      s.ViewportWidth,
		"viewport_height":     s.ViewportHeight,
		"action_timeout":      s.ActionTimeout.String(),
		"profile_dir":         s.ProfileDir,
		"aistudio_state_path": s.AIStudioStatePath,
		"v0_state_path":       s.V0StatePath,
		"snapshot_dir":        s.SnapshotDir,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "viewport_width":
			s.ViewportWidth, err = intValue(key, value)
		case "viewport_height":
			s.ViewportHeight, err = intValue(key, value)
		case "action_timeout":
			s.ActionTimeout, err = durationValue(key, value)
		case "profile_dir":
			s.ProfileDir, err = stringValue(key, value)
		case "aistudio_state_path":
			s.AIStudioStatePath, err = stringValue(key, value)
		case "v0_state_path":
			s.V0StatePath, err = stringValue(key, value)
		case "snapshot_dir":
			s.SnapshotDir, err = stringValue(key, value)
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ViewportWidth < 320 || s.ViewportHeight < 240 {
		return fmt.Errorf("viewport must be at least 320x240, got %dx%d", s.ViewportWidth, s.ViewportHeight)
	}
	if s.ActionTimeout < time.Second || s.ActionTimeout > 5*time.Minute {
		return fmt.Errorf("action_timeout must be between 1s and 5m, got %v", s.ActionTimeout)
	}
	if s.AIStudioStatePath == "" || s.V0StatePath == "" {
		return fmt.Errorf("session state paths must not be empty")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Headless = false
	s.ViewportWidth = defaultViewportWidth
	s.ViewportHeight = defaultViewportHeight
	s.ActionTimeout = defaultActionTimeout
	s.ProfileDir = filepath.Join(s.root, "profile")
	s.AIStudioStatePath = filepath.Join(s.root, "state", "aistudio.json")
	s.V0StatePath = filepath.Join(s.root, "state", "v0.json")
	s.SnapshotDir = filepath.Join(s.root, "snapshots")
}

// Snapshot returns a consistent copy of the settings.
func (s *BrowserSection) Snapshot() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BrowserSettings{
		Headless:          s.Headless,
		ViewportWidth:     s.ViewportWidth,
		ViewportHeight:    s.ViewportHeight,
		ActionTimeout:     s.ActionTimeout,
		ProfileDir:        s.ProfileDir,
		AIStudioStatePath: s.AIStudioStatePath,
		V0StatePath:       s.V0StatePath,
		SnapshotDir:       s.SnapshotDir,
	}
}

// BrowserSettings is a lock-free copy of BrowserSection.
type BrowserSettings struct {
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	ActionTimeout     time.Duration
	ProfileDir        string
	AIStudioStatePath string
	V0StatePath       string
	SnapshotDir       string
}
