package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/entrhq/shipyard/pkg/poll"
)

// SectionIDTiming is the identifier for the poll timing section
const SectionIDTiming = "timing"

// Poll call sites. Each names one wait in a workflow.
const (
	WaitAIStudioLogin  = "aistudio_login"
	WaitTempProject    = "temp_project"
	WaitCreateProject  = "create_project"
	WaitImplementation = "implementation"
	WaitDialog         = "dialog"
	WaitRepoCreated    = "repo_created"
	WaitCommit         = "commit"
	WaitDeploy         = "deploy"
	WaitV0Login        = "v0_login"
	WaitV0Page         = "v0_page"
	WaitV0Dropdown     = "v0_dropdown"
	WaitSync           = "sync"
	WaitPublishStart   = "publish_start"
	WaitPublish        = "publish"
)

// DefaultTimings are the budgets observed to work against the live UIs.
var DefaultTimings = map[string]poll.Config{
	WaitAIStudioLogin:  {InitialDelay: 0, Interval: 2 * time.Second, Timeout: 5 * time.Minute},
	WaitTempProject:    {InitialDelay: 0, Interval: time.Second, Timeout: 30 * time.Second},
	WaitCreateProject:  {InitialDelay: 0, Interval: 5 * time.Second, Timeout: 10 * time.Minute},
	WaitImplementation: {InitialDelay: 90 * time.Second, Interval: 3 * time.Second, Timeout: 300 * time.Second},
	WaitDialog:         {InitialDelay: 0, Interval: time.Second, Timeout: 11 * time.Second},
	WaitRepoCreated:    {InitialDelay: 0, Interval: time.Second, Timeout: 15 * time.Second},
	WaitCommit:         {InitialDelay: 0, Interval: time.Second, Timeout: 15 * time.Second},
	WaitDeploy:         {InitialDelay: 10 * time.Second, Interval: 5 * time.Second, Timeout: 3 * time.Minute},
	WaitV0Login:        {InitialDelay: 0, Interval: 2 * time.Second, Timeout: 2 * time.Minute},
	WaitV0Page:         {InitialDelay: 0, Interval: time.Second, Timeout: 60 * time.Second},
	WaitV0Dropdown:     {InitialDelay: 0, Interval: 250 * time.Millisecond, Timeout: 3 * time.Second},
	WaitSync:           {InitialDelay: 0, Interval: 2 * time.Second, Timeout: 120 * time.Second},
	WaitPublishStart:   {InitialDelay: 0, Interval: 500 * time.Millisecond, Timeout: 60 * time.Second},
	WaitPublish:        {InitialDelay: 0, Interval: 2 * time.Second, Timeout: 180 * time.Second},
}

// TimingSection holds one poll.Config per call site. Sites without an
// override use DefaultTimings.
type TimingSection struct {
	mu        sync.RWMutex
	overrides map[string]poll.Config
}

// NewTimingSection creates a timing section with no overrides.
func NewTimingSection() *TimingSection {
	return &TimingSection{overrides: make(map[string]poll.Config)}
}

// ID returns the section identifier.
func (s *TimingSection) ID() string { return SectionIDTiming }

// Title returns the section title.
func (s *TimingSection) Title() string { return "Wait Timing" }

// Description returns the section description.
func (s *TimingSection) Description() string {
	return "Initial delay, interval and timeout of each wait on a remote UI."
}

// Get returns the config for a call site.
func (s *TimingSection) Get(site string) poll.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.overrides[site]; ok {
		return cfg
	}
	return DefaultTimings[site]
}

// Set overrides one call site after validating cfg.
func (s *TimingSection) Set(site string, cfg poll.Config) error {
	if _, known := DefaultTimings[site]; !known {
		return fmt.Errorf("unknown wait %q", site)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("wait %s: %w", site, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[site] = cfg
	return nil
}

// Sites returns all call-site names, sorted.
func (s *TimingSection) Sites() []string {
	sites := make([]string, 0, len(DefaultTimings))
	for site := range DefaultTimings {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Data returns every call site's effective config as duration strings.
func (s *TimingSection) Data() map[string]interface{} {
	data := make(map[string]interface{}, len(DefaultTimings))
	for _, site := range s.Sites() {
		cfg := s.Get(site)
		data[site] = map[string]interface{}{
			"initial_delay": cfg.InitialDelay.String(),
			"interval":      cfg.Interval.String(),
			"timeout":       cfg.Timeout.String(),
		}
	}
	return data
}

// SetData applies stored configs. Missing fields keep the current value.
func (s *TimingSection) SetData(data map[string]interface{}) error {
	for site, value := range data {
		if _, known := DefaultTimings[site]; !known {
			// Ignore unknown keys for forward compatibility
			continue
		}
		fields, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("invalid value type for %s: expected object, got %T", site, value)
		}

		cfg := s.Get(site)
		for key, raw := range fields {
			d, err := durationValue(site+"."+key, raw)
			if err != nil {
				return err
			}
			switch key {
			case "initial_delay":
				cfg.InitialDelay = d
			case "interval":
				cfg.Interval = d
			case "timeout":
				cfg.Timeout = d
			}
		}
		if err := s.Set(site, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every effective config through poll.NewConfig.
func (s *TimingSection) Validate() error {
	for _, site := range s.Sites() {
		cfg := s.Get(site)
		if _, err := poll.NewConfig(cfg.InitialDelay, cfg.Interval, cfg.Timeout); err != nil {
			return fmt.Errorf("wait %s: %w", site, err)
		}
	}
	return nil
}

// Reset drops all overrides.
func (s *TimingSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[string]poll.Config)
}
