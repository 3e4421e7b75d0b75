package v0

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectFiles are the project file names looked up, in order. JSON is
// read by the YAML decoder.
var ProjectFiles = []string{"v0_config.yaml", "v0_config.yml", "v0_config.json"}

// DefaultViewSeconds is how long ViewApp keeps the app open.
const DefaultViewSeconds = 60

// Project holds per-project defaults for the v0 tools.
type Project struct {
	ChatURL       string `yaml:"v0_chat_url"`
	ProductionURL string `yaml:"production_url"`
	View          bool   `yaml:"view"`
	ViewSeconds   int    `yaml:"view_seconds"`

	// Path is the file the project was read from
	Path string `yaml:"-"`
}

// LoadProject reads the first project file found in dir. It returns nil
// and no error when there is none.
func LoadProject(dir string) (*Project, error) {
	for _, name := range ProjectFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var p Project
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if p.ViewSeconds < 0 {
			return nil, fmt.Errorf("%s: view_seconds must not be negative", path)
		}
		p.Path = path
		return &p, nil
	}
	return nil, nil
}

// chatURL returns url, or the project default when url is empty.
func (p *Project) chatURL(url string) string {
	if url == "" && p != nil {
		return p.ChatURL
	}
	return url
}

// productionURL returns url, or the project default when url is empty.
func (p *Project) productionURL(url string) string {
	if url == "" && p != nil {
		return p.ProductionURL
	}
	return url
}

// view returns the caller's choice, or the project default when the
// caller made none.
func (p *Project) view(choice *bool) bool {
	if choice != nil {
		return *choice
	}
	return p != nil && p.View
}

// viewDuration returns seconds, or the project default, as a duration.
func (p *Project) viewDuration(seconds int) time.Duration {
	if seconds <= 0 && p != nil && p.ViewSeconds > 0 {
		seconds = p.ViewSeconds
	}
	if seconds <= 0 {
		seconds = DefaultViewSeconds
	}
	return time.Duration(seconds) * time.Second
}
