// Package v0 automates the v0 front-end's deployment path: pulling the
// latest commits from GitHub into the v0 editor, publishing to Vercel and
// opening the production app.
package v0

import (
	"context"
	"errors"

	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// HomeURL is where login begins.
const HomeURL = "https://v0.app"

var (
	projectsLink = browser.Link("Projects")

	syncedButton  = browser.Button("Synced to main")
	pullChanges   = browser.Button("Pull Changes")
	syncingText   = browser.Text("Syncing Changes")
	publishButton = browser.Button("Publish")
	publishOption = browser.Text("Publish Changes")
	updateButton  = browser.Button("Update")
	publishingTxt = browser.Text("Publishing...")
)

// Deployer runs v0 workflows against one saved login.
type Deployer struct {
	env     workflow.Env
	state   browser.StateHandle
	project *Project
}

// New creates the workflows. project supplies default URLs and may be nil.
func New(env workflow.Env, state browser.StateHandle, project *Project) *Deployer {
	env.Logger = env.Logger.With("v0")
	if project == nil {
		project = &Project{}
	}
	return &Deployer{env: env, state: state, project: project}
}

// Project returns the project defaults in use.
func (d *Deployer) Project() *Project { return d.project }

// State returns the login state handle.
func (d *Deployer) State() browser.StateHandle { return d.state }

func (d *Deployer) openAuthenticated(ctx context.Context) (browser.Session, error) {
	state := d.state
	return d.env.Opener.Open(ctx, browser.OpenOptions{
		Headless:     d.env.Headless,
		State:        &state,
		RequireState: true,
	})
}

// withSession opens an authenticated session, runs fn on its page and
// closes the session.
func (d *Deployer) withSession(ctx context.Context, fn func(page browser.Page) *tools.Result) *tools.Result {
	start := d.env.Now()
	session, err := d.openAuthenticated(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrNotAuthenticated) {
			return tools.Errorf(d.env.Since(start), "%v", err)
		}
		return tools.Errorf(d.env.Since(start), "failed to open browser: %v", err)
	}
	defer session.Close()
	return fn(session.Page())
}

// Tools returns every v0 tool.
func (d *Deployer) Tools() []tools.Tool {
	return []tools.Tool{
		NewLoginTool(d),
		NewGitPullTool(d),
		NewPublishTool(d),
		NewViewAppTool(d),
		NewDeployTool(d),
	}
}
