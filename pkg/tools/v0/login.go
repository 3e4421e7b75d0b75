package v0

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// Login opens a fresh headed browser, waits for the user to sign in
// (passkeys included) and saves the session state.
func (d *Deployer) Login(ctx context.Context) *tools.Result {
	start := d.env.Now()
	session, err := d.env.Opener.Open(ctx, browser.OpenOptions{})
	if err != nil {
		return tools.Errorf(d.env.Since(start), "failed to open browser: %v", err)
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(HomeURL); err != nil {
		return tools.Errorf(d.env.Since(start), "failed to open v0: %v", err)
	}
	cfg := d.env.Config(config.WaitV0Login)
	d.env.Logger.Infof("browser opened, waiting up to %s for manual login", cfg.Timeout)

	out := d.env.WaitWith(ctx, config.WaitV0Login, cfg, browser.VisibleProbe(page, projectsLink))
	if !out.Succeeded() {
		r := tools.FromOutcome(out).WithDuration(d.env.Since(start))
		if out.Kind() == poll.KindTimeout && !out.Cancelled() {
			r.Error = fmt.Sprintf("login was not completed within %s", cfg.Timeout)
		}
		return r
	}

	if err := session.SaveState(d.state); err != nil {
		return tools.Errorf(d.env.Since(start), "failed to save session state: %v", err)
	}
	d.env.Logger.Infof("session saved to %s", d.state.Path())

	return tools.Success(d.env.Since(start)).
		With("message", fmt.Sprintf("Authenticated to v0. Session saved to %s", d.state.Path())).
		With("storage_state_path", d.state.Path())
}

// LoginTool exposes Login.
type LoginTool struct {
	deployer *Deployer
}

// NewLoginTool creates the v0_login tool.
func NewLoginTool(d *Deployer) *LoginTool {
	return &LoginTool{deployer: d}
}

// Name returns the tool name.
func (t *LoginTool) Name() string {
	return "v0_login"
}

// Description returns the tool description.
func (t *LoginTool) Description() string {
	return "Authenticate to v0 and save session state for reuse. Opens a browser for manual login (e.g., Passkey), then saves authentication state."
}

// Schema returns the tool's JSON schema.
func (t *LoginTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute runs the login workflow.
func (t *LoginTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	return t.deployer.Login(ctx)
}
