package v0

import (
	"context"

	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// DeployOptions selects the chat and app a deployment works on. Empty
// fields fall back to the project file.
type DeployOptions struct {
	ChatURL       string
	ProductionURL string

	// View overrides the project file when set.
	View *bool
}

// Deploy runs pull, publish and optionally view in one browser session,
// stopping at the first step that does not succeed. Each step's envelope
// is nested under its name; the overall status is that of the failing
// step, or success.
func (d *Deployer) Deploy(ctx context.Context, opts DeployOptions) *tools.Result {
	chatURL := d.project.chatURL(opts.ChatURL)
	productionURL := d.project.productionURL(opts.ProductionURL)
	view := d.project.view(opts.View)
	if chatURL == "" {
		return tools.Errorf(0, "v0_chat_url is required")
	}
	if view && productionURL == "" {
		return tools.Errorf(0, "production_url is required to view the app")
	}

	start := d.env.Now()
	return d.withSession(ctx, func(page browser.Page) *tools.Result {
		result := tools.Success(0)
		finish := func(step *tools.Result) *tools.Result {
			if step != nil && !step.OK() {
				result.Status = step.Status
				result.Error = step.Error
			}
			return result.WithDuration(d.env.Since(start))
		}

		d.env.Logger.Infof("deploy step 1: pulling git changes")
		pull := d.pull(ctx, page, chatURL)
		result.With("pull", pull)
		if !pull.OK() {
			return finish(pull)
		}

		d.env.Logger.Infof("deploy step 2: publishing")
		publish := d.publish(ctx, page, chatURL)
		result.With("publish", publish)
		if !publish.OK() {
			return finish(publish)
		}

		var viewed *tools.Result
		if view {
			d.env.Logger.Infof("deploy step 3: opening production app")
			viewed = d.view(ctx, page, productionURL, d.project.viewDuration(0))
		}
		result.With("view", viewed)
		if productionURL != "" {
			result.With("production_url", productionURL)
		}
		d.env.Logger.Infof("deployment finished")
		return finish(viewed)
	})
}

// DeployTool exposes Deploy.
type DeployTool struct {
	deployer *Deployer
}

// NewDeployTool creates the v0_deploy tool.
func NewDeployTool(d *Deployer) *DeployTool {
	return &DeployTool{deployer: d}
}

// Name returns the tool name.
func (t *DeployTool) Name() string {
	return "v0_deploy"
}

// Description returns the tool description.
func (t *DeployTool) Description() string {
	return "Complete deployment workflow: pull from Git, publish to Vercel, and optionally view the app. Runs all steps in sequence and stops at the first failure."
}

// Schema returns the tool's JSON schema.
func (t *DeployTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"v0_chat_url":    tools.StringProperty("URL to the v0 chat/project page; defaults to the project file"),
			"production_url": tools.StringProperty("URL to the production application; defaults to the project file"),
			"view": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to open and view the production app after deployment; defaults to the project file, else false",
			},
		},
		nil,
	)
}

// DeployInput represents the parameters for deployment.
type DeployInput struct {
	ChatURL       string `json:"v0_chat_url"`
	ProductionURL string `json:"production_url"`
	View          *bool  `json:"view"`
}

// Execute deploys.
func (t *DeployTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input DeployInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.deployer.Deploy(ctx, DeployOptions{
		ChatURL:       input.ChatURL,
		ProductionURL: input.ProductionURL,
		View:          input.View,
	})
}
