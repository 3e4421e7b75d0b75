package v0

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// ViewApp opens productionURL and keeps it on screen for hold so the user
// can inspect it. A zero hold uses the project default.
func (d *Deployer) ViewApp(ctx context.Context, productionURL string, hold time.Duration) *tools.Result {
	productionURL = d.project.productionURL(productionURL)
	if productionURL == "" {
		return tools.Errorf(0, "production_url is required")
	}
	if hold <= 0 {
		hold = d.project.viewDuration(0)
	}
	return d.withSession(ctx, func(page browser.Page) *tools.Result {
		return d.view(ctx, page, productionURL, hold)
	})
}

func (d *Deployer) view(ctx context.Context, page browser.Page, productionURL string, hold time.Duration) *tools.Result {
	start := d.env.Now()
	d.env.Logger.Infof("opening production app at %s", productionURL)
	if err := page.Goto(productionURL); err != nil {
		return tools.Errorf(d.env.Since(start), "failed to open %s: %v", productionURL, err).
			With("production_url", productionURL)
	}

	d.env.Logger.Infof("app opened, keeping browser open for %s", hold)
	if err := d.env.Sleep(ctx, hold); err != nil {
		d.env.Logger.Infof("view ended early: %v", err)
	}
	return tools.Success(d.env.Since(start)).
		With("message", fmt.Sprintf("Viewed app at %s", productionURL)).
		With("production_url", productionURL)
}

// ViewAppTool exposes ViewApp.
type ViewAppTool struct {
	deployer *Deployer
}

// NewViewAppTool creates the v0_view_app tool.
func NewViewAppTool(d *Deployer) *ViewAppTool {
	return &ViewAppTool{deployer: d}
}

// Name returns the tool name.
func (t *ViewAppTool) Name() string {
	return "v0_view_app"
}

// Description returns the tool description.
func (t *ViewAppTool) Description() string {
	return "Open production application in browser for testing. Keeps browser open for specified duration to allow manual inspection."
}

// Schema returns the tool's JSON schema.
func (t *ViewAppTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"production_url": tools.StringProperty("URL to the production application (e.g., https://myapp.vercel.app); defaults to the project file"),
			"wait_seconds":   tools.IntegerProperty("How long to keep browser open", DefaultViewSeconds),
		},
		nil,
	)
}

// ViewAppInput represents the parameters for viewing the app.
type ViewAppInput struct {
	ProductionURL string `json:"production_url"`
	WaitSeconds   int    `json:"wait_seconds"`
}

// Execute views the app.
func (t *ViewAppTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input ViewAppInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	if input.WaitSeconds < 0 {
		return tools.Errorf(0, "wait_seconds must not be negative")
	}
	return t.deployer.ViewApp(ctx, input.ProductionURL, time.Duration(input.WaitSeconds)*time.Second)
}
