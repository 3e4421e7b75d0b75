package v0

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// GitPull pulls the latest commits of the connected GitHub repository
// into the v0 editor at chatURL.
func (d *Deployer) GitPull(ctx context.Context, chatURL string) *tools.Result {
	chatURL = d.project.chatURL(chatURL)
	if chatURL == "" {
		return tools.Errorf(0, "v0_chat_url is required")
	}
	return d.withSession(ctx, func(page browser.Page) *tools.Result {
		return d.pull(ctx, page, chatURL)
	})
}

// pull runs the sync dropdown on page: "Synced to main" reveals
// "Pull Changes", and the pull is done once "Syncing Changes" goes away.
func (d *Deployer) pull(ctx context.Context, page browser.Page, chatURL string) *tools.Result {
	start := d.env.Now()
	fail := func(format string, args ...interface{}) *tools.Result {
		return tools.Errorf(d.env.Since(start), format, args...)
	}

	d.env.Logger.Infof("navigating to %s for git pull", chatURL)
	if err := page.Goto(chatURL); err != nil {
		return fail("failed to open %s: %v", chatURL, err)
	}

	if out := d.env.Wait(ctx, config.WaitV0Page, browser.VisibleProbe(page, syncedButton)); !out.Succeeded() {
		r := tools.FromOutcome(out).WithDuration(d.env.Since(start))
		r.Error = fmt.Sprintf("'Synced to main' button not found: %v", out.Err())
		return r
	}
	if err := page.Click(syncedButton); err != nil {
		return fail("failed to open sync menu: %v", err)
	}
	if err := page.Click(pullChanges); err != nil {
		return fail("failed to pull changes: %v", err)
	}

	out := d.env.Wait(ctx, config.WaitSync, browser.HiddenProbe(page, syncingText))
	r := tools.FromOutcome(out).WithDuration(d.env.Since(start))
	if out.Succeeded() {
		d.env.Logger.Infof("git pull completed")
		r.With("message", "Git pull completed successfully")
	}
	return r
}

// GitPullTool exposes GitPull.
type GitPullTool struct {
	deployer *Deployer
}

// NewGitPullTool creates the v0_git_pull tool.
func NewGitPullTool(d *Deployer) *GitPullTool {
	return &GitPullTool{deployer: d}
}

// Name returns the tool name.
func (t *GitPullTool) Name() string {
	return "v0_git_pull"
}

// Description returns the tool description.
func (t *GitPullTool) Description() string {
	return "Pull latest changes from the Git repository into the v0 editor. The 'Synced to main' button is a dropdown that reveals 'Pull Changes'."
}

// Schema returns the tool's JSON schema.
func (t *GitPullTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"v0_chat_url": tools.StringProperty("URL to the v0 chat/project page (e.g., https://v0.app/chat/PROJECT_ID); defaults to the project file"),
		},
		nil,
	)
}

// ChatInput represents the parameters of tools addressing one v0 chat.
type ChatInput struct {
	ChatURL string `json:"v0_chat_url"`
}

// Execute pulls changes.
func (t *GitPullTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input ChatInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.deployer.GitPull(ctx, input.ChatURL)
}
