package v0

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// Publish dropdown states.
const (
	choicePublish = "publish"
	choiceUpdate  = "update"
)

// Publish publishes the chat at chatURL to Vercel.
func (d *Deployer) Publish(ctx context.Context, chatURL string) *tools.Result {
	chatURL = d.project.chatURL(chatURL)
	if chatURL == "" {
		return tools.Errorf(0, "v0_chat_url is required")
	}
	return d.withSession(ctx, func(page browser.Page) *tools.Result {
		return d.publish(ctx, page, chatURL)
	})
}

// choose maps a probe's payload to a fixed dropdown choice.
func choose(probe poll.Probe[string], choice string) poll.Probe[string] {
	return poll.Map(probe, func(string) string { return choice })
}

// publish opens the Publish dropdown on page. "Publish Changes" starts a
// deployment that is done once "Publishing..." has appeared and gone
// again; an "Update" button means there is nothing new to publish.
func (d *Deployer) publish(ctx context.Context, page browser.Page, chatURL string) *tools.Result {
	start := d.env.Now()
	fail := func(format string, args ...interface{}) *tools.Result {
		return tools.Errorf(d.env.Since(start), format, args...)
	}
	failed := func(out poll.Outcome[string], what string) *tools.Result {
		r := tools.FromOutcome(out).WithDuration(d.env.Since(start))
		r.Error = fmt.Sprintf("%s: %v", what, out.Err())
		return r
	}

	d.env.Logger.Infof("navigating to %s for publishing", chatURL)
	if err := page.Goto(chatURL); err != nil {
		return fail("failed to open %s: %v", chatURL, err)
	}
	if out := d.env.Wait(ctx, config.WaitV0Page, browser.VisibleProbe(page, publishButton)); !out.Succeeded() {
		return failed(out, "'Publish' button not found")
	}
	if err := page.Click(publishButton); err != nil {
		return fail("failed to open publish menu: %v", err)
	}

	choice := d.env.Wait(ctx, config.WaitV0Dropdown, poll.Any(
		choose(browser.VisibleProbe(page, publishOption), choicePublish),
		choose(browser.VisibleProbe(page, updateButton), choiceUpdate),
	))
	switch {
	case choice.Kind() == poll.KindFailed:
		return failed(choice, "publish menu unavailable")
	case choice.Cancelled():
		return tools.FromOutcome(choice).WithDuration(d.env.Since(start))
	case !choice.Succeeded():
		r := fail("Could not find 'Publish Changes' or 'Update' in the publish dropdown")
		if shot := d.env.Snapshot(page, "publish_error"); shot != "" {
			r.Error += ". See " + shot
			r.With("snapshot", shot)
		}
		return r
	case choice.Value() == choiceUpdate:
		d.env.Logger.Infof("'Update' visible, changes already published")
		return tools.Success(d.env.Since(start)).
			With("message", "Changes already published (Update button visible)")
	}

	if err := page.Click(publishOption); err != nil {
		return fail("failed to publish changes: %v", err)
	}
	if out := d.env.Wait(ctx, config.WaitPublishStart, browser.VisibleProbe(page, publishingTxt)); !out.Succeeded() {
		return failed(out, "publishing did not start")
	}
	d.env.Logger.Infof("publishing in progress")

	out := d.env.Wait(ctx, config.WaitPublish, browser.HiddenProbe(page, publishingTxt))
	if !out.Succeeded() {
		return failed(out, "publishing did not finish")
	}
	d.env.Logger.Infof("publishing completed")
	return tools.Success(d.env.Since(start)).With("message", "Changes published successfully")
}

// PublishTool exposes Publish.
type PublishTool struct {
	deployer *Deployer
}

// NewPublishTool creates the v0_publish tool.
func NewPublishTool(d *Deployer) *PublishTool {
	return &PublishTool{deployer: d}
}

// Name returns the tool name.
func (t *PublishTool) Name() string {
	return "v0_publish"
}

// Description returns the tool description.
func (t *PublishTool) Description() string {
	return "Publish changes to Vercel from v0. The Publish button is a dropdown: it is opened, then 'Publish Changes' is selected and the tool waits until publishing finishes. Reports success without publishing when only 'Update' is offered."
}

// Schema returns the tool's JSON schema.
func (t *PublishTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"v0_chat_url": tools.StringProperty("URL to the v0 chat/project page; defaults to the project file"),
		},
		nil,
	)
}

// Execute publishes.
func (t *PublishTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input ChatInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.deployer.Publish(ctx, input.ChatURL)
}
