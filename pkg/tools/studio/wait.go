package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// DefaultImplementationTimeout is the total implementation budget,
// initial delay included.
const DefaultImplementationTimeout = 300 * time.Second

// WaitForImplementation opens appURL and waits until Gemini has stopped
// generating, which AI Studio shows by removing the Stop button. A timeout
// of zero uses the configured budget.
func (s *Studio) WaitForImplementation(ctx context.Context, appURL string, timeout time.Duration) *tools.Result {
	if err := tools.RequireString("app_url", appURL); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	cfg := s.env.Config(config.WaitImplementation)
	if timeout > 0 {
		bounded, err := cfg.WithTimeout(timeout)
		if err != nil {
			return tools.Errorf(0, "timeout_seconds must be at least %d: %v", int(cfg.InitialDelay.Seconds()), err)
		}
		cfg = bounded
	}

	session, err := s.openAuthenticated(ctx)
	if err != nil {
		return openError(err, 0).With("app_url", appURL)
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(appURL); err != nil {
		return tools.Errorf(0, "failed to open %s: %v", appURL, err).With("app_url", appURL)
	}

	s.env.Logger.Infof("waiting for implementation (%s)", cfg)
	out := s.env.WaitWith(ctx, config.WaitImplementation, cfg, browser.HiddenProbe(page, stopButton))
	return s.implementationResult(out, cfg).With("app_url", appURL)
}

func (s *Studio) implementationResult(out poll.Outcome[string], cfg poll.Config) *tools.Result {
	r := tools.FromOutcome(out)
	switch out.Kind() {
	case poll.KindSuccess:
		r.With("completed_at", workflow.Timestamp(s.env.Now()))
	case poll.KindTimeout:
		if !out.Cancelled() {
			r.Error = fmt.Sprintf("implementation did not complete within %d seconds", int(cfg.Timeout.Seconds()))
		}
	}
	return r
}

// WaitTool exposes WaitForImplementation.
type WaitTool struct {
	studio *Studio
}

// NewWaitTool creates the aistudio_wait_for_implementation tool.
func NewWaitTool(s *Studio) *WaitTool {
	return &WaitTool{studio: s}
}

// Name returns the tool name.
func (t *WaitTool) Name() string {
	return "aistudio_wait_for_implementation"
}

// Description returns the tool description.
func (t *WaitTool) Description() string {
	return "Wait for Gemini implementation to complete. Waits at least 90 seconds, then polls until the Stop button disappears. Typical duration: 2-5 minutes. The timeout includes the initial wait."
}

// Schema returns the tool's JSON schema.
func (t *WaitTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"app_url":         tools.StringProperty("URL to AI Studio project edit page"),
			"timeout_seconds": tools.IntegerProperty("Maximum wait time in seconds", int(DefaultImplementationTimeout.Seconds())),
		},
		[]string{"app_url"},
	)
}

// WaitInput represents the parameters for waiting.
type WaitInput struct {
	AppURL         string `json:"app_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Execute waits for the implementation.
func (t *WaitTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input WaitInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	if input.TimeoutSeconds < 0 {
		return tools.Errorf(0, "timeout_seconds must not be negative")
	}
	return t.studio.WaitForImplementation(ctx, input.AppURL, time.Duration(input.TimeoutSeconds)*time.Second)
}
