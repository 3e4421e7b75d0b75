package studio

import (
	"context"
	"time"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

const (
	// urlSettle bounds the wait for the saved-project URL after "Finished" shows.
	urlSettle = 5 * time.Second

	// nameSettle bounds the wait for the project name field.
	nameSettle = 3 * time.Second
)

// CreateProject starts a new app from prompt and waits until AI Studio has
// saved it. Without a saved login it runs the interactive login first in
// the persistent profile.
func (s *Studio) CreateProject(ctx context.Context, prompt, projectName string) *tools.Result {
	start := s.env.Now()
	if err := tools.RequireString("prompt", prompt); err != nil {
		return tools.Errorf(0, "%v", err)
	}

	loggedIn := s.state.Exists()
	var (
		session browser.Session
		err     error
	)
	if loggedIn {
		session, err = s.openAuthenticated(ctx)
	} else {
		s.env.Logger.Infof("no saved login, starting login flow")
		session, err = s.openProfile(ctx)
	}
	if err != nil {
		return openError(err, s.env.Since(start))
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(AppsURL); err != nil {
		return tools.Errorf(s.env.Since(start), "failed to open AI Studio: %v", err)
	}
	if !loggedIn {
		if r := s.awaitLogin(ctx, page, session); r != nil {
			return r.WithDuration(s.env.Since(start))
		}
	}

	s.dismissDialogs(page)

	s.env.Logger.Infof("filling prompt (%d chars)", len(prompt))
	if err := page.Fill(promptBox, prompt); err != nil {
		return tools.Errorf(s.env.Since(start), "failed to fill prompt: %v", err)
	}
	if err := page.Click(buildButton); err != nil {
		return tools.Errorf(s.env.Since(start), "failed to start build: %v", err)
	}
	s.env.Logger.Infof("build started")

	if out := s.env.Wait(ctx, config.WaitTempProject, browser.MustURLProbe(page, tempProjectPattern)); !out.Succeeded() {
		s.env.Logger.Warnf("did not navigate to a temporary project: %v", out.Err())
	}

	out := s.env.Wait(ctx, config.WaitCreateProject, poll.Any(
		browser.FailIfVisible(page, internalError, "AI Studio internal error occurred during implementation"),
		browser.MustURLProbe(page, savedProjectPattern),
		browser.VisibleProbe(page, finishedText),
	))
	if !out.Succeeded() {
		return tools.FromOutcome(out).
			WithDuration(s.env.Since(start)).
			With("app_url", page.URL())
	}

	if err := page.WaitForURL(savedProjectPattern, urlSettle); err != nil {
		s.env.Logger.Debugf("project URL not yet saved: %v", err)
	}
	appURL := page.URL()
	s.env.Logger.Infof("project URL: %s", appURL)

	if projectName != "" {
		s.rename(page, projectName)
	}

	return tools.Success(s.env.Since(start)).
		With("app_url", appURL).
		With("prompt_sent", preview(prompt)).
		With("prompt_tokens", s.countTokens(prompt)).
		With("created_at", workflow.Timestamp(s.env.Now())).
		With("next_step", "wait_for_implementation")
}

// rename sets the project name. Failures are logged, not reported.
func (s *Studio) rename(page browser.Page, name string) {
	if err := page.WaitFor(nameInput, browser.StateVisible, nameSettle); err != nil {
		s.env.Logger.Warnf("project name field not found: %v", err)
		return
	}
	if err := page.Fill(nameInput, name); err != nil {
		s.env.Logger.Warnf("could not set project name: %v", err)
		return
	}
	s.env.Logger.Infof("set project name to %s", name)
}

// CreateProjectTool exposes CreateProject.
type CreateProjectTool struct {
	studio *Studio
}

// NewCreateProjectTool creates the aistudio_create_project tool.
func NewCreateProjectTool(s *Studio) *CreateProjectTool {
	return &CreateProjectTool{studio: s}
}

// Name returns the tool name.
func (t *CreateProjectTool) Name() string {
	return "aistudio_create_project"
}

// Description returns the tool description.
func (t *CreateProjectTool) Description() string {
	return "Create a new AI Studio app from a prompt and wait until AI Studio has saved the project. Logs in first when no session is saved. Follow with aistudio_wait_for_implementation."
}

// Schema returns the tool's JSON schema.
func (t *CreateProjectTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"prompt":       tools.StringProperty("The implementation prompt sent to Gemini"),
			"project_name": tools.StringProperty("Optional project name; AI Studio generates one when omitted"),
		},
		[]string{"prompt"},
	)
}

// CreateProjectInput represents the parameters for project creation.
type CreateProjectInput struct {
	Prompt      string `json:"prompt"`
	ProjectName string `json:"project_name"`
}

// Execute creates the project.
func (t *CreateProjectTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input CreateProjectInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.studio.CreateProject(ctx, input.Prompt, input.ProjectName)
}
