package studio

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// Repository visibility values.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// openGitHubPanel navigates to appURL and opens the "Save to GitHub" panel.
// The panel is ready once it shows either the repository form or the
// commit button. It returns nil when the panel is ready.
func (s *Studio) openGitHubPanel(ctx context.Context, page browser.Page, appURL string) *tools.Result {
	if err := page.Goto(appURL); err != nil {
		return tools.Errorf(0, "failed to open %s: %v", appURL, err)
	}
	if err := page.Click(saveToGitHub); err != nil {
		return tools.Errorf(0, "failed to open GitHub panel: %v", err)
	}

	out := s.env.Wait(ctx, config.WaitDialog, poll.Any(
		browser.VisibleProbe(page, repoNameInput),
		browser.VisibleProbe(page, stageAndCommit),
	))
	if !out.Succeeded() {
		r := tools.FromOutcome(out)
		r.Error = fmt.Sprintf("GitHub panel did not open: %v", out.Err())
		return r
	}
	s.env.Logger.Infof("GitHub panel ready")
	return nil
}

// CreateRepo creates the GitHub repository for the app at appURL.
// A repository whose creation is not confirmed in time reports timeout
// with next_step "verify_creation".
func (s *Studio) CreateRepo(ctx context.Context, appURL, name, description, visibility string) *tools.Result {
	start := s.env.Now()
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	for _, f := range [][2]string{{"app_url", appURL}, {"repo_name", name}, {"description", description}} {
		if err := tools.RequireString(f[0], f[1]); err != nil {
			return tools.Errorf(0, "%v", err).With("repo_name", name)
		}
	}
	if visibility != VisibilityPrivate && visibility != VisibilityPublic {
		return tools.Errorf(0, "invalid visibility %q (must be 'private' or 'public')", visibility).With("repo_name", name)
	}

	session, err := s.openAuthenticated(ctx)
	if err != nil {
		return openError(err, s.env.Since(start)).With("repo_name", name)
	}
	defer session.Close()
	page := session.Page()

	if r := s.openGitHubPanel(ctx, page, appURL); r != nil {
		return r.WithDuration(s.env.Since(start)).With("repo_name", name)
	}

	s.env.Logger.Infof("creating repository %s (%s)", name, visibility)
	fail := func(format string, err error) *tools.Result {
		return tools.Errorf(s.env.Since(start), format, err).With("repo_name", name)
	}
	if err := page.Fill(repoNameInput, name); err != nil {
		return fail("failed to fill repository name: %v", err)
	}
	if err := page.Fill(repoDescInput, description); err != nil {
		return fail("failed to fill description: %v", err)
	}
	if _, err := workflow.ClickIfVisible(page, visibilityLabel(visibility)); err != nil {
		return fail("failed to set visibility: %v", err)
	}
	if err := page.Click(createRepo); err != nil {
		return fail("failed to create repository: %v", err)
	}

	out := s.env.Wait(ctx, config.WaitRepoCreated, browser.VisibleProbe(page, commitLabel))
	r := tools.FromOutcome(out).
		WithDuration(s.env.Since(start)).
		With("repo_name", name).
		With("visibility", visibility).
		With("created_at", workflow.Timestamp(s.env.Now()))
	switch out.Kind() {
	case poll.KindSuccess:
		r.With("next_step", "commit_message")
	case poll.KindTimeout:
		r.With("next_step", "verify_creation")
	}
	return r
}

// CreateRepoTool exposes CreateRepo.
type CreateRepoTool struct {
	studio *Studio
}

// NewCreateRepoTool creates the aistudio_create_repo tool.
func NewCreateRepoTool(s *Studio) *CreateRepoTool {
	return &CreateRepoTool{studio: s}
}

// Name returns the tool name.
func (t *CreateRepoTool) Name() string {
	return "aistudio_create_repo"
}

// Description returns the tool description.
func (t *CreateRepoTool) Description() string {
	return "Create GitHub repository for AI Studio project. Requires authenticated session. Opens GitHub dialog, fills in repository details, and creates the repo."
}

// Schema returns the tool's JSON schema.
func (t *CreateRepoTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"app_url":     tools.StringProperty("Full URL to AI Studio project edit page (e.g., https://aistudio.google.com/apps/drive/[PROJECT-ID])"),
			"repo_name":   tools.StringProperty("Repository name (should include UUID prefix for traceability)"),
			"description": tools.StringProperty("Repository description"),
			"visibility": map[string]interface{}{
				"type":        "string",
				"description": "Repository visibility: 'private' or 'public'",
				"enum":        []string{VisibilityPrivate, VisibilityPublic},
				"default":     VisibilityPrivate,
			},
		},
		[]string{"app_url", "repo_name", "description"},
	)
}

// CreateRepoInput represents the parameters for repository creation.
type CreateRepoInput struct {
	AppURL      string `json:"app_url"`
	RepoName    string `json:"repo_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// Execute creates the repository.
func (t *CreateRepoTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input CreateRepoInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.studio.CreateRepo(ctx, input.AppURL, input.RepoName, input.Description, input.Visibility)
}
