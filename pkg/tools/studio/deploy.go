package studio

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// commitMessage appends the issue reference when issue is set.
func commitMessage(message string, issue int) string {
	if issue > 0 {
		return fmt.Sprintf("%s (#%d)", message, issue)
	}
	return message
}

// commit stages and commits everything from an open GitHub panel. The
// commit is done once the commit button goes away.
func (s *Studio) commit(ctx context.Context, page browser.Page, message string, issue int) *tools.Result {
	start := s.env.Now()
	message = commitMessage(message, issue)
	r := func(res *tools.Result) *tools.Result {
		res.With("message", message)
		if issue > 0 {
			res.With("issue_number", issue)
		}
		return res
	}

	if err := page.Fill(commitInput, message); err != nil {
		return r(tools.Errorf(s.env.Since(start), "failed to fill commit message: %v", err))
	}
	if err := page.Click(stageAndCommit); err != nil {
		return r(tools.Errorf(s.env.Since(start), "failed to commit: %v", err))
	}
	s.env.Logger.Infof("committing: %s", message)

	out := s.env.Wait(ctx, config.WaitCommit, browser.HiddenProbe(page, stageAndCommit))
	res := r(tools.FromOutcome(out))
	if out.Succeeded() {
		res.With("committed_at", workflow.Timestamp(s.env.Now()))
	}
	return res
}

// deploy deploys the open app to Cloud Run in project and waits for the
// service URL to appear on the page.
func (s *Studio) deploy(ctx context.Context, page browser.Page, project string) *tools.Result {
	start := s.env.Now()
	fail := func(format string, args ...interface{}) *tools.Result {
		return tools.Errorf(s.env.Since(start), format, args...).With("project", project)
	}

	if clicked, err := workflow.ClickIfVisible(page, closeDialog); err != nil {
		return fail("failed to close GitHub panel: %v", err)
	} else if clicked {
		s.env.Logger.Debugf("closed GitHub panel")
	}

	if err := page.Click(deployApp); err != nil {
		return fail("failed to open deploy dialog: %v", err)
	}
	out := s.env.Wait(ctx, config.WaitDialog, browser.VisibleProbe(page, projectPicker))
	if !out.Succeeded() {
		r := tools.FromOutcome(out).WithDuration(s.env.Since(start)).With("project", project)
		r.Error = fmt.Sprintf("deploy dialog did not open: %v", out.Err())
		return r
	}

	if err := page.Click(projectPicker); err != nil {
		return fail("failed to open project list: %v", err)
	}
	option := projectOption(project)
	out = s.env.Wait(ctx, config.WaitDialog, browser.VisibleProbe(page, option))
	if !out.Succeeded() {
		r := tools.FromOutcome(out).WithDuration(s.env.Since(start)).With("project", project)
		r.Error = fmt.Sprintf("Google Cloud project %q not offered in deploy dialog: %v", project, out.Err())
		return r
	}
	if err := page.Click(option); err != nil {
		return fail("failed to select project %s: %v", project, err)
	}
	s.env.Logger.Infof("selected Google Cloud project %s", project)

	if clicked, err := workflow.ClickIfVisible(page, redeployButton); err != nil {
		return fail("failed to start deployment: %v", err)
	} else if clicked {
		s.env.Logger.Infof("deployment started")
	} else {
		s.env.Logger.Warnf("no Redeploy button; waiting for an existing deployment")
	}

	out = s.env.Wait(ctx, config.WaitDeploy, browser.DeployedURLProbe(page))
	r := tools.FromOutcome(out).WithDuration(s.env.Since(start)).With("project", project)
	if out.Succeeded() {
		r.With("deployed_url", out.Value()).
			With("deployed_at", workflow.Timestamp(s.env.Now()))
	}
	return r
}

// CommitAndDeploy commits all changes of the app at appURL and deploys it
// to Cloud Run. A failed commit stops the run; a commit that is not
// confirmed in time still proceeds to deployment. The overall status is
// that of the first step that did not succeed.
func (s *Studio) CommitAndDeploy(ctx context.Context, appURL, message, project string, issue int) *tools.Result {
	start := s.env.Now()
	for _, f := range [][2]string{{"app_url", appURL}, {"commit_message", message}, {"google_cloud_project", project}} {
		if err := tools.RequireString(f[0], f[1]); err != nil {
			return tools.Errorf(0, "%v", err)
		}
	}

	session, err := s.openAuthenticated(ctx)
	if err != nil {
		return openError(err, s.env.Since(start))
	}
	defer session.Close()
	page := session.Page()

	if r := s.openGitHubPanel(ctx, page, appURL); r != nil {
		return r.WithDuration(s.env.Since(start))
	}

	commit := s.commit(ctx, page, message, issue)
	result := tools.Success(0).With("commit", commit)
	if commit.Status == tools.StatusError {
		return combine(result, commit).WithDuration(s.env.Since(start))
	}

	deployment := s.deploy(ctx, page, project)
	result.With("deployment", deployment)
	return combine(result, commit, deployment).WithDuration(s.env.Since(start))
}

// combine copies the status and error of the first non-successful step
// onto result.
func combine(result *tools.Result, steps ...*tools.Result) *tools.Result {
	for _, step := range steps {
		if !step.OK() {
			result.Status = step.Status
			result.Error = step.Error
			break
		}
	}
	return result
}

// CommitDeployTool exposes CommitAndDeploy.
type CommitDeployTool struct {
	studio *Studio
}

// NewCommitDeployTool creates the aistudio_commit_and_deploy tool.
func NewCommitDeployTool(s *Studio) *CommitDeployTool {
	return &CommitDeployTool{studio: s}
}

// Name returns the tool name.
func (t *CommitDeployTool) Name() string {
	return "aistudio_commit_and_deploy"
}

// Description returns the tool description.
func (t *CommitDeployTool) Description() string {
	return "Commit changes to GitHub and deploy to Google Cloud Run. Handles both commit and deployment in sequence and waits for the deployed URL."
}

// Schema returns the tool's JSON schema.
func (t *CommitDeployTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"app_url":              tools.StringProperty("Full URL to AI Studio project edit page"),
			"commit_message":       tools.StringProperty("Git commit message describing the changes"),
			"google_cloud_project": tools.StringProperty("Google Cloud Project ID for deployment"),
			"issue_number": map[string]interface{}{
				"type":        "integer",
				"description": "Optional GitHub issue number to reference in commit",
			},
		},
		[]string{"app_url", "commit_message", "google_cloud_project"},
	)
}

// CommitDeployInput represents the parameters for commit and deploy.
type CommitDeployInput struct {
	AppURL             string `json:"app_url"`
	CommitMessage      string `json:"commit_message"`
	GoogleCloudProject string `json:"google_cloud_project"`
	IssueNumber        int    `json:"issue_number"`
}

// Execute commits and deploys.
func (t *CommitDeployTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input CommitDeployInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}
	return t.studio.CommitAndDeploy(ctx, input.AppURL, input.CommitMessage, input.GoogleCloudProject, input.IssueNumber)
}
