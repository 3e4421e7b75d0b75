// Package studio automates the AI Studio app builder: login, project
// creation, waiting for generation, GitHub repository setup, commit and
// Cloud Run deployment. Every wait on the remote UI goes through poll.Run.
package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/shipyard/pkg/repo"
	"github.com/entrhq/shipyard/pkg/tokenizer"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

const (
	// StartURL is where login begins.
	StartURL = "https://aistudio.google.com/apps?source=start"

	// AppsURL lists the user's apps and hosts the new-project prompt.
	AppsURL = "https://aistudio.google.com/apps"

	tempProjectPattern  = "**/apps/temp/**"
	savedProjectPattern = "**/apps/drive/**"

	promptPreviewLength = 100
)

var (
	loginMarker = browser.CSS(`button:has-text("New"), [role="link"][href*="/apps/drive"]`)

	agreeButton = browser.Button("Agree")
	gotItButton = browser.Button("Got it")
	promptBox   = browser.Role("textbox", "Enter a prompt to generate an")
	buildButton = browser.Button("Build").WithExact()
	stopButton  = browser.CSS(`button[aria-label*="Stop"]`).AtFirst()

	internalError = browser.Text("An internal error occurred")
	finishedText  = browser.Text("Finished")
	nameInput     = browser.CSS(`input[placeholder*="name" i], input[aria-label*="name" i]`).AtFirst()

	saveToGitHub   = browser.ButtonWithText("Save to GitHub")
	stageAndCommit = browser.ButtonWithText("Stage and commit all changes")
	repoNameInput  = browser.CSS(`input[placeholder*="Repository name"]`).AtFirst()
	repoDescInput  = browser.CSS(`textarea[placeholder*="description"]`).AtFirst()
	createRepo     = browser.ButtonWithText("Create Git repo")
	commitLabel    = browser.CSS("text=Commit message").AtFirst()
	commitInput    = browser.CSS("textarea").AtFirst()

	closeDialog    = browser.CSS(`button[aria-label*="Close"]`).AtFirst()
	deployApp      = browser.CSS(`button[aria-label="Deploy app"]`)
	projectPicker  = browser.CSS(`[role="combobox"]`).AtFirst()
	redeployButton = browser.ButtonWithText("Redeploy").AtFirst()
)

// visibilityLabel targets the visibility radio for "private" or "public".
func visibilityLabel(visibility string) browser.Target {
	label := "Private"
	if visibility == VisibilityPublic {
		label = "Public"
	}
	return browser.CSS(fmt.Sprintf(`label:has-text(%q)`, label))
}

// projectOption targets a Google Cloud project in the deploy dialog.
func projectOption(project string) browser.Target {
	return browser.CSS(fmt.Sprintf(`option:has-text(%q)`, project))
}

// Studio runs AI Studio workflows against one saved login.
type Studio struct {
	env         workflow.Env
	state       browser.StateHandle
	profileDir  string
	countTokens func(string) int
}

// New creates the workflows. state is where the login is saved and read;
// profileDir is the persistent Chromium profile used while logging in.
func New(env workflow.Env, state browser.StateHandle, profileDir string) *Studio {
	env.Logger = env.Logger.With("aistudio")
	return &Studio{env: env, state: state, profileDir: profileDir, countTokens: tokenizer.CountTokens}
}

// State returns the login state handle.
func (s *Studio) State() browser.StateHandle { return s.state }

// openAuthenticated opens a session with the saved login, failing with
// browser.ErrNotAuthenticated when there is none.
func (s *Studio) openAuthenticated(ctx context.Context) (browser.Session, error) {
	state := s.state
	return s.env.Opener.Open(ctx, browser.OpenOptions{
		Headless:     s.env.Headless,
		State:        &state,
		RequireState: true,
	})
}

// openProfile opens the headed persistent profile used for interactive login.
func (s *Studio) openProfile(ctx context.Context) (browser.Session, error) {
	return s.env.Opener.Open(ctx, browser.OpenOptions{ProfileDir: s.profileDir})
}

// openError maps a failure to open a browser session to an envelope.
func openError(err error, elapsed time.Duration) *tools.Result {
	if errors.Is(err, browser.ErrNotAuthenticated) {
		return tools.Errorf(elapsed, "%v", err)
	}
	return tools.Errorf(elapsed, "failed to open browser: %v", err)
}

// dismissDialogs clicks through the terms and onboarding popups when present.
func (s *Studio) dismissDialogs(page browser.Page) {
	for _, t := range []browser.Target{agreeButton, gotItButton} {
		clicked, err := workflow.ClickIfVisible(page, t)
		if err != nil {
			s.env.Logger.Warnf("could not dismiss %s: %v", t, err)
			continue
		}
		if clicked {
			s.env.Logger.Infof("dismissed %s", t)
		}
	}
}

func preview(prompt string) string {
	r := []rune(prompt)
	if len(r) <= promptPreviewLength {
		return prompt
	}
	return string(r[:promptPreviewLength]) + "..."
}

// Tools returns every AI Studio tool.
func (s *Studio) Tools(cloneOpts ...repo.Option) []tools.Tool {
	return []tools.Tool{
		NewLoginTool(s),
		NewCreateProjectTool(s),
		NewWaitTool(s),
		NewCreateRepoTool(s),
		NewCommitDeployTool(s),
		NewCloneTool(s.env.Logger, cloneOpts...),
	}
}
