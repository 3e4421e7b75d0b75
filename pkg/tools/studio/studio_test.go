package studio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/logging"
	"github.com/entrhq/shipyard/pkg/poll/polltest"
	"github.com/entrhq/shipyard/pkg/tokenizer"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/browser/browsertest"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

const (
	tempURL  = "https://aistudio.google.com/apps/temp/4f2a"
	driveURL = "https://aistudio.google.com/apps/drive/1AbC?source=start"
)

type fixture struct {
	studio  *Studio
	page    *browsertest.Page
	session *browsertest.Session
	opener  *browsertest.Opener
	state   browser.StateHandle
	profile string
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	dir := t.TempDir()

	state := browser.NewStateHandle(filepath.Join(dir, "state", "aistudio.json"))
	if loggedIn {
		require.NoError(t, os.MkdirAll(filepath.Dir(state.Path()), 0700))
		require.NoError(t, os.WriteFile(state.Path(), []byte(`{}`), 0600))
	}

	page := browsertest.NewPage("about:blank")
	session := browsertest.NewSession(page)
	opener := browsertest.NewOpener(session)
	env := workflow.Env{
		Opener:      opener,
		Timing:      config.NewTimingSection(),
		Logger:      logging.NewWriterLogger("test", io.Discard),
		Clock:       polltest.NewClock(),
		SnapshotDir: filepath.Join(dir, "snapshots"),
	}

	profile := filepath.Join(dir, "profile")
	s := New(env, state, profile)
	s.countTokens = tokenizer.Estimate
	return &fixture{studio: s, page: page, session: session, opener: opener, state: state, profile: profile}
}

func TestLoginSavesState(t *testing.T) {
	f := newFixture(t, false)
	f.page.ScriptVisible(loginMarker, false, false, true)

	r := f.studio.Login(context.Background())

	require.True(t, r.OK(), r.Error)
	assert.Equal(t, 4.0, r.DurationSeconds)
	assert.Equal(t, f.state.Path(), r.StringField("storage_state_path"))
	assert.True(t, f.state.Exists())
	assert.Equal(t, []string{f.state.Path()}, f.session.Saved)
	assert.Equal(t, []string{StartURL}, f.page.Visits())
	assert.True(t, f.session.Closed)

	require.Len(t, f.opener.Opened, 1)
	assert.Equal(t, f.profile, f.opener.Opened[0].ProfileDir)
	assert.False(t, f.opener.Opened[0].Headless)
}

func TestLoginTimeoutDoesNotSaveState(t *testing.T) {
	f := newFixture(t, false)

	r := f.studio.Login(context.Background())

	assert.Equal(t, tools.StatusTimeout, r.Status)
	assert.Equal(t, 300.0, r.DurationSeconds)
	assert.Contains(t, r.Error, "authentication not completed")
	assert.False(t, f.state.Exists())
	assert.Empty(t, f.session.Saved)
}

func TestLoginOpenFailure(t *testing.T) {
	f := newFixture(t, false)
	f.opener.Err = errors.New("chromium missing")

	r := f.studio.Login(context.Background())

	assert.Equal(t, tools.StatusError, r.Status)
	assert.Equal(t, "failed to open browser: chromium missing", r.Error)
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t, true)
	f.page.SetVisible(agreeButton, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(tempURL)
		return nil
	})
	f.page.ScriptVisible(finishedText, false, true)

	prompt := "Build a habit tracker with streaks, weekly charts and reminders. " +
		"Use a calm palette and make it work offline as a progressive web app."
	r := f.studio.CreateProject(context.Background(), prompt, "")

	require.True(t, r.OK(), r.Error)
	assert.Equal(t, tempURL, r.StringField("app_url"))
	assert.Equal(t, "wait_for_implementation", r.StringField("next_step"))
	assert.Equal(t, tokenizer.Estimate(prompt), r.Field("prompt_tokens"))
	assert.Equal(t, prompt[:100]+"...", r.StringField("prompt_sent"))
	assert.NotEmpty(t, r.StringField("created_at"))
	assert.Equal(t, 5.0, r.DurationSeconds)

	filled, ok := f.page.Filled(promptBox)
	require.True(t, ok)
	assert.Equal(t, prompt, filled)
	assert.Equal(t, []string{agreeButton.String(), buildButton.String()}, f.page.Clicks())
	assert.Equal(t, []string{AppsURL}, f.page.Visits())

	require.Len(t, f.opener.Opened, 1)
	assert.True(t, f.opener.Opened[0].RequireState)
}

func TestCreateProjectSavedURL(t *testing.T) {
	f := newFixture(t, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(driveURL)
		return nil
	})
	f.page.SetVisible(nameInput, true)

	r := f.studio.CreateProject(context.Background(), "a short prompt", "habit-tracker")

	require.True(t, r.OK(), r.Error)
	assert.Equal(t, driveURL, r.StringField("app_url"))
	assert.Equal(t, "a short prompt", r.StringField("prompt_sent"))

	// No temp URL ever appeared, so the temp wait spent its whole budget
	assert.Equal(t, 30.0, r.DurationSeconds)

	name, ok := f.page.Filled(nameInput)
	require.True(t, ok)
	assert.Equal(t, "habit-tracker", name)
}

func TestCreateProjectWithoutNameField(t *testing.T) {
	f := newFixture(t, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(driveURL)
		return nil
	})

	r := f.studio.CreateProject(context.Background(), "a short prompt", "habit-tracker")

	require.True(t, r.OK(), r.Error)
	_, filled := f.page.Filled(nameInput)
	assert.False(t, filled)
	assert.Equal(t, 1, f.page.ProbeCount(nameInput))
}

func TestCreateProjectInternalError(t *testing.T) {
	f := newFixture(t, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(tempURL)
		return nil
	})
	f.page.ScriptVisible(internalError, false, false, true)
	f.page.SetVisible(finishedText, false)

	r := f.studio.CreateProject(context.Background(), "prompt", "")

	assert.Equal(t, tools.StatusError, r.Status)
	assert.Contains(t, r.Error, "AI Studio internal error")
	assert.Equal(t, tempURL, r.StringField("app_url"))
	assert.Equal(t, 10.0, r.DurationSeconds)
}

func TestCreateProjectTimeout(t *testing.T) {
	f := newFixture(t, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(tempURL)
		return nil
	})

	r := f.studio.CreateProject(context.Background(), "prompt", "")

	assert.Equal(t, tools.StatusTimeout, r.Status)
	assert.Equal(t, tempURL, r.StringField("app_url"))
	assert.Equal(t, 600.0, r.DurationSeconds)
}

func TestCreateProjectLogsInFirst(t *testing.T) {
	f := newFixture(t, false)
	f.page.SetVisible(loginMarker, true)
	f.page.OnClick(buildButton, func(p *browsertest.Page) error {
		p.SetURL(driveURL)
		return nil
	})

	r := f.studio.CreateProject(context.Background(), "prompt", "")

	require.True(t, r.OK(), r.Error)
	assert.True(t, f.state.Exists())
	require.Len(t, f.opener.Opened, 1)
	assert.Equal(t, f.profile, f.opener.Opened[0].ProfileDir)
}

func TestCreateProjectRequiresPrompt(t *testing.T) {
	f := newFixture(t, true)

	r := NewCreateProjectTool(f.studio).Execute(context.Background(), []byte(`{"project_name":"x"}`))

	assert.Equal(t, tools.StatusError, r.Status)
	assert.Equal(t, "prompt is required", r.Error)
	assert.Empty(t, f.opener.Opened)
}

func TestToolsNames(t *testing.T) {
	f := newFixture(t, true)
	registry := tools.NewRegistry(f.studio.Tools()...)

	assert.Equal(t, []string{
		"aistudio_clone_repository",
		"aistudio_commit_and_deploy",
		"aistudio_create_project",
		"aistudio_create_repo",
		"aistudio_login",
		"aistudio_wait_for_implementation",
	}, registry.Names())
}
