package studio

import (
	"context"
	"fmt"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

// Login opens the persistent profile headed, waits for the user to sign in
// and saves the session state. A login that does not complete within the
// budget leaves any previous state untouched.
func (s *Studio) Login(ctx context.Context) *tools.Result {
	start := s.env.Now()

	session, err := s.openProfile(ctx)
	if err != nil {
		return openError(err, s.env.Since(start))
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(StartURL); err != nil {
		return tools.Errorf(s.env.Since(start), "failed to open AI Studio: %v", err)
	}
	s.env.Logger.Infof("waiting for the user to sign in to AI Studio")

	if r := s.awaitLogin(ctx, page, session); r != nil {
		return r.WithDuration(s.env.Since(start))
	}

	return tools.Success(s.env.Since(start)).
		With("message", fmt.Sprintf("Authenticated to AI Studio. Session saved to %s", s.state.Path())).
		With("storage_state_path", s.state.Path())
}

// awaitLogin polls for the signed-in apps page and saves state. It returns
// nil on success and the failure envelope otherwise.
func (s *Studio) awaitLogin(ctx context.Context, page browser.Page, session browser.Session) *tools.Result {
	out := s.env.Wait(ctx, config.WaitAIStudioLogin, browser.VisibleProbe(page, loginMarker))
	if !out.Succeeded() {
		r := tools.FromOutcome(out)
		r.Error = fmt.Sprintf("authentication not completed: %v", out.Err())
		return r
	}
	s.env.Logger.Infof("authenticated")

	if err := session.SaveState(s.state); err != nil {
		return tools.Errorf(0, "failed to save session state: %v", err)
	}
	s.env.Logger.Infof("session saved to %s", s.state.Path())
	return nil
}

// LoginTool exposes Login.
type LoginTool struct {
	studio *Studio
}

// NewLoginTool creates the aistudio_login tool.
func NewLoginTool(s *Studio) *LoginTool {
	return &LoginTool{studio: s}
}

// Name returns the tool name.
func (t *LoginTool) Name() string {
	return "aistudio_login"
}

// Description returns the tool description.
func (t *LoginTool) Description() string {
	return "Authenticate to Google AI Studio and save session state for reuse. Opens a browser for manual login, then saves the authentication state for the other aistudio tools."
}

// Schema returns the tool's JSON schema.
func (t *LoginTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute runs the login workflow.
func (t *LoginTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	return t.studio.Login(ctx)
}
