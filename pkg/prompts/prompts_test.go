package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogNames(t *testing.T) {
	names := func(s *Set) []string {
		var out []string
		for _, p := range s.List() {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{
		"create-new-project", "enhance-existing-project", "add-ai-features", "troubleshoot-workflow",
	}, names(AIStudio()))
	assert.Equal(t, []string{
		"deploy-to-vercel", "update-from-git", "test-deployment", "troubleshoot-deployment",
	}, names(V0()))
}

func TestRenderCreateNewProject(t *testing.T) {
	r, err := AIStudio().Render("create-new-project", map[string]string{
		"project_name":         "habit-tracker",
		"project_description":  "Track daily habits",
		"google_cloud_project": "my-gcp-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Create new AI Studio project: habit-tracker", r.Description)
	assert.Contains(t, r.Text, "# Create New AI Studio Project: habit-tracker")
	assert.Contains(t, r.Text, "Google Cloud Run (my-gcp-123)")
	assert.Contains(t, r.Text, `commit_message: "Initial implementation: Track daily habits"`)
	assert.NotContains(t, r.Text, "{{")
}

func TestRenderOptionalFlag(t *testing.T) {
	set := V0()
	args := map[string]string{
		"v0_chat_url":    "https://v0.app/chat/abc",
		"production_url": "https://abc.vercel.app",
	}

	r, err := set.Render("deploy-to-vercel", args)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "**View After Deploy**: false")
	assert.NotContains(t, r.Text, "<no value>")

	args["view_after_deploy"] = "True"
	r, err = set.Render("deploy-to-vercel", args)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "- view: true")
}

func TestRenderErrors(t *testing.T) {
	_, err := AIStudio().Render("deploy-to-vercel", nil)
	assert.True(t, errors.Is(err, ErrUnknownPrompt))

	_, err = AIStudio().Render("add-ai-features", map[string]string{"app_url": "https://aistudio.google.com/apps/drive/1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingArgument))
	assert.Contains(t, err.Error(), "features")
}

func TestEveryPromptRenders(t *testing.T) {
	for _, set := range []*Set{AIStudio(), V0()} {
		for _, p := range set.List() {
			args := map[string]string{}
			for _, a := range p.Arguments {
				args[a.Name] = "value-of-" + a.Name
			}
			r, err := set.Render(p.Name, args)
			require.NoError(t, err, p.Name)
			assert.NotEmpty(t, r.Description, p.Name)
			for _, a := range p.Arguments {
				if a.Name == "view_after_deploy" {
					continue
				}
				assert.Contains(t, r.Text, "value-of-"+a.Name, "%s should use %s", p.Name, a.Name)
			}
		}
	}
}

func TestMissingTemplate(t *testing.T) {
	_, err := NewSet(Prompt{Name: "no-such-prompt"})
	assert.Error(t, err)
}
