package studio

import (
	"context"
	"errors"
	"time"

	"github.com/entrhq/shipyard/pkg/logging"
	"github.com/entrhq/shipyard/pkg/repo"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// CloneTool clones a generated app's repository for local development.
type CloneTool struct {
	logger *logging.Logger
	opts   []repo.Option
}

// NewCloneTool creates the aistudio_clone_repository tool.
func NewCloneTool(logger *logging.Logger, opts ...repo.Option) *CloneTool {
	return &CloneTool{logger: logger.With("clone"), opts: opts}
}

// Name returns the tool name.
func (t *CloneTool) Name() string {
	return "aistudio_clone_repository"
}

// Description returns the tool description.
func (t *CloneTool) Description() string {
	return "Clone GitHub repository to local development environment. Makes a shallow single-branch clone for speed."
}

// Schema returns the tool's JSON schema.
func (t *CloneTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"repo_url":   tools.StringProperty("GitHub repository URL (https or git@)"),
			"local_path": tools.StringProperty("Local directory path to clone into"),
			"branch": map[string]interface{}{
				"type":        "string",
				"description": "Branch to clone",
				"default":     repo.DefaultBranch,
			},
		},
		[]string{"repo_url", "local_path"},
	)
}

// CloneInput represents the parameters for cloning.
type CloneInput struct {
	RepoURL   string `json:"repo_url"`
	LocalPath string `json:"local_path"`
	Branch    string `json:"branch"`
}

// Execute clones the repository.
func (t *CloneTool) Execute(ctx context.Context, argumentsJSON []byte) *tools.Result {
	var input CloneInput
	if err := tools.UnmarshalArgs(argumentsJSON, &input); err != nil {
		return tools.Errorf(0, "%v", err)
	}

	start := time.Now()
	t.logger.Infof("cloning %s into %s", input.RepoURL, input.LocalPath)
	c, err := repo.CloneBranch(ctx, input.RepoURL, input.LocalPath, input.Branch, t.opts...)
	if err != nil {
		t.logger.Errorf("clone failed: %v", err)
		r := tools.Errorf(time.Since(start), "%v", err).With("repo_url", input.RepoURL)
		if errors.Is(err, repo.ErrTimeout) || errors.Is(err, context.Canceled) {
			r.Status = tools.StatusTimeout
		}
		return r
	}

	t.logger.Infof("cloned to %s", c.Path)
	return tools.Success(time.Since(start)).
		With("repo_url", c.URL).
		With("local_path", c.Path).
		With("branch", c.Branch).
		With("head", c.Head).
		With("cloned_at", workflow.Timestamp(c.ClonedAt))
}
