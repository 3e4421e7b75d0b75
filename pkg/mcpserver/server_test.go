package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/docs"
	"github.com/entrhq/shipyard/pkg/prompts"
	"github.com/entrhq/shipyard/pkg/tools"
)

// stubTool answers with a fixed result and records its arguments.
type stubTool struct {
	name   string
	result *tools.Result
	args   []byte
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"app_url": tools.StringProperty("URL"),
	}, []string{"app_url"})
}
func (s *stubTool) Execute(ctx context.Context, args []byte) *tools.Result {
	s.args = args
	return s.result
}

func newServer(t *testing.T, ts ...tools.Tool) *Server {
	t.Helper()
	fsys := fstest.MapFS{
		"aistudio/00-start-here.md": {Data: []byte("# Start Here\nbody\n")},
		"v0/build-integrity.md":     {Data: []byte("# Build Integrity\n")},
	}
	s, err := New(Options{
		Name:    "shipyard",
		Version: "test",
		Tools:   tools.NewRegistry(ts...),
		Docs:    []*docs.Collection{docs.AIStudio(fsys), docs.V0(fsys)},
		Prompts: []*prompts.Set{prompts.AIStudio(), prompts.V0()},
	})
	require.NoError(t, err)
	return s
}

func callText(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestToolHandlerReturnsEnvelope(t *testing.T) {
	tool := &stubTool{
		name:   "aistudio_wait_for_implementation",
		result: tools.Success(96 * time.Second).With("app_url", "https://aistudio.google.com/apps/drive/1"),
	}
	s := newServer(t, tool)

	var req mcp.CallToolRequest
	req.Params.Name = tool.name
	req.Params.Arguments = map[string]interface{}{"app_url": "https://aistudio.google.com/apps/drive/1"}

	res, err := s.toolHandler(tool.name)(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	out := callText(t, res)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, 96.0, out["duration_seconds"])
	assert.Equal(t, "https://aistudio.google.com/apps/drive/1", out["app_url"])
	assert.JSONEq(t, `{"app_url":"https://aistudio.google.com/apps/drive/1"}`, string(tool.args))
}

func TestToolHandlerWorkflowFailureIsNotProtocolError(t *testing.T) {
	tool := &stubTool{
		name:   "v0_publish",
		result: tools.Errorf(3*time.Second, "Could not find 'Publish Changes' or 'Update' in the publish dropdown"),
	}
	s := newServer(t, tool)

	var req mcp.CallToolRequest
	req.Params.Name = tool.name

	res, err := s.toolHandler(tool.name)(context.Background(), req)
	require.NoError(t, err)

	out := callText(t, res)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["error"], "publish dropdown")
}

func TestToolHandlerUnknownTool(t *testing.T) {
	s := newServer(t)

	res, err := s.toolHandler("nope")(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, "unknown tool: nope", callText(t, res)["error"])
}

func TestResourceHandler(t *testing.T) {
	fsys := fstest.MapFS{"v0/deployment-workflow.md": {Data: []byte("# Deploy\n")}}
	handler := resourceHandler(docs.V0(fsys))

	var req mcp.ReadResourceRequest
	req.Params.URI = "v0://docs/deployment-workflow"
	contents, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "# Deploy\n", text.Text)
	assert.Equal(t, docs.MIMEType, text.MIMEType)

	req.Params.URI = "v0://docs/unknown"
	_, err = handler(context.Background(), req)
	assert.True(t, errors.Is(err, docs.ErrUnknownDocument))
}

func TestPromptHandler(t *testing.T) {
	handler := promptHandler(prompts.V0(), "test-deployment")

	var req mcp.GetPromptRequest
	req.Params.Name = "test-deployment"
	req.Params.Arguments = map[string]string{"production_url": "https://abc.vercel.app"}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Test deployed application at https://abc.vercel.app", res.Description)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)

	text, ok := res.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "https://abc.vercel.app")

	req.Params.Arguments = nil
	_, err = handler(context.Background(), req)
	assert.True(t, errors.Is(err, prompts.ErrMissingArgument))
}

func TestPromptDefinition(t *testing.T) {
	p, ok := prompts.V0().Get("deploy-to-vercel")
	require.True(t, ok)

	def := promptDefinition(p)

	assert.Equal(t, "deploy-to-vercel", def.Name)
	require.Len(t, def.Arguments, 3)
	assert.True(t, def.Arguments[0].Required)
	assert.False(t, def.Arguments[2].Required)
}

func TestToolDefinitionCarriesSchema(t *testing.T) {
	def, err := toolDefinition(&stubTool{name: "aistudio_create_repo"})
	require.NoError(t, err)

	assert.Equal(t, "aistudio_create_repo", def.Name)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"app_url": {"type": "string", "description": "URL"}},
		"required": ["app_url"]
	}`, string(def.RawInputSchema))
}

func TestListToolsOverJSONRPC(t *testing.T) {
	s := newServer(t,
		&stubTool{name: "v0_login", result: tools.Success(0)},
		&stubTool{name: "aistudio_login", result: tools.Success(0)},
	)

	msg := s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))

	var names []string
	for _, tl := range resp.Result.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"aistudio_login", "v0_login"}, names)
}
