// Package mcpserver wires the workflow tools, documentation resources and
// prompts into an MCP server spoken over stdio.
//
// Workflow failures never become protocol errors: every tool call answers
// with the JSON envelope, whatever its status.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/entrhq/shipyard/pkg/docs"
	"github.com/entrhq/shipyard/pkg/logging"
	"github.com/entrhq/shipyard/pkg/prompts"
	"github.com/entrhq/shipyard/pkg/tools"
)

// Options selects what one server exposes.
type Options struct {
	Name         string
	Version      string
	Instructions string

	Tools   *tools.Registry
	Docs    []*docs.Collection
	Prompts []*prompts.Set

	Logger *logging.Logger
}

// Server is an MCP server plus the registries it was built from.
type Server struct {
	mcp    *server.MCPServer
	opts   Options
	logger *logging.Logger
}

// New builds the server. Resources are registered for documents present
// at build time.
func New(opts Options) (*Server, error) {
	if opts.Tools == nil {
		opts.Tools = tools.NewRegistry()
	}
	s := &Server{
		opts:   opts,
		logger: opts.Logger.With("mcp"),
	}
	s.mcp = server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(opts.Instructions),
	)

	for _, t := range opts.Tools.List() {
		definition, err := toolDefinition(t)
		if err != nil {
			return nil, err
		}
		s.mcp.AddTool(definition, s.toolHandler(t.Name()))
	}

	resources := 0
	for _, c := range opts.Docs {
		for _, r := range c.List() {
			s.mcp.AddResource(
				mcp.NewResource(r.URI, r.Name,
					mcp.WithResourceDescription(r.Description),
					mcp.WithMIMEType(r.MIMEType),
				),
				resourceHandler(c),
			)
			resources++
		}
	}

	promptCount := 0
	for _, set := range opts.Prompts {
		for _, p := range set.List() {
			s.mcp.AddPrompt(promptDefinition(p), promptHandler(set, p.Name))
			promptCount++
		}
	}

	s.logger.Infof("server %s %s: %d tools, %d resources, %d prompts",
		opts.Name, opts.Version, len(opts.Tools.List()), resources, promptCount)
	return s, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP over in and out until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(s.logger.Writer(), "stdio: ", 0))

	s.logger.Infof("serving %s over stdio", s.opts.Name)
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

func toolDefinition(t tools.Tool) (mcp.Tool, error) {
	schema, err := json.Marshal(t.Schema())
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("failed to encode schema of %s: %w", t.Name(), err)
	}
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), nil
}

// toolHandler runs the named tool and answers with its envelope.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultText(tools.Errorf(0, "invalid parameters: %v", err).JSON()), nil
		}

		s.logger.Infof("tool %s called", name)
		result := s.opts.Tools.Execute(ctx, name, args)
		if result.OK() {
			s.logger.Infof("tool %s finished in %.1fs", name, result.DurationSeconds)
		} else {
			s.logger.Warnf("tool %s finished with %s: %s", name, result.Status, result.Error)
		}
		return mcp.NewToolResultText(result.JSON()), nil
	}
}

func resourceHandler(c *docs.Collection) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := c.ReadURI(request.Params.URI)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: docs.MIMEType,
				Text:     text,
			},
		}, nil
	}
}

func promptDefinition(p prompts.Prompt) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
	for _, a := range p.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(a.Description)}
		if a.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(a.Name, argOpts...))
	}
	return mcp.NewPrompt(p.Name, opts...)
}

func promptHandler(set *prompts.Set, name string) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		rendered, err := set.Render(name, request.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(rendered.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(rendered.Text)),
		}), nil
	}
}
