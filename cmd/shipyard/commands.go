package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/docs"
	"github.com/entrhq/shipyard/pkg/mcpserver"
	"github.com/entrhq/shipyard/pkg/prompts"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
)

func init() {
	commands = []*command{
		setupCommand(),
		serveCommand(),
		docsCommand(),
		logoutCommand(),

		toolCommand("login", "Log in to Google AI Studio and save the session", "aistudio_login", nil),
		toolCommand("create-project", "Create an AI Studio app from a prompt", "aistudio_create_project",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				prompt := fs.String("prompt", "", "prompt describing the app")
				promptFile := fs.String("prompt-file", "", "read the prompt from a file")
				name := fs.String("name", "", "project name to set after creation")
				return func() (map[string]interface{}, error) {
					text, err := promptText(*prompt, *promptFile)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"prompt": text, "project_name": *name}, nil
				}
			}),
		toolCommand("wait", "Wait for Gemini to finish implementing an app", "aistudio_wait_for_implementation",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				appURL := fs.String("app-url", "", "AI Studio app URL")
				timeout := fs.Int("timeout", 0, "total budget in seconds, initial delay included (default from config)")
				return func() (map[string]interface{}, error) {
					return map[string]interface{}{"app_url": *appURL, "timeout_seconds": *timeout}, nil
				}
			}),
		toolCommand("create-repo", "Create a GitHub repository for an AI Studio app", "aistudio_create_repo",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				appURL := fs.String("app-url", "", "AI Studio app URL")
				name := fs.String("name", "", "repository name")
				description := fs.String("description", "", "repository description")
				visibility := fs.String("visibility", "private", "private or public")
				return func() (map[string]interface{}, error) {
					return map[string]interface{}{
						"app_url":     *appURL,
						"repo_name":   *name,
						"description": *description,
						"visibility":  *visibility,
					}, nil
				}
			}),
		toolCommand("commit-deploy", "Commit an AI Studio app to GitHub and deploy it to Cloud Run", "aistudio_commit_and_deploy",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				appURL := fs.String("app-url", "", "AI Studio app URL")
				message := fs.String("message", "", "commit message")
				project := fs.String("project", "", "Google Cloud project ID")
				issue := fs.Int("issue", 0, "GitHub issue number to reference")
				return func() (map[string]interface{}, error) {
					return map[string]interface{}{
						"app_url":              *appURL,
						"commit_message":       *message,
						"google_cloud_project": *project,
						"issue_number":         *issue,
					}, nil
				}
			}),
		toolCommand("clone", "Clone an app's GitHub repository", "aistudio_clone_repository",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				repoURL := fs.String("repo-url", "", "repository URL")
				path := fs.String("path", "", "local directory to clone into")
				branch := fs.String("branch", "main", "branch to clone")
				return func() (map[string]interface{}, error) {
					return map[string]interface{}{"repo_url": *repoURL, "local_path": *path, "branch": *branch}, nil
				}
			}),

		toolCommand("v0-login", "Log in to v0 and save the session", "v0_login", nil),
		toolCommand("v0-pull", "Pull the latest Git changes into the v0 editor", "v0_git_pull", chatFlags),
		toolCommand("v0-publish", "Publish a v0 chat to Vercel", "v0_publish", chatFlags),
		toolCommand("v0-view", "Open the production app for inspection", "v0_view_app",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				url := fs.String("url", "", "production URL (default from v0_config)")
				seconds := fs.Int("wait-seconds", 0, "how long to keep the app open (default 60)")
				return func() (map[string]interface{}, error) {
					return map[string]interface{}{"production_url": *url, "wait_seconds": *seconds}, nil
				}
			}),
		toolCommand("v0-deploy", "Pull, publish and optionally view a v0 app", "v0_deploy",
			func(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
				chatURL := fs.String("chat-url", "", "v0 chat URL (default from v0_config)")
				url := fs.String("url", "", "production URL (default from v0_config)")
				view := fs.Bool("view", false, "open the production app after publishing (default from v0_config)")
				return func() (map[string]interface{}, error) {
					args := map[string]interface{}{"v0_chat_url": *chatURL, "production_url": *url}
					if fs.Changed("view") {
						args["view"] = *view
					}
					return args, nil
				}
			}),

		versionCommand(),
	}
}

func chatFlags(fs *pflag.FlagSet) func() (map[string]interface{}, error) {
	chatURL := fs.String("chat-url", "", "v0 chat URL (default from v0_config)")
	return func() (map[string]interface{}, error) {
		return map[string]interface{}{"v0_chat_url": *chatURL}, nil
	}
}

// promptText returns the inline prompt or the contents of file.
func promptText(inline, file string) (string, error) {
	if inline != "" && file != "" {
		return "", usagef("--prompt and --prompt-file are mutually exclusive")
	}
	if file == "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func versionCommand() *command {
	return &command{
		name:    "version",
		summary: "Print the version",
		local:   true,
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				fmt.Fprintf(con.out, "shipyard v%s\n", version)
				return nil, nil
			}
		},
	}
}

func setupCommand() *command {
	return &command{
		name:    "setup",
		summary: "Install the browser and write the default configuration",
		local:   true,
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.shipyard/config.json)")
			skipInstall := fs.Bool("skip-install", false, "only write the configuration")
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				if !*skipInstall {
					fmt.Fprintln(con.err, "installing Playwright Chromium...")
					if err := browser.Install(con.err); err != nil {
						return nil, err
					}
				}
				cfg, err := config.New(opts.configPath)
				if err != nil {
					return nil, err
				}
				if err := cfg.SaveAll(); err != nil {
					return nil, err
				}
				fmt.Fprintf(con.out, "configuration written to %s\n", cfg.Path())
				fmt.Fprintf(con.out, "next: run 'shipyard login' and 'shipyard v0-login' to save your sessions\n")
				return nil, nil
			}
		},
	}
}

func logoutCommand() *command {
	return &command{
		name:    "logout",
		summary: "Forget the saved AI Studio and v0 sessions",
		usage:   "shipyard logout [aistudio|v0]",
		local:   true,
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.shipyard/config.json)")
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				if len(args) > 1 {
					return nil, usagef("expected at most one of aistudio or v0")
				}
				only := ""
				if len(args) == 1 {
					only = args[0]
					if only != "aistudio" && only != "v0" {
						return nil, usagef("unknown session %q (want aistudio or v0)", only)
					}
				}

				cfg, err := config.New(opts.configPath)
				if err != nil {
					return nil, err
				}
				settings := config.Browser(cfg).Snapshot()
				for _, s := range []struct{ name, path string }{
					{"aistudio", settings.AIStudioStatePath},
					{"v0", settings.V0StatePath},
				} {
					if only != "" && only != s.name {
						continue
					}
					state := browser.NewStateHandle(s.path)
					if !state.Exists() {
						fmt.Fprintf(con.out, "%s: no saved session\n", s.name)
						continue
					}
					if err := state.Remove(); err != nil {
						return nil, err
					}
					fmt.Fprintf(con.out, "%s: removed %s\n", s.name, s.path)
				}
				return nil, nil
			}
		},
	}
}

const instructions = `Shipyard automates two browser front-ends.

AI Studio: aistudio_login, aistudio_create_project, aistudio_wait_for_implementation,
aistudio_create_repo, aistudio_commit_and_deploy, aistudio_clone_repository.
v0: v0_login, v0_git_pull, v0_publish, v0_view_app, v0_deploy.

Every tool answers with a JSON envelope: status is "success", "timeout" or
"error", duration_seconds is the time spent. A "timeout" is retryable.
Documentation is available under aistudio://docs/ and v0://docs/.`

func serveCommand() *command {
	return &command{
		name:    "serve",
		summary: "Serve the tools, docs and prompts over MCP on stdio",
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			only := fs.String("only", "", "expose only one workflow set: aistudio or v0")
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				if *only != "" && *only != "aistudio" && *only != "v0" {
					return nil, usagef("--only must be aistudio or v0, got %q", *only)
				}
				a, err := con.newApp(opts)
				if err != nil {
					return nil, err
				}
				defer a.Close()

				srv, err := mcpserver.New(a.serverOptions(*only))
				if err != nil {
					return nil, err
				}
				return nil, srv.Serve(ctx, con.in, con.out)
			}
		},
	}
}

// serverOptions selects the tools, docs and prompts for one server.
func (a *app) serverOptions(only string) mcpserver.Options {
	fsys := os.DirFS(config.Docs(a.config).Directory())
	opts := mcpserver.Options{
		Name:         "shipyard",
		Version:      version,
		Instructions: instructions,
		Tools:        tools.NewRegistry(),
		Logger:       a.logger,
	}
	if only != "v0" {
		for _, t := range a.studio.Tools() {
			opts.Tools.Register(t)
		}
		opts.Docs = append(opts.Docs, docs.AIStudio(fsys))
		opts.Prompts = append(opts.Prompts, prompts.AIStudio())
	}
	if only != "aistudio" {
		for _, t := range a.v0.Tools() {
			opts.Tools.Register(t)
		}
		opts.Docs = append(opts.Docs, docs.V0(fsys))
		opts.Prompts = append(opts.Prompts, prompts.V0())
	}
	switch only {
	case "aistudio":
		opts.Name = "aistudio"
	case "v0":
		opts.Name = "v0deployer"
	}
	return opts
}
