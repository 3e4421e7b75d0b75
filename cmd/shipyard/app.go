package main

import (
	"context"
	"fmt"
	"os"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/logging"
	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
	"github.com/entrhq/shipyard/pkg/tools/browser"
	"github.com/entrhq/shipyard/pkg/tools/studio"
	"github.com/entrhq/shipyard/pkg/tools/v0"
	"github.com/entrhq/shipyard/pkg/tools/workflow"
)

// app is the wiring shared by the workflow commands and the MCP server.
type app struct {
	config   *config.Manager
	logger   *logging.Logger
	launcher *browser.Launcher
	studio   *studio.Studio
	v0       *v0.Deployer
	registry *tools.Registry

	// progress, when set, receives every poll attempt
	progress func(site string, a poll.Attempt)
}

// newApp loads configuration and builds both workflow sets over one
// browser launcher.
func newApp(opts *globalOptions) (*app, error) {
	if opts.logLevel != "" {
		level, err := logging.ParseLevel(opts.logLevel)
		if err != nil {
			return nil, usagef("%v", err)
		}
		logging.SetLevel(level)
	}

	cfg, err := config.New(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	settings := config.Browser(cfg).Snapshot()
	if opts.headless {
		settings.Headless = true
	}

	logger := logging.MustLogger("shipyard")
	a := &app{
		config: cfg,
		logger: logger,
		launcher: browser.NewLauncher(
			browser.WithViewport(browser.Viewport{Width: settings.ViewportWidth, Height: settings.ViewportHeight}),
			browser.WithActionTimeout(settings.ActionTimeout),
			browser.WithLogger(logger.With("browser")),
		),
	}

	env := workflow.Env{
		Opener:      a.launcher,
		Timing:      config.Timing(cfg),
		Logger:      logger,
		Headless:    settings.Headless,
		SnapshotDir: settings.SnapshotDir,
		Progress: func(site string, at poll.Attempt) {
			if a.progress != nil {
				a.progress(site, at)
			}
		},
	}

	project, err := loadProject()
	if err != nil {
		logger.Warnf("ignoring v0 project file: %v", err)
	}

	a.studio = studio.New(env, browser.NewStateHandle(settings.AIStudioStatePath), settings.ProfileDir)
	a.v0 = v0.New(env, browser.NewStateHandle(settings.V0StatePath), project)
	a.registry = tools.NewRegistry(append(a.studio.Tools(), a.v0.Tools()...)...)

	logger.Infof("shipyard %s started (config %s, log %s)", version, cfg.Path(), logger.LogPath())
	return a, nil
}

func loadProject() (*v0.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return v0.LoadProject(cwd)
}

// execute runs a tool, showing a progress view on a terminal.
func (a *app) execute(ctx context.Context, con *console, tool string, args []byte) *tools.Result {
	if !con.errTTY {
		return a.registry.Execute(ctx, tool, args)
	}
	return runWithProgress(con.err, tool, func(report func(string, poll.Attempt)) *tools.Result {
		a.progress = report
		defer func() { a.progress = nil }()
		return a.registry.Execute(ctx, tool, args)
	})
}

// Close stops the browser and flushes the log.
func (a *app) Close() {
	if err := a.launcher.Shutdown(); err != nil {
		a.logger.Warnf("browser shutdown: %v", err)
	}
	a.logger.Close()
}
