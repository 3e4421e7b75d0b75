package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/entrhq/shipyard/pkg/tools"
)

// runFunc executes a parsed command. A nil result means the command wrote
// its own output.
type runFunc func(ctx context.Context, con *console, args []string) (*tools.Result, error)

// command is one shipyard subcommand.
type command struct {
	name    string
	summary string
	usage   string

	// local commands need neither config nor a browser
	local bool

	// setup registers flags on fs and returns the function that runs the
	// command once they are parsed.
	setup func(fs *pflag.FlagSet, opts *globalOptions) runFunc
}

// usageError reports a command line that parsed but cannot run.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// globalOptions are accepted by every command that touches the browser.
type globalOptions struct {
	configPath string
	headless   bool
	copy       bool
	logLevel   string
}

func (o *globalOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.shipyard/config.json)")
	fs.BoolVar(&o.headless, "headless", false, "run the browser without a window for authenticated workflows")
	fs.BoolVar(&o.copy, "copy", false, "copy the resulting URL to the clipboard")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// toolCommand builds a command that runs the named tool with arguments
// collected from flags.
func toolCommand(name, summary, tool string, flags func(fs *pflag.FlagSet) func() (map[string]interface{}, error)) *command {
	return &command{
		name:    name,
		summary: summary,
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			collect := func() (map[string]interface{}, error) { return map[string]interface{}{}, nil }
			if flags != nil {
				collect = flags(fs)
			}
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				if len(args) > 0 {
					return nil, usagef("unexpected argument %q", args[0])
				}
				arguments, err := collect()
				if err != nil {
					return nil, err
				}
				data, err := json.Marshal(arguments)
				if err != nil {
					return nil, fmt.Errorf("failed to encode arguments: %w", err)
				}

				a, err := con.newApp(opts)
				if err != nil {
					return nil, err
				}
				defer a.Close()
				return a.execute(ctx, con, tool, data), nil
			}
		},
	}
}

// commands is the command table in help order.
var commands []*command

func lookup(name string) (*command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "shipyard - drive AI Studio and v0 deployment workflows\n\n")
	fmt.Fprintf(w, "Usage: shipyard <command> [flags]\n\nCommands:\n")
	width := 0
	for _, c := range commands {
		width = max(width, len(c.name))
	}
	for _, c := range commands {
		fmt.Fprintf(w, "  %-*s  %s\n", width, c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'shipyard <command> --help' for the flags of a command.\n")
	fmt.Fprintf(w, "Workflow commands print a JSON result and exit 0 only when its status is \"success\".\n")
}

func printCommandHelp(w io.Writer, c *command, fs *pflag.FlagSet) {
	usage := c.usage
	if usage == "" {
		usage = "shipyard " + c.name + " [flags]"
	}
	fmt.Fprintf(w, "%s\n\nUsage: %s\n", c.summary, usage)
	if defaults := fs.FlagUsages(); strings.TrimSpace(defaults) != "" {
		fmt.Fprintf(w, "\nFlags:\n%s", defaults)
	}
}
