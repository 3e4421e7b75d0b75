// Package main provides shipyard, a command-line driver for the AI Studio
// and v0 deployment workflows. Every workflow subcommand prints the JSON
// result envelope on stdout; `serve` speaks MCP over stdio instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const version = "0.1.0"

// Exit codes. Only a success envelope exits 0.
const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
	exitTimeout = 3
)

// console is where a command writes. tty reports whether out is a
// terminal.
type console struct {
	in     io.Reader
	out    io.Writer
	err    io.Writer
	tty    bool
	errTTY bool
	newApp func(opts *globalOptions) (*app, error)
}

func main() {
	con := &console{
		in:     os.Stdin,
		out:    os.Stdout,
		err:    os.Stderr,
		tty:    term.IsTerminal(int(os.Stdout.Fd())),
		errTTY: term.IsTerminal(int(os.Stderr.Fd())),
		newApp: newApp,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, con, os.Args[1:])
	stop()
	os.Exit(code)
}

// run dispatches args to a subcommand and returns the process exit code.
func run(ctx context.Context, con *console, args []string) int {
	if len(args) == 0 {
		printUsage(con.err)
		return exitUsage
	}
	if isHelpFlag(args[0]) || args[0] == "help" {
		printUsage(con.out)
		return exitSuccess
	}
	if args[0] == "--version" {
		args[0] = "version"
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(con.err, "unknown command %q\n\n", args[0])
		printUsage(con.err)
		return exitUsage
	}

	flags := pflag.NewFlagSet("shipyard "+cmd.name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := &globalOptions{}
	if !cmd.local {
		opts.register(flags)
	}
	runFn := cmd.setup(flags, opts)

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandHelp(con.out, cmd, flags)
			return exitSuccess
		}
		fmt.Fprintf(con.err, "%v\n\n", err)
		printCommandHelp(con.err, cmd, flags)
		return exitUsage
	}

	result, err := runFn(ctx, con, flags.Args())
	if err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(con.err, "%v\n\n", err)
			printCommandHelp(con.err, cmd, flags)
			return exitUsage
		}
		fmt.Fprintf(con.err, "error: %v\n", err)
		return exitError
	}
	if result == nil {
		return exitSuccess
	}

	if err := writeResult(con.out, result, con.tty); err != nil {
		fmt.Fprintf(con.err, "error: %v\n", err)
		return exitError
	}
	fmt.Fprintln(con.err, statusLine(result, con.errTTY))
	if opts.copy {
		copyURL(con.err, result)
	}
	return exitCode(result)
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help"
}
