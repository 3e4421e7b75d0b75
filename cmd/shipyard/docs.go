package main

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/pflag"

	"github.com/entrhq/shipyard/pkg/config"
	"github.com/entrhq/shipyard/pkg/docs"
	"github.com/entrhq/shipyard/pkg/tools"
)

func docsCommand() *command {
	return &command{
		name:    "docs",
		summary: "List or read the workflow guides",
		usage:   "shipyard docs [aistudio|v0] [key]",
		local:   true,
		setup: func(fs *pflag.FlagSet, opts *globalOptions) runFunc {
			fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.shipyard/config.json)")
			dir := fs.String("dir", "", "documentation directory (default from config)")
			return func(ctx context.Context, con *console, args []string) (*tools.Result, error) {
				if len(args) > 2 {
					return nil, usagef("expected at most a collection and a key")
				}
				root := *dir
				if root == "" {
					cfg, err := config.New(opts.configPath)
					if err != nil {
						return nil, err
					}
					root = config.Docs(cfg).Directory()
				}
				return nil, showDocs(con, os.DirFS(root), args)
			}
		},
	}
}

// showDocs lists the collections, or prints one document.
func showDocs(con *console, fsys iofs.FS, args []string) error {
	collections := []*docs.Collection{docs.AIStudio(fsys), docs.V0(fsys)}
	if len(args) == 0 {
		for _, c := range collections {
			listDocs(con.out, c)
		}
		return nil
	}

	var c *docs.Collection
	for _, candidate := range collections {
		if candidate.Scheme() == args[0] {
			c = candidate
		}
	}
	if c == nil {
		return usagef("unknown collection %q (want aistudio or v0)", args[0])
	}
	if len(args) == 1 {
		listDocs(con.out, c)
		return nil
	}

	text, err := c.Read(args[1])
	if err != nil {
		return err
	}
	if con.tty {
		if rendered, err := renderMarkdown(text); err == nil {
			text = rendered
		}
	}
	_, err = io.WriteString(con.out, text)
	return err
}

func listDocs(w io.Writer, c *docs.Collection) {
	resources := c.List()
	if len(resources) == 0 {
		fmt.Fprintf(w, "%s: no documents found\n", c.Scheme())
		return
	}
	for _, r := range resources {
		fmt.Fprintf(w, "%-45s %s\n", r.URI, r.Description)
	}
}

func renderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}
