// Package docs exposes the workflow guides as keyed markdown documents.
// Each server has its own Collection, addressed by <scheme>://docs/<key>.
package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ErrUnknownDocument is returned for keys and URIs no collection knows.
var ErrUnknownDocument = errors.New("unknown document")

// MIMEType is the media type of every document.
const MIMEType = "text/markdown"

// descriptionWindow bounds how much of a file is scanned for its first line.
const descriptionWindow = 500

// Document maps a stable key to a markdown file.
type Document struct {
	Key  string
	File string
}

// Resource describes one document present on disk.
type Resource struct {
	Key         string
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// Collection is an ordered set of documents read from one directory of an
// fs.FS.
type Collection struct {
	scheme string
	title  string
	dir    string
	fsys   fs.FS
	docs   []Document
}

// NewCollection creates a collection whose files live under dir in fsys.
// URIs take the form <scheme>://docs/<key>; resource names are prefixed
// with title.
func NewCollection(fsys fs.FS, dir, scheme, title string, docs ...Document) *Collection {
	return &Collection{
		scheme: scheme,
		title:  title,
		dir:    dir,
		fsys:   fsys,
		docs:   append([]Document(nil), docs...),
	}
}

// AIStudio returns the AI Studio guides, read from the aistudio directory
// of fsys.
func AIStudio(fsys fs.FS) *Collection {
	return NewCollection(fsys, "aistudio", "aistudio", "AI Studio",
		Document{"start-here", "00-start-here.md"},
		Document{"workflow-new-project", "01-workflow-new-project.md"},
		Document{"workflow-existing-project", "02-workflow-existing-project.md"},
		Document{"ai-features-catalog", "03-ai-features-catalog.md"},
		Document{"browser-automation-reference", "04-browser-automation-reference.md"},
		Document{"llm-decision-guide", "05-llm-decision-guide.md"},
		Document{"best-practices-antipatterns", "06-best-practices-antipatterns.md"},
		Document{"mcp-server-setup", "07-mcp-server-setup.md"},
		Document{"mcp-quick-reference", "08-mcp-quick-reference.md"},
		Document{"legacy-workflow-new-project", "legacy-workflow-new-project.md"},
		Document{"legacy-workflow", "legacy-workflow.md"},
		Document{"legacy-ai-features-exploration", "legacy-ai-features-exploration.md"},
	)
}

// V0 returns the v0 deployment guides, read from the v0 directory of fsys.
func V0(fsys fs.FS) *Collection {
	return NewCollection(fsys, "v0", "v0", "v0 Deployer",
		Document{"deployment-workflow", "deployment-workflow.md"},
		Document{"agent-collaboration", "agent-collaboration.md"},
		Document{"build-integrity", "build-integrity.md"},
	)
}

// Scheme returns the URI scheme of the collection.
func (c *Collection) Scheme() string { return c.scheme }

// Documents returns every declared document, present or not.
func (c *Collection) Documents() []Document {
	return append([]Document(nil), c.docs...)
}

// URI returns the resource URI of key.
func (c *Collection) URI(key string) string {
	return fmt.Sprintf("%s://docs/%s", c.scheme, key)
}

// Key extracts the document key from uri.
func (c *Collection) Key(uri string) (string, error) {
	key, ok := strings.CutPrefix(uri, c.scheme+"://docs/")
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return key, nil
}

// List returns the documents whose files exist, in declaration order.
func (c *Collection) List() []Resource {
	var out []Resource
	for _, d := range c.docs {
		data, err := fs.ReadFile(c.fsys, c.path(d))
		if err != nil {
			continue
		}
		out = append(out, Resource{
			Key:         d.Key,
			URI:         c.URI(d.Key),
			Name:        fmt.Sprintf("%s: %s", c.title, titleCase(d.Key)),
			Description: describe(d.Key, data),
			MIMEType:    MIMEType,
		})
	}
	return out
}

// Read returns the markdown of key.
func (c *Collection) Read(key string) (string, error) {
	d, ok := c.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, key)
	}
	data, err := fs.ReadFile(c.fsys, c.path(d))
	if err != nil {
		return "", fmt.Errorf("documentation file not found: %s: %w", d.File, err)
	}
	return string(data), nil
}

// ReadURI returns the markdown addressed by uri.
func (c *Collection) ReadURI(uri string) (string, error) {
	key, err := c.Key(uri)
	if err != nil {
		return "", err
	}
	return c.Read(key)
}

func (c *Collection) lookup(key string) (Document, bool) {
	for _, d := range c.docs {
		if d.Key == key {
			return d, true
		}
	}
	return Document{}, false
}

func (c *Collection) path(d Document) string {
	if c.dir == "" {
		return d.File
	}
	return path.Join(c.dir, d.File)
}

// describe returns the first line of data, or a generic label for an
// empty file.
func describe(key string, data []byte) string {
	if len(data) == 0 {
		return "Documentation: " + key
	}
	head := string(data[:min(len(data), descriptionWindow)])
	line, _, _ := strings.Cut(head, "\n")
	return strings.TrimRight(line, "\r")
}

// titleCase turns "start-here" into "Start Here".
func titleCase(key string) string {
	words := strings.Split(key, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
