package browser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var deployedURLPattern = regexp.MustCompile(`https://[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*\.run\.app/?`)

// FindDeployedURL returns the first Cloud Run URL in rawHTML. Link targets
// are searched before text so a rendered "Open app" link wins over URLs in
// log output.
func FindDeployedURL(rawHTML string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		if m := deployedURLPattern.FindString(rawHTML); m != "" {
			return m, true
		}
		return "", false
	}

	var fromHref, fromText string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if fromHref != "" {
			return
		}
		switch n.Type {
		case html.ElementNode:
			if isSkippedElement(n.Data) {
				return
			}
			if n.Data == "a" {
				for _, attr := range n.Attr {
					if attr.Key == "href" {
						if m := deployedURLPattern.FindString(attr.Val); m != "" {
							fromHref = m
							return
						}
					}
				}
			}
		case html.TextNode:
			if fromText == "" {
				fromText = deployedURLPattern.FindString(n.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if fromHref != "" {
		return fromHref, true
	}
	return fromText, fromText != ""
}

// PageDigest is a compact text rendering of a page for diagnostics.
type PageDigest struct {
	Title string
	Text  string
}

// Digest extracts the title and visible text of rawHTML, truncated to
// maxLength bytes of text.
func Digest(rawHTML string, maxLength int) (PageDigest, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return PageDigest{}, err
	}

	var d PageDigest
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if b.Len() >= maxLength {
			return
		}
		if n.Type == html.ElementNode {
			if n.Data == "title" && n.FirstChild != nil && d.Title == "" {
				d.Title = strings.TrimSpace(n.FirstChild.Data)
				return
			}
			if isSkippedElement(n.Data) {
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	d.Text = b.String()
	if len(d.Text) > maxLength {
		d.Text = d.Text[:maxLength]
	}
	return d, nil
}

func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "svg", "template":
		return true
	}
	return false
}
