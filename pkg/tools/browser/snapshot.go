package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot captures a screenshot and a text digest of page into dir for
// post-mortem inspection. It returns the screenshot path. Digest failures
// are ignored; the screenshot is the primary artifact.
func Snapshot(page Page, dir, name string) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	base := filepath.Join(dir, fmt.Sprintf("%s-%s", name, stamp))

	shot := base + ".png"
	if err := page.Screenshot(shot); err != nil {
		return "", err
	}

	if content, err := page.Content(); err == nil {
		if d, err := Digest(content, 20000); err == nil {
			text := fmt.Sprintf("URL: %s\nTitle: %s\n\n%s\n", page.URL(), d.Title, d.Text)
			_ = os.WriteFile(base+".txt", []byte(text), 0600)
		}
	}
	return shot, nil
}
