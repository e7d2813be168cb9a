// Package evidence links captured screenshots to failed scenarios.
package evidence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/status"
)

// Extensions are tried in order for each candidate name.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Attach looks in dir for an image named after each failed element and sets
// it as the element's image path. Candidates are the slug of the element id,
// then the slug of its name. Elements that already carry an image are left
// alone. It returns the number of images attached. An empty dir disables
// attachment.
func Attach(features []*report.Feature, dir string, p status.Policy) (int, error) {
	if dir == "" {
		return 0, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("evidence directory %q not found", dir)
		}
		return 0, fmt.Errorf("stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("evidence path %q is not a directory", dir)
	}

	attached := 0
	for _, feature := range features {
		for _, el := range feature.Elements() {
			if el.Status(p) != status.Failed || el.ImagePath() != "" {
				continue
			}
			path, ok := find(dir, el)
			if !ok {
				continue
			}
			if err := el.SetImagePath(path); err != nil {
				if errors.Is(err, report.ErrImagePathSet) {
					continue
				}
				return attached, err
			}
			attached++
		}
	}
	return attached, nil
}

func find(dir string, el *report.Element) (string, bool) {
	for _, base := range []string{Slug(el.ID()), Slug(el.Name())} {
		if base == "" {
			continue
		}
		for _, ext := range Extensions {
			candidate := filepath.Join(dir, base+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// Slug converts a scenario id or name into a file name stem: accents are
// removed, letters lowercased and runs of other characters collapsed to "-".
func Slug(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
