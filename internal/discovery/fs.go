package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoResults indicates that no result files were found during discovery.
var ErrNoResults = errors.New("no result files discovered")

// DefaultGlobs are searched, relative to the root, when no explicit paths are given.
var DefaultGlobs = []string{
	filepath.Join("target", "cucumber*.json"),
	filepath.Join("target", "cucumber-reports", "*.json"),
	"cucumber*.json",
}

// Results returns cucumber JSON result paths. Explicit paths are validated and
// returned in the order given; explicit directories expand to the JSON files
// they contain. Without explicit paths the DefaultGlobs are used and results
// are sorted lexicographically.
func Results(root string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return resolveExplicit(root, explicit)
	}

	matches := make(map[string]struct{})
	for _, glob := range DefaultGlobs {
		pattern := filepath.Join(root, glob)
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range found {
			matches[m] = struct{}{}
		}
	}

	if len(matches) == 0 {
		return nil, ErrNoResults
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, mustRelOrClean(root, p))
	}
	sort.Strings(paths)

	return paths, nil
}

func resolveExplicit(root string, explicit []string) ([]string, error) {
	seen := make(map[string]struct{})
	resolved := make([]string, 0, len(explicit))
	add := func(path string) {
		rel := mustRelOrClean(root, path)
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		resolved = append(resolved, rel)
	}

	for _, input := range explicit {
		cleaned := input
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(root, cleaned)
		}
		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("results %q not found", input)
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if !info.IsDir() {
			add(cleaned)
			continue
		}
		found, err := filepath.Glob(filepath.Join(cleaned, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", input, err)
		}
		sort.Strings(found)
		for _, m := range found {
			add(m)
		}
	}
	if len(resolved) == 0 {
		return nil, ErrNoResults
	}
	return resolved, nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
