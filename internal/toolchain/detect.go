package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Runtime describes a language runtime that hosts a cucumber implementation
// and the version file a project uses to pin it.
type Runtime struct {
	Name        string
	VersionFile string
	Command     []string
	Pattern     *regexp.Regexp
}

// Runtimes lists the runtimes checked before running the test command:
// cucumber-ruby and cucumber-js.
var Runtimes = []Runtime{
	{
		Name:        "ruby",
		VersionFile: ".ruby-version",
		Command:     []string{"ruby", "-v"},
		Pattern:     regexp.MustCompile(`(?i)ruby\s+(\d+\.\d+(?:\.\d+)?)`),
	},
	{
		Name:        "node",
		VersionFile: ".node-version",
		Command:     []string{"node", "-v"},
		Pattern:     regexp.MustCompile(`(?i)v?(\d+\.\d+(?:\.\d+)?)`),
	},
}

// Probe runs a version command and returns its combined output.
type Probe func(ctx context.Context, name string, args ...string) (string, error)

// Checker compares pinned runtime versions against installed ones.
type Checker struct {
	Root     string
	Runtimes []Runtime
	Probe    Probe
}

// NewChecker returns a Checker for root using the default runtimes.
func NewChecker(root string) *Checker {
	return &Checker{Root: root, Runtimes: Runtimes, Probe: execProbe}
}

// Mismatch is a pinned runtime that is missing or differs from the installed one.
type Mismatch struct {
	File    string
	Message string
}

// Check returns one Mismatch per pinned runtime that does not match. Runtimes
// without a version file are ignored.
func (c *Checker) Check(ctx context.Context) []Mismatch {
	var out []Mismatch
	for _, rt := range c.Runtimes {
		contents, err := os.ReadFile(filepath.Join(c.Root, rt.VersionFile))
		if err != nil {
			continue
		}
		required := strings.TrimSpace(string(contents))
		if required == "" {
			continue
		}
		installed, detectErr := c.Detect(ctx, rt)
		if msg := describe(rt, required, installed, detectErr); msg != "" {
			out = append(out, Mismatch{File: rt.VersionFile, Message: msg})
		}
	}
	return out
}

// Detect returns the installed version of rt.
func (c *Checker) Detect(ctx context.Context, rt Runtime) (string, error) {
	probe := c.Probe
	if probe == nil {
		probe = execProbe
	}
	out, err := probe(ctx, rt.Command[0], rt.Command[1:]...)
	if err != nil {
		return "", err
	}
	match := rt.Pattern.FindStringSubmatch(out)
	if len(match) < 2 {
		return "", fmt.Errorf("unable to parse %s version from %q", rt.Name, out)
	}
	return match[1], nil
}

func describe(rt Runtime, required, installed string, detectErr error) string {
	if detectErr != nil {
		if Missing(detectErr) {
			return fmt.Sprintf("%s executable not found; required %s", rt.Name, required)
		}
		return fmt.Sprintf("unable to detect %s version: %v", rt.Name, detectErr)
	}
	if !CompareMajorMinor(required, installed) {
		return fmt.Sprintf("%s version mismatch: required %s (from %s) but found %s", rt.Name, required, rt.VersionFile, installed)
	}
	return ""
}

func execProbe(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// CompareMajorMinor reports whether two versions share major.minor. A version
// pinned as "ruby-3.2.2" compares on "3.2".
func CompareMajorMinor(desired, actual string) bool {
	d := semverPrefix(desired)
	a := semverPrefix(actual)
	if d == "" || a == "" {
		return false
	}
	return strings.EqualFold(d, a)
}

func semverPrefix(version string) string {
	version = strings.TrimLeft(strings.TrimSpace(version), "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-")
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return ""
	}
	return fmt.Sprintf("%s.%s", parts[0], parts[1])
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
