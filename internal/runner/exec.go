package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Options configure how the runner executes the test command.
type Options struct {
	Root      string
	Dir       string
	Shell     string
	Stdout    io.Writer
	Stderr    io.Writer
	Verbose   bool
	TailLines int
	Env       []string
	ExtraEnv  map[string]string
	Logger    *slog.Logger
}

// Result describes one execution of the test command.
type Result struct {
	Command    string        `json:"command"`
	ExitCode   int           `json:"exit_code"`
	Stdout     string        `json:"-"`
	Stderr     string        `json:"stderr,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// Runner executes the command that produces cucumber results.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{opts: opts}
}

// Run executes command through a shell. Stdout is captured in full since it
// may carry the JSON results; stderr is trimmed to the last TailLines lines.
// A non-zero exit status is reported in Result.ExitCode because failing
// scenarios make most cucumber runners exit non-zero. Only a failure to start
// the command is returned as an error.
func (r *Runner) Run(ctx context.Context, command string) (Result, error) {
	result := Result{Command: command}
	if strings.TrimSpace(command) == "" {
		return result, errors.New("no command configured")
	}

	env := mergeEnv(r.opts.Env, r.opts.ExtraEnv)
	cmdArgs, err := commandArgs(r.opts.Shell, command, env)
	if err != nil {
		return result, err
	}

	workingDir, err := resolveWorkingDirectory(r.opts.Root, r.opts.Dir)
	if err != nil {
		return result, err
	}

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Dir = workingDir
	cmd.Env = env

	var stdoutBuf, stderrBuf strings.Builder
	if r.opts.Verbose {
		cmd.Stdout = io.MultiWriter(r.opts.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(r.opts.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	r.opts.Logger.Debug("running test command", "command", command, "dir", workingDir, "shell", cmdArgs[0])

	start := time.Now()
	err = cmd.Run()
	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()
	result.Stdout = stdoutBuf.String()
	result.Stderr = tailLines(stderrBuf.String(), r.opts.TailLines)
	result.ExitCode = exitCode(err)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("run %q: %w", command, err)
		}
		r.opts.Logger.Debug("test command exited non-zero", "exit_code", result.ExitCode)
	}
	r.opts.Logger.Debug("test command finished", "duration", result.Duration, "stdout_bytes", len(result.Stdout))
	return result, nil
}

func commandArgs(shellSpec string, script string, env []string) ([]string, error) {
	shellSpec = strings.TrimSpace(shellSpec)
	if shellSpec == "" {
		if runtime.GOOS == "windows" {
			return []string{"cmd", "/C", script}, nil
		}
		// A login shell picks up version managers such as asdf or rbenv.
		asdfInit := getAsdfInit(env, "bash")
		return []string{"bash", "-l", "-c", asdfInit + script}, nil
	}

	fields := strings.Fields(shellSpec)
	shell := fields[0]
	args := append([]string{}, fields[1:]...)
	base := strings.ToLower(filepath.Base(shell))

	switch base {
	case "bash", "zsh", "ksh":
		asdfInit := getAsdfInit(env, base)
		args = append(args, "-l", "-c", asdfInit+script)
		return append([]string{shell}, args...), nil
	case "sh":
		// sh may be dash, which has no -l.
		asdfInit := getAsdfInit(env, "sh")
		args = append(args, "-c", asdfInit+script)
		return append([]string{shell}, args...), nil
	case "cmd", "cmd.exe":
		args = append(args, "/C", script)
		return append([]string{shell}, args...), nil
	case "pwsh", "powershell", "powershell.exe":
		args = append(args, "-Command", script)
		return append([]string{shell}, args...), nil
	default:
		return nil, fmt.Errorf("unsupported shell %q", shellSpec)
	}
}

func resolveWorkingDirectory(root, dir string) (string, error) {
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return root, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("working directory %q not found", dir)
		}
		return "", fmt.Errorf("stat working directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %q is not a directory", dir)
	}
	return dir, nil
}

func mergeEnv(base []string, overlays ...map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if idx := strings.Index(kv, "="); idx != -1 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for _, overlay := range overlays {
		for k, v := range overlay {
			envMap[k] = v
		}
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return out
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 127
}

func tailLines(input string, maxLines int) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}

func getEnvValue(env []string, key string) string {
	for _, kv := range env {
		if idx := strings.Index(kv, "="); idx != -1 && kv[:idx] == key {
			return kv[idx+1:]
		}
	}
	return ""
}

func getAsdfInit(env []string, shellBase string) string {
	var asdfPath string
	if asdfDir := getEnvValue(env, "ASDF_DIR"); asdfDir != "" {
		asdfPath = filepath.Join(asdfDir, "asdf.sh")
		if _, err := os.Stat(asdfPath); err != nil {
			asdfPath = ""
		}
	}
	if asdfPath == "" {
		home := getEnvValue(env, "HOME")
		if home != "" {
			asdfPath = filepath.Join(home, ".asdf", "asdf.sh")
			if _, err := os.Stat(asdfPath); err != nil {
				asdfPath = ""
			}
		}
	}
	if asdfPath == "" {
		return ""
	}
	switch shellBase {
	case "bash", "zsh":
		return fmt.Sprintf("source %q && ", asdfPath)
	case "ksh", "sh":
		return fmt.Sprintf(". %q && ", asdfPath)
	default:
		return ""
	}
}
