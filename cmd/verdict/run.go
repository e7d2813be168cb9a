package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/verdict/internal/cucumber"
	"github.com/bgricker/verdict/internal/runner"
	"github.com/bgricker/verdict/internal/toolchain"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- command...]",
		Short: "Run the cucumber command, then compute the verdict",
		Long: `Run executes the configured test command through a shell and computes the
verdict from its results. Results are read from --results when given, and
from the command's standard output otherwise.`,
		RunE: runExecute,
	}
	cmd.Flags().String("command", "", "test command producing cucumber JSON")
	cmd.Flags().String("shell", "", "shell used to run the command (bash|zsh|sh|pwsh|cmd)")
	cmd.Flags().String("dir", "", "working directory for the command, relative to the project root")
	cmd.Flags().Bool("check-toolchain", false, "warn when .ruby-version or .node-version does not match the installed runtime")
	return cmd
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Command = strings.Join(args, " ")
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := cmd.Context()

	var toolWarnings []cucumber.Warning
	if cfg.CheckToolchain {
		for _, m := range toolchain.NewChecker(root).Check(ctx) {
			toolWarnings = append(toolWarnings, cucumber.Warning{File: m.File, Message: m.Message})
		}
	}

	execRunner := runner.New(runner.Options{
		Root:     root,
		Dir:      cfg.Dir,
		Shell:    cfg.Shell,
		Stdout:   cmd.ErrOrStderr(),
		Stderr:   cmd.ErrOrStderr(),
		Verbose:  cfg.Verbose,
		ExtraEnv: cfg.Env,
		Logger:   logger,
	})
	result, err := execRunner.Run(ctx, cfg.Command)
	if err != nil {
		return err
	}

	var data pipelineData
	if len(cfg.Results) > 0 {
		data, err = loadPipeline(root, cfg, logger)
	} else {
		data, err = decodePipeline(strings.NewReader(result.Stdout), "stdout")
	}
	if err != nil {
		return err
	}
	if len(data.features) == 0 && result.ExitCode != 0 {
		msg := fmt.Sprintf("command %q exited %d without producing results", result.Command, result.ExitCode)
		if result.Stderr != "" {
			msg += ":\n" + result.Stderr
		}
		return errors.New(msg)
	}
	data.warnings = append(toolWarnings, data.warnings...)

	return renderVerdict(cmd, cfg, data, &result, logger)
}
