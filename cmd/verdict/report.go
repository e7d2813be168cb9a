package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bgricker/verdict/internal/config"
	"github.com/bgricker/verdict/internal/evidence"
	"github.com/bgricker/verdict/internal/output"
	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/runner"
	"github.com/bgricker/verdict/internal/status"
)

// errBuildFailed is returned when the run verdict is Failed.
var errBuildFailed = errors.New("build failed")

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Compute and render the verdict for cucumber results",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	data, err := loadPipeline(root, cfg, logger)
	if err != nil {
		return err
	}

	return renderVerdict(cmd, cfg, data, nil, logger)
}

// renderVerdict filters data, attaches evidence, and renders the verdict.
// The command result, when present, is included in JSON output.
func renderVerdict(cmd *cobra.Command, cfg config.Config, data pipelineData, command *runner.Result, logger *slog.Logger) error {
	filtered, err := applyFilters(data, cfg)
	if err != nil {
		return err
	}

	policy := cfg.Policy()
	attached, err := evidence.Attach(filtered.features, cfg.EvidenceDir, policy)
	if err != nil {
		return err
	}
	if attached > 0 {
		logger.Debug("attached evidence", "count", attached, "dir", cfg.EvidenceDir)
	}

	summary := report.Summarize(filtered.features, policy)
	logger.Debug("computed verdict", "verdict", summary.Verdict, "features", summary.TotalFeatures, "scenarios", summary.TotalScenarios)
	warnings := collapseWarnings(filtered.warnings)

	switch cfg.Format {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderReport(filtered.features, summary, policy); err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), warnings)
	case config.FormatJSON:
		rep := output.VerdictReport(filtered.features, summary, policy, warnings)
		rep.Command = command
		if err := output.NewJSON(cmd.OutOrStdout()).Render(rep); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if summary.Verdict == status.Failed {
		return fmt.Errorf("%w: %d of %d scenarios failed", errBuildFailed, summary.FailedScenarios, summary.TotalScenarios)
	}
	return nil
}
