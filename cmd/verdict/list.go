package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/verdict/internal/config"
	"github.com/bgricker/verdict/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List features and scenarios in the results",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	data, err := loadPipeline(root, cfg, logger)
	if err != nil {
		return err
	}

	filtered, err := applyFilters(data, cfg)
	if err != nil {
		return err
	}

	return renderList(cmd, cfg, filtered)
}

func renderList(cmd *cobra.Command, cfg config.Config, data pipelineData) error {
	warnings := collapseWarnings(data.warnings)

	switch cfg.Format {
	case config.FormatPretty:
		if len(data.features) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching features or scenarios")
		} else if err := output.NewPretty(cmd.OutOrStdout()).RenderList(data.features); err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), warnings)
	case config.FormatJSON:
		if err := output.NewJSON(cmd.OutOrStdout()).Render(output.ListReport(data.features, warnings)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
	return nil
}
