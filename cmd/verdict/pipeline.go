package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/verdict/internal/config"
	"github.com/bgricker/verdict/internal/cucumber"
	"github.com/bgricker/verdict/internal/discovery"
	"github.com/bgricker/verdict/internal/filter"
	"github.com/bgricker/verdict/internal/report"
)

// pipelineData bundles decoded features with their warnings.
type pipelineData struct {
	features []*report.Feature
	warnings []cucumber.Warning
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	cfg.Format = strings.ToLower(cfg.Format)

	return cfg, root, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadPipeline(root string, cfg config.Config, logger *slog.Logger) (pipelineData, error) {
	paths, err := discovery.Results(root, cfg.Results)
	if err != nil {
		if errors.Is(err, discovery.ErrNoResults) {
			return pipelineData{}, fmt.Errorf("no cucumber results found; specify --results to provide files")
		}
		return pipelineData{}, err
	}
	logger.Debug("discovered results", "count", len(paths), "paths", paths)

	parsed, err := cucumber.NewParser(root).Parse(paths)
	if err != nil {
		return pipelineData{}, err
	}
	return pipelineData{features: parsed.Features, warnings: parsed.Warnings}, nil
}

func decodePipeline(r io.Reader, source string) (pipelineData, error) {
	parsed, err := cucumber.Decode(r, source)
	if err != nil {
		return pipelineData{}, err
	}
	return pipelineData{features: parsed.Features, warnings: parsed.Warnings}, nil
}

func applyFilters(data pipelineData, cfg config.Config) (pipelineData, error) {
	tagPatterns, err := filter.Compile(cfg.Tags)
	if err != nil {
		return pipelineData{}, err
	}
	onlyPatterns, err := filter.Compile(cfg.OnlyScenarios)
	if err != nil {
		return pipelineData{}, err
	}
	skipPatterns, err := filter.Compile(cfg.SkipScenarios)
	if err != nil {
		return pipelineData{}, err
	}

	filtered := filter.FilterFeatures(data.features, tagPatterns, onlyPatterns, skipPatterns)
	return pipelineData{features: filtered, warnings: data.warnings}, nil
}

func collapseWarnings(warnings []cucumber.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, fmt.Sprintf("%s:%s: %s", w.File, w.Scenario, w.Message))
	}
	return out
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}
