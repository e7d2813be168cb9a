package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/verdict/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	slices := []struct {
		name string
		dst  *config.SliceFlag
	}{
		{"results", &values.Results},
		{"tag", &values.Tags},
		{"only-scenario", &values.OnlyScenarios},
		{"skip-scenario", &values.SkipScenarios},
	}
	for _, s := range slices {
		if !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetStringArray(s.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", s.name, err)
		}
		*s.dst = config.SliceFlag{Values: append([]string{}, v...)}
	}

	strs := []struct {
		name string
		dst  *config.StringFlag
	}{
		{"format", &values.Format},
		{"evidence-dir", &values.EvidenceDir},
		{"command", &values.Command},
		{"shell", &values.Shell},
		{"dir", &values.Dir},
	}
	for _, s := range strs {
		if flags.Lookup(s.name) == nil || !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", s.name, err)
		}
		*s.dst = config.StringFlag{Value: v, Set: true}
	}

	bools := []struct {
		name string
		dst  *config.BoolFlag
	}{
		{"verbose", &values.Verbose},
		{"check-toolchain", &values.CheckToolchain},
		{"skipped-fails-build", &values.SkippedFailsBuild},
		{"pending-fails-build", &values.PendingFailsBuild},
		{"undefined-fails-build", &values.UndefinedFailsBuild},
		{"missing-fails-build", &values.MissingFailsBuild},
	}
	for _, b := range bools {
		if flags.Lookup(b.name) == nil || !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", b.name, err)
		}
		*b.dst = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}
