package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bgricker/verdict/internal/status"
)

// FileName is the configuration file read from the working directory.
const FileName = ".verdict.yml"

// Config captures CLI options sourced from config files or flags.
type Config struct {
	Results []string `yaml:"results"`
	Tags    []string `yaml:"tags"`

	OnlyScenarios []string `yaml:"only_scenario"`
	SkipScenarios []string `yaml:"skip_scenario"`

	Format      string `yaml:"format"`
	Verbose     bool   `yaml:"verbose"`
	EvidenceDir string `yaml:"evidence_dir"`

	Command        string            `yaml:"command"`
	Shell          string            `yaml:"shell"`
	Dir            string            `yaml:"dir"`
	Env            map[string]string `yaml:"env"`
	CheckToolchain bool              `yaml:"check_toolchain"`

	FailOn FailOnConfig `yaml:"fail_on"`
}

// FailOnConfig selects which non-failure outcomes break the build.
type FailOnConfig struct {
	Skipped   bool `yaml:"skipped"`
	Pending   bool `yaml:"pending"`
	Undefined bool `yaml:"undefined"`
	Missing   bool `yaml:"missing"`
}

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Format: FormatPretty,
	}
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Load reads .verdict.yml from root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

// Policy resolves the escalation switches. It is the only input from
// configuration into verdict computation.
func (c Config) Policy() status.Policy {
	return status.Policy{
		SkippedFailsBuild:   c.FailOn.Skipped,
		PendingFailsBuild:   c.FailOn.Pending,
		UndefinedFailsBuild: c.FailOn.Undefined,
		MissingFailsBuild:   c.FailOn.Missing,
	}
}

// Validate reports configuration values that cannot be acted on.
func (c Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatPretty, FormatJSON:
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	return nil
}

func merge(base, override Config) Config {
	out := base

	if len(override.Results) > 0 {
		out.Results = append([]string{}, override.Results...)
	}
	if len(override.Tags) > 0 {
		out.Tags = append([]string{}, override.Tags...)
	}
	if len(override.OnlyScenarios) > 0 {
		out.OnlyScenarios = append([]string{}, override.OnlyScenarios...)
	}
	if len(override.SkipScenarios) > 0 {
		out.SkipScenarios = append([]string{}, override.SkipScenarios...)
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.EvidenceDir != "" {
		out.EvidenceDir = override.EvidenceDir
	}
	if override.Command != "" {
		out.Command = override.Command
	}
	if override.Shell != "" {
		out.Shell = override.Shell
	}
	if override.Dir != "" {
		out.Dir = override.Dir
	}
	if len(override.Env) > 0 {
		out.Env = make(map[string]string, len(override.Env))
		for k, v := range override.Env {
			out.Env[k] = v
		}
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.CheckToolchain {
		out.CheckToolchain = true
	}

	if override.FailOn.Skipped {
		out.FailOn.Skipped = true
	}
	if override.FailOn.Pending {
		out.FailOn.Pending = true
	}
	if override.FailOn.Undefined {
		out.FailOn.Undefined = true
	}
	if override.FailOn.Missing {
		out.FailOn.Missing = true
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if len(flags.Results.Values) > 0 {
		cfg.Results = append([]string{}, flags.Results.Values...)
	}
	if len(flags.Tags.Values) > 0 {
		cfg.Tags = append([]string{}, flags.Tags.Values...)
	}
	if len(flags.OnlyScenarios.Values) > 0 {
		cfg.OnlyScenarios = append([]string{}, flags.OnlyScenarios.Values...)
	}
	if len(flags.SkipScenarios.Values) > 0 {
		cfg.SkipScenarios = append([]string{}, flags.SkipScenarios.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.EvidenceDir.Set {
		cfg.EvidenceDir = flags.EvidenceDir.Value
	}
	if flags.Command.Set {
		cfg.Command = flags.Command.Value
	}
	if flags.Shell.Set {
		cfg.Shell = flags.Shell.Value
	}
	if flags.Dir.Set {
		cfg.Dir = flags.Dir.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.CheckToolchain.Set {
		cfg.CheckToolchain = flags.CheckToolchain.Value
	}
	if flags.SkippedFailsBuild.Set {
		cfg.FailOn.Skipped = flags.SkippedFailsBuild.Value
	}
	if flags.PendingFailsBuild.Set {
		cfg.FailOn.Pending = flags.PendingFailsBuild.Value
	}
	if flags.UndefinedFailsBuild.Set {
		cfg.FailOn.Undefined = flags.UndefinedFailsBuild.Value
	}
	if flags.MissingFailsBuild.Set {
		cfg.FailOn.Missing = flags.MissingFailsBuild.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Results       SliceFlag
	Tags          SliceFlag
	OnlyScenarios SliceFlag
	SkipScenarios SliceFlag
	Format        StringFlag
	EvidenceDir   StringFlag
	Command       StringFlag
	Shell         StringFlag
	Dir           StringFlag
	Verbose       BoolFlag

	CheckToolchain BoolFlag

	SkippedFailsBuild   BoolFlag
	PendingFailsBuild   BoolFlag
	UndefinedFailsBuild BoolFlag
	MissingFailsBuild   BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}
