// Package config loads run configuration from guardian.yml. Missing
// files fall back to defaults; invalid values are fatal at startup,
// before any file is analyzed.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/guardian/internal/rules"
)

// Config holds the options the analysis core recognizes. Exclude
// patterns are applied by the scanner, not the core.
type Config struct {
	Extensions          []string `yaml:"extensions,omitempty"`
	ExcludePatterns     []string `yaml:"exclude_patterns,omitempty"`
	ComplexityThreshold int      `yaml:"complexity_threshold,omitempty"`
	SeverityFilter      string   `yaml:"severity_filter,omitempty"`
	Workers             int      `yaml:"workers,omitempty"`
	RuleFiles           []string `yaml:"rule_files,omitempty"`
	TextMatchWindow     int      `yaml:"text_match_window,omitempty"`
	NestingThreshold    int      `yaml:"nesting_threshold,omitempty"`
	LongFunctionLines   int      `yaml:"long_function_lines,omitempty"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Extensions: []string{
			".py", ".js", ".jsx", ".mjs", ".ts", ".tsx",
			".java", ".cpp", ".cc", ".cxx", ".hpp", ".h",
		},
		ComplexityThreshold: 10,
		SeverityFilter:      "INFO",
		TextMatchWindow:     3,
		NestingThreshold:    4,
		LongFunctionLines:   50,
	}
}

// Load reads guardian.yml or guardian.yaml from dir, layered over the
// defaults. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()
	for _, name := range []string{"guardian.yml", "guardian.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would silently distort scores.
func (c *Config) Validate() error {
	if c.ComplexityThreshold < 1 {
		return fmt.Errorf("complexity_threshold must be >= 1, got %d", c.ComplexityThreshold)
	}
	if c.TextMatchWindow < 1 {
		return fmt.Errorf("text_match_window must be >= 1, got %d", c.TextMatchWindow)
	}
	if c.NestingThreshold < 1 {
		return fmt.Errorf("nesting_threshold must be >= 1, got %d", c.NestingThreshold)
	}
	if c.LongFunctionLines < 1 {
		return fmt.Errorf("long_function_lines must be >= 1, got %d", c.LongFunctionLines)
	}
	if _, err := rules.ParseSeverity(c.SeverityFilter); err != nil {
		return fmt.Errorf("severity_filter: %w", err)
	}
	return nil
}

// MinSeverity resolves the severity filter. Validate has already
// guaranteed it parses.
func (c *Config) MinSeverity() rules.Severity {
	s, _ := rules.ParseSeverity(c.SeverityFilter)
	return s
}

// EngineOptions maps config values onto engine options.
func (c *Config) EngineOptions() rules.Options {
	return rules.Options{
		TextWindow:        c.TextMatchWindow,
		NestingThreshold:  c.NestingThreshold,
		LongFunctionLines: c.LongFunctionLines,
	}
}
