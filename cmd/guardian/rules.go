package main

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/guardian/internal/config"
	"github.com/dusk-indust/guardian/internal/rules"
)

func newRulesCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the loaded rule registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			reg, err := loadRegistry(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range reg.Rules() {
				langs := "all"
				if len(r.Languages) > 0 {
					parts := make([]string, len(r.Languages))
					for i, l := range r.Languages {
						parts[i] = string(l)
					}
					langs = strings.Join(parts, ",")
				}
				fmt.Fprintf(out, "%-24s %-13s %-8s %s\n", r.ID, r.Category, r.Severity, langs)
				fmt.Fprintf(out, "%24s %s\n", "", r.Description)
			}
			fmt.Fprintf(out, "\n%d rules loaded\n", reg.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", ".", "directory holding guardian.yml")
	return cmd
}

// loadRegistry loads the builtin catalogue plus any configured extra
// rule files.
func loadRegistry(cfg *config.Config) (*rules.Registry, error) {
	reg, err := rules.LoadBuiltin()
	if err != nil {
		return nil, err
	}
	for _, path := range cfg.RuleFiles {
		if err := reg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildEngine assembles the rule engine from configuration.
func buildEngine(cfg *config.Config, logger hclog.Logger) (*rules.Engine, error) {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(reg, cfg.EngineOptions(), logger), nil
}
