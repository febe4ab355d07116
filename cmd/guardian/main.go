package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "guardian [command]",
		Short:         "guardian analyzes source code for vulnerabilities, bug patterns, and complexity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(newScanCmd(), newRulesCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
