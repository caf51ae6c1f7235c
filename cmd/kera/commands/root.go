// Package commands provides the CLI commands for the kera tool.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kera [file.kera]",
	Short: "KERA call-resolution frontend",
	Long: `KERA resolves member calls with explicit capability disambiguation.

This tool provides:
  - Resolution checking of KERA declaration units (kera check)
  - Desugaring of resolved calls to canonical static-call form (kera desugar)

Usage:
  kera file.kera                Check a KERA file (shorthand)
  kera check dir/               Check every .kera unit in a directory
  kera desugar file.kera        Print the canonical form of each call
  kera version                  Print version`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	// Run check by default if a .kera file is provided as argument
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && strings.HasSuffix(args[0], ".kera") {
			runCheck(cmd, args)
			return nil
		}
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("unknown command %q for \"kera\"\nRun 'kera --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(desugarCmd)
	rootCmd.AddCommand(versionCmd)
}
