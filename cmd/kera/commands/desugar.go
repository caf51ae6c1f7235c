package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"martianoff/kera/internal/frontend/desugar"
)

var desugarCmd = &cobra.Command{
	Use:   "desugar [file.kera | dir]",
	Short: "Print the canonical static-call form of every resolved call",
	Long: `Desugar resolves every member call and prints its canonical
qualified static-call form, one per line. Calls that fail to resolve are
reported as diagnostics on stderr.

Example:
  kera desugar main.kera`,
	Args: cobra.ArbitraryArgs,
	Run:  runDesugar,
}

func init() {
	addPipelineFlags(desugarCmd)
}

func runDesugar(cmd *cobra.Command, args []string) {
	resolutions, reporter, clean := runPipeline(args)
	if reporter == nil {
		os.Exit(1)
	}

	failed := !clean
	for _, res := range resolutions {
		if d, bad := reporter.Report(res); bad {
			fmt.Fprintln(os.Stderr, d)
			failed = true
			continue
		}
		fmt.Println(desugar.Desugar(*res.Result.Target, res.Site.Intent))
	}
	if failed {
		os.Exit(1)
	}
}
