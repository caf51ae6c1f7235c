package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/frontend/analyzer"
	"martianoff/kera/internal/frontend/diag"
	"martianoff/kera/internal/parser"
	"martianoff/kera/internal/srcfetch"
)

var (
	checkSigil   string
	checkWorkers int
	checkGit     string
	checkGitRef  string
)

var checkCmd = &cobra.Command{
	Use:   "check [file.kera | dir]",
	Short: "Resolve every member call in KERA units",
	Long: `Check parses KERA declaration units, resolves every member call,
and reports a diagnostic for each call that does not resolve to exactly
one target.

Examples:
  kera check main.kera                   # Check one unit
  kera check ./pkg                       # Check every .kera unit in a directory
  kera check --from-git URL --ref v1.0   # Check units from a git repository
  kera check --sigil paren main.kera     # Accept (Cap)::m() instead of <Cap>::m()`,
	Args: cobra.ArbitraryArgs,
	Run:  runCheck,
}

func init() {
	addPipelineFlags(checkCmd)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkSigil, "sigil", "angle", "Capability bracket style: angle or paren")
	cmd.Flags().IntVar(&checkWorkers, "workers", 0, "Resolution worker count (0 = number of CPUs)")
	cmd.Flags().StringVar(&checkGit, "from-git", "", "Git repository URL to load units from")
	cmd.Flags().StringVar(&checkGitRef, "ref", "", "Git branch, tag, or commit for --from-git")
}

func runCheck(cmd *cobra.Command, args []string) {
	resolutions, reporter, clean := runPipeline(args)
	if reporter == nil {
		os.Exit(1)
	}

	diags := reporter.ReportAll(resolutions)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if !clean || len(diags) > 0 {
		os.Exit(1)
	}
	fmt.Printf("ok: %d call(s) resolved\n", len(resolutions))
}

// runPipeline loads sources, builds the pipeline per the shared flags, and
// resolves all calls. Syntax and declaration errors are printed here; a nil
// reporter means the pipeline could not run at all, and clean reports
// whether it ran without declaration errors.
func runPipeline(args []string) (resolutions []frontend.Resolution, reporter *diag.Reporter, clean bool) {
	sigil, err := parseSigil(checkSigil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return nil, nil, false
	}

	sources, err := loadSources(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return nil, nil, false
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input units specified")
		return nil, nil, false
	}

	p := parser.NewKeraParserWithOptions(parser.Options{CapabilitySigil: sigil})
	fe := frontend.New(p, analyzer.NewKeraAnalyzerWithWorkers(checkWorkers))
	resolutions, err = fe.Check(sources...)
	clean = err == nil
	if err != nil {
		// Resolutions may still carry useful diagnostics; keep going.
		fmt.Fprintln(os.Stderr, err)
	}
	return resolutions, diag.NewReporter(sigil), clean
}

func parseSigil(name string) (parser.Sigil, error) {
	switch name {
	case "angle", "":
		return parser.SigilAngle, nil
	case "paren":
		return parser.SigilParen, nil
	}
	return parser.SigilAngle, fmt.Errorf("unknown sigil %q (want angle or paren)", name)
}

func loadSources(args []string) ([]string, error) {
	var sources []string

	if checkGit != "" {
		loader, err := srcfetch.NewLoader()
		if err != nil {
			return nil, err
		}
		fetched, err := loader.LoadGit(checkGit, checkGitRef)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fetched...)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", arg, err)
		}
		if info.IsDir() {
			loaded, err := srcfetch.LoadDir(arg)
			if err != nil {
				return nil, err
			}
			sources = append(sources, loaded...)
			continue
		}
		content, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", arg, err)
		}
		sources = append(sources, string(content))
	}
	return sources, nil
}
