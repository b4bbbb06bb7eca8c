package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/truffle-sql/truffle/internal/cli/output"
)

// checkResult is the machine-readable output of check.
type checkResult struct {
	Files       int                     `json:"files" yaml:"files"`
	Statements  int                     `json:"statements" yaml:"statements"`
	Diagnostics []output.FileDiagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "check [paths...]",
		Aliases: []string{"validate"},
		Short:   "Analyze migration files",
		Long: `Analyze SQL files against an in-memory catalog.

Each path is a .sql file or a migrations directory and is analyzed on its
own: statements in a path see the schema built by the statements before
them. Without arguments the configured migrations directory is checked.

The command exits with status 1 when any diagnostic is produced.`,
		Example: `  # Check the configured migrations directory
  truffle check

  # Check two independent directories as sqlite
  truffle check --dialect sqlite db/app db/analytics

  # Machine-readable output
  truffle check --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format (text|json|yaml), overrides --output")

	return cmd
}

func runCheck(cmd *cobra.Command, paths []string, format string) error {
	cc := NewCommandContext(cmd)
	if err := cc.WithFormat(cmd, format); err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{cc.Cfg.MigrationsDir}
	}

	runs := make([]*migrationRun, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			s, err := cc.NewSimulator()
			if err != nil {
				return err
			}
			run, err := applyMigrations(s, path, cc.Logger)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res := checkResult{Diagnostics: []output.FileDiagnostic{}}
	for _, run := range runs {
		res.Files += len(run.Files)
		res.Statements += run.Statements()
		res.Diagnostics = append(res.Diagnostics, run.Diagnostics()...)
	}

	r := cc.Renderer
	handled, err := r.Structured(res)
	if err != nil {
		return err
	}
	if !handled {
		for _, d := range res.Diagnostics {
			r.Println(r.FormatDiagnostic(d.File, d.Diagnostic))
		}
		summary := fmt.Sprintf("%d file(s), %d statement(s), %d diagnostic(s)",
			res.Files, res.Statements, len(res.Diagnostics))
		if len(res.Diagnostics) == 0 {
			r.Println(r.Styles().Success.Render("ok: " + summary))
		} else {
			r.Println(r.Styles().Muted.Render(summary))
		}
	}

	if n := len(res.Diagnostics); n > 0 {
		return fmt.Errorf("check found %d diagnostic(s)", n)
	}
	return nil
}
