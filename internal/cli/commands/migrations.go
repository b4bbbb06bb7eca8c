package commands

import (
	"fmt"
	"log/slog"

	"github.com/truffle-sql/truffle/internal/cli/output"
	"github.com/truffle-sql/truffle/internal/loader"
	"github.com/truffle-sql/truffle/pkg/sim"
)

// fileReport is the analysis of one migration file.
type fileReport struct {
	Migration *loader.Migration
	Report    *sim.Report
}

// migrationRun is the analysis of one migrations path.
type migrationRun struct {
	Path  string
	Files []fileReport
}

// Statements counts the statements executed across all files.
func (m *migrationRun) Statements() int {
	n := 0
	for _, f := range m.Files {
		n += len(f.Report.Results)
	}
	return n
}

// Diagnostics flattens the diagnostics of every file, in file order.
func (m *migrationRun) Diagnostics() []output.FileDiagnostic {
	var out []output.FileDiagnostic
	for _, f := range m.Files {
		for _, d := range f.Report.Diagnostics() {
			out = append(out, output.FileDiagnostic{File: f.Migration.Path, Diagnostic: d})
		}
	}
	return out
}

// applyMigrations loads path and runs every file through s in order. A
// file with diagnostics does not stop the run; later files see the
// catalog as far as it was built.
func applyMigrations(s *sim.Simulator, path string, logger *slog.Logger) (*migrationRun, error) {
	migrations, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations from %s: %w", path, err)
	}

	run := &migrationRun{Path: path}
	for _, m := range migrations {
		rep := s.ExecuteSQL(m.SQL)
		logger.Debug("migration applied",
			slog.String("file", m.Path),
			slog.Int("statements", len(rep.Results)),
			slog.Bool("ok", rep.OK()))
		run.Files = append(run.Files, fileReport{Migration: m, Report: rep})
	}
	return run, nil
}

// loadCatalog builds a fresh Simulator from path. Diagnostics are written
// to the error stream; errors among them fail the load.
func loadCatalog(cc *CommandContext, path string) (*sim.Simulator, error) {
	s, err := cc.NewSimulator()
	if err != nil {
		return nil, err
	}
	run, err := applyMigrations(s, path, cc.Logger)
	if err != nil {
		return nil, err
	}
	errs := 0
	r := cc.Renderer
	for _, d := range run.Diagnostics() {
		_, _ = fmt.Fprintln(r.ErrWriter(), r.FormatDiagnostic(d.File, d.Diagnostic))
		if d.Severity.Rejects() {
			errs++
		}
	}
	if errs > 0 {
		return nil, fmt.Errorf("%s: %d error(s); run truffle check for details", path, errs)
	}
	return s, nil
}
