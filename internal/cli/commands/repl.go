package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/truffle-sql/truffle/internal/dag"
	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/sim"
)

const (
	replPrompt     = "truffle> "
	replContPrompt = "     ...> "
	historyFile    = ".truffle_history"
)

var dotCommands = []string{
	".help", ".tables", ".schema", ".constraints", ".deps", ".import", ".reset", ".exit", ".quit",
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL analyzer",
		Long: `Start an interactive session against an in-memory catalog.

Statements end with a semicolon and may span several lines. DDL changes
the session's catalog; queries print their output columns. Type .help for
the dot-commands.`,
		Example: `  # Start with an empty catalog
  truffle repl

  # Start with the configured migrations applied
  truffle repl --load`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, load)
		},
	}

	cmd.Flags().BoolVar(&load, "load", false, "Apply the configured migrations before starting")

	return cmd
}

func runREPL(cmd *cobra.Command, load bool) error {
	cc := NewCommandContext(cmd)
	s, err := cc.NewSimulator()
	if err != nil {
		return err
	}
	sess := newSession(cc, s)
	if load {
		sess.importPath(cc.Cfg.MigrationsDir)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(cc.Cfg.ProjectRoot, historyFile),
		AutoComplete:    sess.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cc.Renderer
	r.Printf("Truffle REPL (dialect: %s)\n", s.Dialect().Name)
	r.Println(r.Styles().Muted.Render("Type .help for commands, .quit to exit"))
	r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if err != nil {
			break
		}
		prompt, quit := sess.handleLine(line)
		if quit {
			break
		}
		rl.SetPrompt(prompt)
	}
	return nil
}

// session is the state of one REPL run. It is driven line by line.
type session struct {
	cc  *CommandContext
	sim *sim.Simulator
	buf strings.Builder
}

func newSession(cc *CommandContext, s *sim.Simulator) *session {
	return &session{cc: cc, sim: s}
}

// handleLine consumes one input line and returns the next prompt. quit is
// set by .exit and .quit.
func (s *session) handleLine(line string) (prompt string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return s.prompt(), false
	}
	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return replPrompt, s.dotCommand(line)
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return replContPrompt, false
	}
	sql := s.buf.String()
	s.buf.Reset()
	s.execute(sql)
	return replPrompt, false
}

func (s *session) prompt() string {
	if s.buf.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

func (s *session) execute(sql string) {
	r := s.cc.Renderer
	rep := s.sim.ExecuteSQL(sql)
	for _, res := range rep.Results {
		if len(res.Diagnostics) > 0 {
			s.printDiagnostics(res.Diagnostics.Error())
			continue
		}
		if len(res.Outputs) == 0 {
			r.Println(r.Styles().Success.Render(res.Kind))
			continue
		}
		rows := make([]table.Row, 0, len(res.Outputs))
		for _, o := range res.Outputs {
			rows = append(rows, table.Row{o.Name, o.Type.String()})
		}
		r.Table(table.Row{"Column", "Type"}, rows)
		if len(res.Inputs) > 0 {
			params := make([]string, len(res.Inputs))
			for i, p := range res.Inputs {
				params[i] = fmt.Sprintf("%s %s", p.Text, p.Type)
			}
			r.Println(r.Styles().Muted.Render("inputs: " + strings.Join(params, ", ")))
		}
	}
	if rep.Syntax != nil {
		s.printDiagnostics(rep.Syntax.String())
	}
}

func (s *session) printDiagnostics(text string) {
	r := s.cc.Renderer
	for _, line := range strings.Split(text, "\n") {
		r.Println(r.Styles().Error.Render(line))
	}
}

// dotCommand runs a dot-command and reports whether the REPL should exit.
func (s *session) dotCommand(line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		s.listTables()

	case ".schema":
		if len(args) == 0 {
			for _, t := range s.sim.Catalog().Tables() {
				renderTable(r, t)
			}
			return false
		}
		if t, ok := s.lookup(args[0]); ok {
			renderTable(r, t)
		}

	case ".constraints":
		if len(args) != 1 {
			r.Warnf("Usage: .constraints <table>")
			return false
		}
		if t, ok := s.lookup(args[0]); ok {
			renderConstraints(s.cc, t)
		}

	case ".deps":
		if len(args) != 1 {
			r.Warnf("Usage: .deps <table>")
			return false
		}
		if t, ok := s.lookup(args[0]); ok {
			s.showDeps(t.Name)
		}

	case ".import":
		if len(args) != 1 {
			r.Warnf("Usage: .import <path>")
			return false
		}
		s.importPath(args[0])

	case ".reset":
		s.sim.Reset()
		r.Println(r.Styles().Success.Render("catalog reset"))

	default:
		r.Warnf("Unknown command: %s (type .help for commands)", command)
	}
	return false
}

func (s *session) lookup(name string) (*catalog.Table, bool) {
	t, ok := s.sim.Catalog().LookupTable(name)
	if !ok {
		s.cc.Renderer.Warnf("no such table: %s", name)
	}
	return t, ok
}

func (s *session) listTables() {
	r := s.cc.Renderer
	tables := s.sim.Catalog().Tables()
	if len(tables) == 0 {
		r.Println(r.Styles().Muted.Render("no tables"))
		return
	}
	rows := make([]table.Row, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, table.Row{t.Name, len(t.Columns), strings.Join(s.sim.Catalog().Referencing(t.Name), ", ")})
	}
	r.Table(table.Row{"Table", "Columns", "Referenced by"}, rows)
}

func (s *session) showDeps(name string) {
	r := s.cc.Renderer
	g := dag.FromCatalog(s.sim.Catalog())
	list := func(names []string) string {
		if len(names) == 0 {
			return r.Styles().Muted.Render("none")
		}
		return strings.Join(names, ", ")
	}
	r.Printf("%s %s\n", r.Styles().Bold.Render("depends on:"), list(g.Dependencies(name)))
	r.Printf("%s %s\n", r.Styles().Bold.Render("required by:"), list(g.Dependents(name)))
}

func (s *session) importPath(path string) {
	r := s.cc.Renderer
	run, err := applyMigrations(s.sim, path, s.cc.Logger)
	if err != nil {
		r.Warnf("Error: %v", err)
		return
	}
	for _, d := range run.Diagnostics() {
		r.Println(r.FormatDiagnostic(d.File, d.Diagnostic))
	}
	r.Println(r.Styles().Muted.Render(fmt.Sprintf("imported %d file(s), %d statement(s)", len(run.Files), run.Statements())))
}

// completer completes dot-commands and table names. Table names are read
// from the live catalog on every request.
func (s *session) completer() *readline.PrefixCompleter {
	tables := func(string) []string {
		ts := s.sim.Catalog().Tables()
		names := make([]string, len(ts))
		for i, t := range ts {
			names[i] = t.Name
		}
		return names
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(dotCommands)+1)
	for _, c := range dotCommands {
		switch c {
		case ".schema", ".constraints", ".deps":
			items = append(items, readline.PcItem(c, readline.PcItemDynamic(tables)))
		default:
			items = append(items, readline.PcItem(c))
		}
	}
	items = append(items, readline.PcItemDynamic(tables))
	return readline.NewPrefixCompleter(items...)
}

func renderConstraints(cc *CommandContext, t *catalog.Table) {
	r := cc.Renderer
	var rows []table.Row
	for _, k := range t.Keys {
		kind := "UNIQUE"
		if k.Primary {
			kind = "PRIMARY KEY"
		}
		rows = append(rows, table.Row{kind, strings.Join(k.Columns, ", "), "", "", ""})
	}
	for _, fk := range t.ForeignKeys {
		ref := fmt.Sprintf("%s (%s)", fk.RefTable, strings.Join(fk.RefColumns, ", "))
		rows = append(rows, table.Row{"FOREIGN KEY", strings.Join(fk.Columns, ", "), ref, fk.OnDelete, fk.OnUpdate})
	}
	if len(rows) == 0 {
		r.Println(r.Styles().Muted.Render("no constraints on " + t.Name))
		return
	}
	r.Table(table.Row{"Constraint", "Columns", "References", "On delete", "On update"}, rows)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                 Show this help message
  .tables               List all tables
  .schema [table]       Show the columns of one or all tables
  .constraints <table>  Show keys and foreign keys of a table
  .deps <table>         Show the tables a table depends on and is required by
  .import <path>        Run a .sql file or migrations directory
  .reset                Drop every table
  .quit / .exit         Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names and dot-commands
`
	_, _ = fmt.Fprintln(w, help)
}
