package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/truffle-sql/truffle/internal/cli/output"
	"github.com/truffle-sql/truffle/internal/dag"
	"github.com/truffle-sql/truffle/pkg/catalog"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var (
		diffDir string
		order   bool
	)

	cmd := &cobra.Command{
		Use:   "schema [path]",
		Short: "Show the schema built by the migrations",
		Long: `Load the migrations and print the resulting catalog.

With --diff, the catalog built from another migrations directory is
compared against it and only the changes are printed. With --order, the
tables are grouped by foreign-key dependency: each table comes after the
tables it references.`,
		Example: `  # Print the schema as tables
  truffle schema

  # As YAML
  truffle schema -o yaml

  # What changes between two migration sets
  truffle schema migrations --diff ../main/migrations

  # Creation order implied by foreign keys
  truffle schema --order`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			path := cc.Cfg.MigrationsDir
			if len(args) == 1 {
				path = args[0]
			}
			if diffDir != "" {
				return runSchemaDiff(cc, path, diffDir)
			}
			if order {
				return runSchemaOrder(cc, path)
			}
			return runSchema(cc, path)
		},
	}

	cmd.Flags().StringVar(&diffDir, "diff", "", "Compare against the schema built from this migrations directory")
	cmd.Flags().BoolVar(&order, "order", false, "Group tables by foreign-key dependency level")
	cmd.MarkFlagsMutuallyExclusive("diff", "order")

	return cmd
}

func runSchema(cc *CommandContext, path string) error {
	s, err := loadCatalog(cc, path)
	if err != nil {
		return err
	}
	cat := s.Snapshot()

	r := cc.Renderer
	if handled, err := r.Structured(cat); handled || err != nil {
		return err
	}
	if cat.Len() == 0 {
		r.Println(r.Styles().Muted.Render("no tables"))
		return nil
	}
	for i, t := range cat.Tables() {
		if i > 0 {
			r.Println()
		}
		renderTable(r, t)
	}
	return nil
}

// renderTable prints the columns and constraints of t.
func renderTable(r *output.Renderer, t *catalog.Table) {
	r.Println(r.Styles().Header2.Render(t.Name))
	rows := make([]table.Row, 0, len(t.Columns))
	for _, c := range t.Columns {
		declared := c.DeclaredType
		if declared == "" {
			declared = "-"
		}
		rows = append(rows, table.Row{c.Name, string(c.Kind), declared, yesNo(c.Nullable), c.Default})
	}
	r.Table(table.Row{"Column", "Kind", "Declared", "Nullable", "Default"}, rows)
	r.Println(r.Styles().Muted.Render("constraints: " + catalog.DescribeConstraints(t)))
}

func runSchemaDiff(cc *CommandContext, path, other string) error {
	from, err := loadCatalog(cc, path)
	if err != nil {
		return err
	}
	to, err := loadCatalog(cc, other)
	if err != nil {
		return err
	}
	changes := catalog.Diff(from.Catalog(), to.Catalog())
	if changes == nil {
		changes = []catalog.Change{}
	}

	r := cc.Renderer
	if handled, err := r.Structured(changes); handled || err != nil {
		return err
	}
	if len(changes) == 0 {
		r.Println(r.Styles().Success.Render("schemas are identical"))
		return nil
	}
	for _, c := range changes {
		r.Println(styleChange(r, c))
	}
	return nil
}

func runSchemaOrder(cc *CommandContext, path string) error {
	s, err := loadCatalog(cc, path)
	if err != nil {
		return err
	}
	levels, err := dag.FromCatalog(s.Catalog()).Levels()
	if err != nil {
		return err
	}

	r := cc.Renderer
	if handled, err := r.Structured(map[string][][]string{"levels": levels}); handled || err != nil {
		return err
	}
	for i, level := range levels {
		r.Printf("%s %s\n", r.Styles().Bold.Render(fmt.Sprintf("level %d:", i)), strings.Join(level, ", "))
	}
	return nil
}

func styleChange(r *output.Renderer, c catalog.Change) string {
	s := c.String()
	switch {
	case strings.HasPrefix(s, "+"):
		return r.Styles().Success.Render(s)
	case strings.HasPrefix(s, "-"):
		return r.Styles().Error.Render(s)
	default:
		return r.Styles().Warning.Render(s)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
