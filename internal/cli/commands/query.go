package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/truffle-sql/truffle/pkg/sim"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   `query "<sql>"`,
		Short: "Check one statement against the migrated schema",
		Long: `Check a single SQL statement against the schema built by the
migrations and print its input placeholders and output columns.

The statement is not applied: DDL is analyzed against a copy of the
schema. Pass "-" to read the statement from standard input.

The command exits with status 1 when the statement has diagnostics.`,
		Example: `  truffle query "SELECT id, email FROM users WHERE name = \$1"
  echo "SELECT * FROM orders" | truffle query -o json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if query == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read query: %w", err)
				}
				query = string(data)
			}
			return runQuery(NewCommandContext(cmd), query)
		},
	}
}

func runQuery(cc *CommandContext, query string) error {
	s, err := loadCatalog(cc, cc.Cfg.MigrationsDir)
	if err != nil {
		return err
	}

	r := cc.Renderer
	info, diags := s.CheckQuery(strings.TrimSpace(query))
	if info == nil {
		for _, d := range diags {
			r.Println(r.FormatDiagnostic("query", d))
		}
		return fmt.Errorf("query has %d diagnostic(s)", len(diags))
	}

	if handled, err := r.Structured(info); handled || err != nil {
		return err
	}
	renderQueryInfo(cc, info)
	for _, d := range diags {
		r.Println(r.FormatDiagnostic("query", d))
	}
	return nil
}

func renderQueryInfo(cc *CommandContext, info *sim.QueryInfo) {
	r := cc.Renderer
	r.Println(r.Styles().Header1.Render(info.Kind))

	r.Println(r.Styles().Header2.Render("Inputs"))
	if len(info.Inputs) == 0 {
		r.Println(r.Styles().Muted.Render("none"))
	} else {
		rows := make([]table.Row, 0, len(info.Inputs))
		for _, p := range info.Inputs {
			rows = append(rows, table.Row{p.Index, p.Text, p.Type.String()})
		}
		r.Table(table.Row{"#", "Placeholder", "Type"}, rows)
	}

	r.Println(r.Styles().Header2.Render("Outputs"))
	if len(info.Outputs) == 0 {
		r.Println(r.Styles().Muted.Render("none"))
		return
	}
	rows := make([]table.Row, 0, len(info.Outputs))
	for _, o := range info.Outputs {
		name := o.Name
		if o.Qualifier != "" {
			name = o.Qualifier + "." + o.Name
		}
		rows = append(rows, table.Row{name, o.Type.String()})
	}
	r.Table(table.Row{"Column", "Type"}, rows)
}
