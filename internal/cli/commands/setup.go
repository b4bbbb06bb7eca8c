package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/truffle-sql/truffle/internal/cli/config"
	"github.com/truffle-sql/truffle/internal/cli/output"
	"github.com/truffle-sql/truffle/pkg/sim"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the command's context.
// The configuration falls back to defaults when the root command did not
// load one, which is the case when a subcommand runs on its own in tests.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewSimulator returns an empty Simulator for the configured dialect and
// features.
func (c *CommandContext) NewSimulator() (*sim.Simulator, error) {
	s, err := c.Cfg.NewSimulator(c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure analyzer: %w", err)
	}
	return s, nil
}

// WithFormat replaces the renderer when format overrides the configured
// output mode.
func (c *CommandContext) WithFormat(cmd *cobra.Command, format string) error {
	if format == "" {
		return nil
	}
	switch output.Mode(format) {
	case output.ModeText, output.ModeJSON, output.ModeYAML:
	default:
		return fmt.Errorf("invalid format %q (want text, json or yaml)", format)
	}
	c.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	return nil
}
