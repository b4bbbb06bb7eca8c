// Package config provides the analysis settings shared by every truffle
// entry point. It is decoupled from CLI concerns: the CLI layers files,
// environment and flags on top of it in internal/cli/config.
package config

import (
	"fmt"
	"log/slog"

	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/sim"
	"github.com/truffle-sql/truffle/pkg/types"

	// Register the built-in dialects.
	_ "github.com/truffle-sql/truffle/pkg/dialects/ansi"
	_ "github.com/truffle-sql/truffle/pkg/dialects/generic"
	_ "github.com/truffle-sql/truffle/pkg/dialects/postgres"
	_ "github.com/truffle-sql/truffle/pkg/dialects/sqlite"
)

// AnalysisConfig selects the dialect and type system of a Simulator.
type AnalysisConfig struct {
	Dialect  string   `koanf:"dialect"`
	Features []string `koanf:"features"`
}

// Validate checks the dialect and feature names against the registries.
func (a *AnalysisConfig) Validate() error {
	if _, err := dialect.Lookup(a.Dialect); err != nil {
		return err
	}
	if _, err := types.LookupFeatures(a.Features...); err != nil {
		return err
	}
	return nil
}

// NewSimulator builds an empty Simulator for the configured dialect and
// features.
func (a *AnalysisConfig) NewSimulator(logger *slog.Logger) (*sim.Simulator, error) {
	d, err := dialect.Lookup(a.Dialect)
	if err != nil {
		return nil, err
	}
	features, err := types.LookupFeatures(a.Features...)
	if err != nil {
		return nil, fmt.Errorf("invalid features: %w", err)
	}
	return sim.New(
		sim.WithDialect(d),
		sim.WithTypes(types.NewSystem(features...)),
		sim.WithLogger(logger),
	), nil
}
