package config

import "github.com/truffle-sql/truffle/pkg/types"

// Default configuration values.
const (
	DefaultDialect       = "generic"
	DefaultMigrationsDir = "migrations"
)

// DefaultFeatures returns every known type system feature.
func DefaultFeatures() []string {
	return types.FeatureNames()
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(a *AnalysisConfig) {
	if a == nil {
		return
	}
	if a.Dialect == "" {
		a.Dialect = DefaultDialect
	}
	if a.Features == nil {
		a.Features = DefaultFeatures()
	}
}
