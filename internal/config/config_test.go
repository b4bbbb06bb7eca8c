package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/internal/testutil"
)

func TestAnalysisConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       AnalysisConfig
		errSubstr string
	}{
		{name: "defaults", cfg: AnalysisConfig{Dialect: "generic", Features: DefaultFeatures()}},
		{name: "sqlite without features", cfg: AnalysisConfig{Dialect: "sqlite"}},
		{name: "dialect is case-insensitive", cfg: AnalysisConfig{Dialect: "Postgres", Features: []string{"UUID"}}},
		{name: "missing dialect", cfg: AnalysisConfig{}, errSubstr: "dialect is required"},
		{name: "unknown dialect", cfg: AnalysisConfig{Dialect: "oracle"}, errSubstr: `unknown dialect "oracle"`},
		{name: "unknown feature", cfg: AnalysisConfig{Dialect: "ansi", Features: []string{"geo"}}, errSubstr: `unknown feature "geo"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var a AnalysisConfig
	ApplyDefaults(&a)
	assert.Equal(t, DefaultDialect, a.Dialect)
	assert.Equal(t, []string{"json", "temporal", "uuid"}, a.Features)

	b := AnalysisConfig{Dialect: "sqlite", Features: []string{}}
	ApplyDefaults(&b)
	assert.Equal(t, "sqlite", b.Dialect)
	assert.Empty(t, b.Features)

	ApplyDefaults(nil)
}

func TestNewSimulator(t *testing.T) {
	a := AnalysisConfig{Dialect: "sqlite", Features: []string{"json"}}
	s, err := a.NewSimulator(testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Dialect().Name)
	assert.Equal(t, []string{"json"}, s.Types().Features())

	rep := s.ExecuteSQL(`CREATE TABLE t (a, b TEXT); SELECT a FROM t WHERE b == ?`)
	assert.True(t, rep.OK(), rep.Diagnostics().Error())

	_, err = (&AnalysisConfig{Dialect: "nope"}).NewSimulator(nil)
	assert.Error(t, err)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Empty(t, FindProjectRoot(nested))
	assert.Empty(t, FindConfigFile(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte("dialect: ansi\n"), 0o644))
	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileNameAlt), FindConfigFile(root))

	// The .yaml spelling wins over .yml.
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("dialect: ansi\n"), 0o644))
	assert.Equal(t, filepath.Join(root, ConfigFileName), FindConfigFile(root))
}

func TestFindProjectRootDepthLimit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(""), 0o644))

	deep := root
	for range MaxUpwardSearchLevels {
		deep = filepath.Join(deep, "d")
	}
	require.NoError(t, os.MkdirAll(deep, 0o755))
	assert.Empty(t, FindProjectRoot(deep))
	assert.Equal(t, root, FindProjectRoot(filepath.Dir(deep)))
}
