package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		args    []string
		wantOut []string
		exact   string
	}{
		{
			name:    "release",
			info:    BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"},
			wantOut: []string{"Truffle v1.2.3", "commit abc123, built 2026-01-02", "SQL semantic analyzer"},
		},
		{
			name:    "missing stamp",
			info:    BuildInfo{Version: "dev"},
			wantOut: []string{"Truffle vdev", "commit unknown, built unknown"},
		},
		{
			name:  "short",
			info:  BuildInfo{Version: "0.1.0", Commit: "abc123"},
			args:  []string{"--short"},
			exact: "0.1.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
			if tt.exact != "" {
				assert.Equal(t, tt.exact, buf.String())
			}
		})
	}
}

func TestVersionCommandRejectsArgs(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
