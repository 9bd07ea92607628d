package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "kpi", Short: "test root"}
	root.AddCommand(&cobra.Command{Use: "fetch", Run: func(*cobra.Command, []string) {}})
	return root
}

func TestWriteCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "# bash completion for kpi"},
		{"zsh", "#compdef kpi"},
		{"fish", "complete -c kpi"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeCompletion(testRoot(), tt.shell, &buf))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestWriteCompletion_UnknownShell(t *testing.T) {
	err := writeCompletion(testRoot(), "tcsh", &bytes.Buffer{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
