package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autoimport/internal/runner"
	"github.com/Sumatoshi-tech/autoimport/pkg/observability"
)

const testPyproject = `[project]
name = "demo"

[tool.autoimport]
common_statements = { "Foo" = "from foo import Foo" }
`

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	files["pyproject.toml"] = testPyproject

	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewFixCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestFixCommand_WritesFiles(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"demo/app.py": "Foo()\n"})

	_, _, err := execute(t, "", "--jobs", "2", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "demo", "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "from foo import Foo\n\n\nFoo()\n", string(data))
}

func TestFixCommand_Check(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"app.py": "import os\n"})

	_, _, err := execute(t, "", "--check", dir)
	require.ErrorIs(t, err, runner.ErrChangesNeeded)

	data, readErr := os.ReadFile(filepath.Join(dir, "app.py"))
	require.NoError(t, readErr)
	assert.Equal(t, "import os\n", string(data))
}

func TestFixCommand_CheckAndDiffAreExclusive(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"app.py": "x = 1\n"})

	_, _, err := execute(t, "", "--check", "--diff", dir)
	require.Error(t, err)
}

func TestFixCommand_DiffAndSummary(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"app.py": "Foo()\n"})

	out, _, err := execute(t, "", "--diff", "--summary", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "+from foo import Foo\n")
	assert.Contains(t, out, "app.py")
	assert.Contains(t, out, "changed")
}

func TestFixCommand_Stdin(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{})

	out, _, err := execute(t, "Foo()\n", "--config-file", filepath.Join(dir, "pyproject.toml"), "-")
	require.NoError(t, err)

	assert.Equal(t, "from foo import Foo\n\n\nFoo()\n", out)
}

func TestFixCommand_MetricsFile(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"app.py": "Foo()\n"})
	metrics := filepath.Join(t.TempDir(), "autoimport.prom")

	_, _, err := execute(t, "", "--metrics-file", metrics, filepath.Join(dir, "app.py"))
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autoimport_files_total")
}

func TestFixCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "no input", args: nil, want: runner.ErrNoInput},
		{name: "mixed stdin", args: []string{"-", "app.py"}, want: ErrMixedStdin},
		{name: "bad log level", args: []string{"--log-level", "loud", "app.py"}, want: observability.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, "", tt.args...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigStart(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{"pkg/app.py": ""})

	assert.Equal(t, filepath.Join(dir, "pkg"), configStart([]string{filepath.Join(dir, "pkg", "app.py")}))
	assert.Equal(t, dir, configStart([]string{dir}))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, configStart([]string{"-"}))
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	changes := fmt.Errorf("%w: 2 files", runner.ErrChangesNeeded)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "only changes", err: errors.Join(nil, changes), want: "would fix: changes needed: 2 files\n"},
		{name: "plain changes", err: changes, want: "would fix: changes needed: 2 files\n"},
		{name: "other failure", err: errors.Join(runner.ErrMissingInput, changes), want: "Error: "},
		{name: "unrelated", err: runner.ErrNoInput, want: "Error: no input files\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			PrintError(&buf, tt.err)
			assert.True(t, strings.HasPrefix(buf.String(), tt.want), buf.String())
		})
	}
}
