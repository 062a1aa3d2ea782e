package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/autoimport/pkg/config"
)

func runConfig(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewConfigCommand()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestConfigCommand_YAML(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{})

	out, err := runConfig(t, dir)
	require.NoError(t, err)

	assert.Contains(t, out, "# source: "+filepath.Join(dir, "pyproject.toml"))

	var settings config.Settings
	require.NoError(t, yaml.Unmarshal([]byte(out), &settings))

	assert.Equal(t, "from foo import Foo", settings.CommonStatements["Foo"])
	assert.Equal(t, "from unittest.mock import Mock", settings.CommonStatements["Mock"])
	assert.Equal(t, config.DefaultMaxFileSize, settings.MaxFileSize)
}

func TestConfigCommand_JSON(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{})

	out, err := runConfig(t, "--format", "json", dir)
	require.NoError(t, err)

	var settings config.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &settings))

	assert.Equal(t, "from foo import Foo", settings.CommonStatements["Foo"])
	assert.False(t, settings.KeepUnusedImports)
}

func TestConfigCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	dir := setupProject(t, map[string]string{})

	_, err := runConfig(t, "--format", "toml", dir)
	require.ErrorIs(t, err, ErrUnknownFormat)
}
