package runner_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autoimport/internal/runner"
)

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, rel := range []string{
		"main.py",
		"stubs.pyi",
		"README.md",
		"pkg/__init__.py",
		"pkg/mod.py",
		".venv/lib/site.py",
		"pkg/__pycache__/mod.py",
		"node_modules/tool/x.py",
	} {
		writeFile(t, filepath.Join(dir, rel), "")
	}

	explicit := filepath.Join(dir, "README.md")

	files, err := runner.Discover([]string{dir, explicit, filepath.Join(dir, "main.py")}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "main.py"),
		filepath.Join(dir, "pkg", "__init__.py"),
		filepath.Join(dir, "pkg", "mod.py"),
		filepath.Join(dir, "stubs.pyi"),
		explicit,
	}, files)
}

func TestDiscover_IgnoreInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pkg", "__init__.py"), "")
	writeFile(t, filepath.Join(dir, "pkg", "mod.py"), "")

	files, err := runner.Discover([]string{dir}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "pkg", "mod.py")}, files)
}

func TestDiscover_Missing(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover([]string{filepath.Join(t.TempDir(), "nope.py")}, false)
	require.ErrorIs(t, err, runner.ErrMissingInput)
}
