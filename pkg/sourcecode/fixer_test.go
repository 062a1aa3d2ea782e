package sourcecode_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel/mocks"
	"github.com/Sumatoshi-tech/autoimport/pkg/sourcecode"
)

func undefined(name string, line int) importmodel.Finding {
	return importmodel.Finding{Kind: importmodel.UndefinedReference, Name: name, Line: line}
}

func unused(name string, line int) importmodel.Finding {
	return importmodel.Finding{Kind: importmodel.UnusedBinding, Name: name, Line: line}
}

func newFixer(t *testing.T, engine importmodel.Engine, opts ...sourcecode.Option) *sourcecode.Fixer {
	t.Helper()

	fixer, err := sourcecode.NewFixer(engine, opts...)
	require.NoError(t, err)

	return fixer
}

func TestNewFixer_RequiresEngine(t *testing.T) {
	t.Parallel()

	_, err := sourcecode.NewFixer(nil)
	require.ErrorIs(t, err, sourcecode.ErrNoEngine)
}

func TestFix_AddsMissingImport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), "os.getcwd()").Return([]importmodel.Finding{undefined("os", 1)}, nil)
	resolver.EXPECT().Resolve("os").Return("import os", true)

	res, err := newFixer(t, engine, sourcecode.WithResolver(resolver)).Fix(context.Background(), "os.getcwd()")
	require.NoError(t, err)

	assert.Equal(t, "import os\n\n\nos.getcwd()", res.Text)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"import os"}, res.Added)
}

func TestFix_RemovesUnusedNameFromSharedLine(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), "from os import getcwd, path\n\n\ngetcwd()").
		Return([]importmodel.Finding{unused("os.path", 1)}, nil)

	res, err := newFixer(t, engine).Fix(context.Background(), "from os import getcwd, path\n\ngetcwd()")
	require.NoError(t, err)

	assert.Equal(t, "from os import getcwd\n\n\ngetcwd()", res.Text)
	assert.Equal(t, []string{"os.path"}, res.Removed)
}

func TestFix_AllImportsUnused(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).
		Return([]importmodel.Finding{unused("os", 1), unused("sys", 2)}, nil)

	res, err := newFixer(t, engine).Fix(context.Background(), "import os\nimport sys\n")
	require.NoError(t, err)

	assert.Equal(t, "\n", res.Text)
}

func TestFix_IgnoresNamesOnlyUsedInTypingBlock(t *testing.T) {
	t.Parallel()

	source := "from typing import TYPE_CHECKING\n\nif TYPE_CHECKING:\n    from foo import Bar\n    x: Baz\n\nprint(1)\n"

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	// Joined text: imports on line 1, typing block on lines 3-5.
	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).
		Return([]importmodel.Finding{undefined("Baz", 5), unused("foo.Bar", 4)}, nil)

	res, err := newFixer(t, engine, sourcecode.WithResolver(resolver)).Fix(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, source, res.Text)
	assert.False(t, res.Changed)
}

func TestFix_TypingNameAlsoUsedInBodyIsAdded(t *testing.T) {
	t.Parallel()

	source := "if TYPE_CHECKING:\n    x: Path\n\ny = Path()\n"

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).
		Return([]importmodel.Finding{undefined("Path", 2), undefined("Path", 5)}, nil)
	resolver.EXPECT().Resolve("Path").Return("from pathlib import Path", true)

	res, err := newFixer(t, engine, sourcecode.WithResolver(resolver)).Fix(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, "from pathlib import Path\n\nif TYPE_CHECKING:\n    x: Path\n\n\ny = Path()\n", res.Text)
}

func TestFix_SuppressedUnusedImportIsKept(t *testing.T) {
	t.Parallel()

	source := "import os  # noqa: autoimport\n"

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return([]importmodel.Finding{unused("os", 1)}, nil)

	res, err := newFixer(t, engine).Fix(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, source, res.Text)
	assert.Empty(t, res.Removed)
}

func TestFix_CommonStatementOverridesResolver(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return([]importmodel.Finding{undefined("BaseModel", 1)}, nil)

	fixer := newFixer(t, engine,
		sourcecode.WithResolver(resolver),
		sourcecode.WithCommonStatements(map[string]string{"BaseModel": "from mylib import BaseModel"}),
	)

	res, err := fixer.Fix(context.Background(), "class A(BaseModel):\n    pass\n")
	require.NoError(t, err)

	assert.Equal(t, "from mylib import BaseModel\n\n\nclass A(BaseModel):\n    pass\n", res.Text)
}

func TestFix_DeduplicatesUndefinedNames(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).
		Return([]importmodel.Finding{undefined("os", 1), undefined("os", 2), undefined("os", 3)}, nil)
	resolver.EXPECT().Resolve("os").Return("import os", true).Times(1)

	res, err := newFixer(t, engine, sourcecode.WithResolver(resolver)).
		Fix(context.Background(), "os.getcwd()\nos.sep\nos.name\n")
	require.NoError(t, err)

	assert.Equal(t, "import os\n\n\nos.getcwd()\nos.sep\nos.name\n", res.Text)
	assert.Equal(t, []string{"import os"}, res.Added)
}

func TestFix_UnresolvedNameLeavesSourceAlone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return([]importmodel.Finding{undefined("foo", 1)}, nil)
	resolver.EXPECT().Resolve("foo").Return("", false)

	res, err := newFixer(t, engine, sourcecode.WithResolver(resolver)).Fix(context.Background(), "foo")
	require.NoError(t, err)

	assert.Equal(t, "foo", res.Text)
	assert.Equal(t, []string{"foo"}, res.Unresolved)
}

func TestFix_EngineErrorIsWrapped(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return(nil, errBoom)

	_, err := newFixer(t, engine).Fix(context.Background(), "x = 1")
	require.ErrorIs(t, err, errBoom)
}

func TestFix_KeepUnused(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return([]importmodel.Finding{unused("os", 1)}, nil)

	res, err := newFixer(t, engine, sourcecode.WithKeepUnused(true)).Fix(context.Background(), "import os\n")
	require.NoError(t, err)

	assert.Equal(t, "import os\n", res.Text)
}

func TestFix_RelocatesImports(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), "import os\n\n\nx = 1\nprint(os)\n").Return(nil, nil)

	res, err := newFixer(t, engine).Fix(context.Background(), "x = 1\nimport os\nprint(os)\n")
	require.NoError(t, err)

	assert.Equal(t, "import os\n\n\nx = 1\nprint(os)\n", res.Text)
	assert.Equal(t, 1, res.Moved)
	assert.True(t, res.Changed)
}

func TestFix_MoveToTopDisabled(t *testing.T) {
	t.Parallel()

	source := "x = 1\nimport os\nprint(os)\n"

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), source).Return(nil, nil)

	res, err := newFixer(t, engine, sourcecode.WithMoveToTop(false)).Fix(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, source, res.Text)
	assert.Zero(t, res.Moved)
}

func TestFix_UnusedOutsideImportSectionIsIgnored(t *testing.T) {
	t.Parallel()

	source := "import os\n\n\nx = 1\nimport os  # noqa: autoimport\n"

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	engine.EXPECT().Diagnose(gomock.Any(), source).Return([]importmodel.Finding{unused("os", 5)}, nil)

	res, err := newFixer(t, engine).Fix(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, source, res.Text)
}

func TestFix_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	resolver := mocks.NewMockResolver(ctrl)

	first := engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return([]importmodel.Finding{undefined("os", 1)}, nil)
	engine.EXPECT().Diagnose(gomock.Any(), gomock.Any()).Return(nil, nil).After(first)
	resolver.EXPECT().Resolve("os").Return("import os", true)

	fixer := newFixer(t, engine, sourcecode.WithResolver(resolver))

	once, err := fixer.Fix(context.Background(), "os.getcwd()\n")
	require.NoError(t, err)

	twice, err := fixer.Fix(context.Background(), once.Text)
	require.NoError(t, err)

	assert.Equal(t, once.Text, twice.Text)
	assert.False(t, twice.Changed)
}
