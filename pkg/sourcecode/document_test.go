package sourcecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/autoimport/pkg/sourcecode"
)

func TestScan_Empty(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan("")

	assert.Empty(t, doc.Header)
	assert.Empty(t, doc.Imports)
	assert.Empty(t, doc.Typing)
	assert.Empty(t, doc.Body)
	assert.False(t, doc.TrailingNewline)
	assert.Empty(t, doc.String())
}

func TestScan_AllSections(t *testing.T) {
	t.Parallel()

	source := `"""Module docstring.

More details.
"""
import os
from typing import TYPE_CHECKING

if TYPE_CHECKING:
    from pathlib import Path

os.getcwd()
`

	doc := sourcecode.Scan(source)

	assert.Equal(t, []string{`"""Module docstring.`, "", "More details.", `"""`}, doc.Header)
	assert.Equal(t, []string{"import os", "from typing import TYPE_CHECKING", ""}, doc.Imports)
	assert.Equal(t, []string{"if TYPE_CHECKING:", "    from pathlib import Path", ""}, doc.Typing)
	assert.Equal(t, []string{"os.getcwd()"}, doc.Body)
	assert.True(t, doc.TrailingNewline)
	assert.Equal(t, "\n", doc.Newline)
}

func TestScan_LeadingComments(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan("#!/usr/bin/env python\n# comment\n\nimport os\n")

	assert.Equal(t, []string{"#!/usr/bin/env python", "# comment", ""}, doc.Header)
	assert.Equal(t, []string{"import os"}, doc.Imports)
	assert.Empty(t, doc.Body)
}

func TestScan_SingleLineDocstring(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan(`"""Doc."""` + "\nimport os\nx = 1")

	assert.Equal(t, []string{`"""Doc."""`}, doc.Header)
	assert.Equal(t, []string{"import os"}, doc.Imports)
	assert.Equal(t, []string{"x = 1"}, doc.Body)
}

func TestScan_SecondStringEndsHeader(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan(`"""Doc."""` + "\n" + `"""Not a docstring."""` + "\nimport os")

	assert.Equal(t, []string{`"""Doc."""`}, doc.Header)
	assert.Empty(t, doc.Imports)
	assert.Equal(t, []string{`"""Not a docstring."""`, "import os"}, doc.Body)
}

func TestScan_TryExceptImports(t *testing.T) {
	t.Parallel()

	source := "try:\n    import ujson as json\nexcept ImportError:\n    import json\nprint(json)"

	doc := sourcecode.Scan(source)

	assert.Equal(t, []string{"try:", "    import ujson as json", "except ImportError:", "    import json"}, doc.Imports)
	assert.Equal(t, []string{"print(json)"}, doc.Body)
}

func TestScan_ImportFallbackWithCodeEndsImports(t *testing.T) {
	t.Parallel()

	source := "import sys\ntry:\n    import ujson as json\nexcept ImportError:\n    json = None\n\n\nprint(json)\n"

	doc := sourcecode.Scan(source)

	assert.Equal(t, []string{"import sys"}, doc.Imports)
	assert.Equal(t, []string{"try:", "    import ujson as json", "except ImportError:", "    json = None", "", "", "print(json)"}, doc.Body)
}

func TestScan_CommentWithQuoteKeepsImportBlock(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan("import os  # it's fine\nimport sys\n\nprint(os, sys)\n")

	assert.Equal(t, []string{"import os  # it's fine", "import sys", ""}, doc.Imports)
	assert.Equal(t, []string{"print(os, sys)"}, doc.Body)
}

func TestScan_GuardWithoutImportStaysInBody(t *testing.T) {
	t.Parallel()

	source := "import os\ntry:\n    run()\nexcept Exception:\n    pass\n"

	doc := sourcecode.Scan(source)

	assert.Equal(t, []string{"import os"}, doc.Imports)
	assert.Equal(t, []string{"try:", "    run()", "except Exception:", "    pass"}, doc.Body)
}

func TestScan_MultilineImport(t *testing.T) {
	t.Parallel()

	source := "from os import (\n    getcwd,\n\n    path,\n)\ngetcwd()"

	doc := sourcecode.Scan(source)

	assert.Equal(t, []string{"from os import (", "    getcwd,", "", "    path,", ")"}, doc.Imports)
	assert.Equal(t, []string{"getcwd()"}, doc.Body)
}

func TestScan_CompoundImportEndsImports(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan("import sys\nimport os; print(os)")

	assert.Equal(t, []string{"import sys"}, doc.Imports)
	assert.Equal(t, []string{"import os; print(os)"}, doc.Body)
}

func TestScan_CRLF(t *testing.T) {
	t.Parallel()

	source := "import os\r\n\r\nos.getcwd()\r\n"

	doc := sourcecode.Scan(source)

	assert.Equal(t, "\r\n", doc.Newline)
	assert.Equal(t, []string{"import os", ""}, doc.Imports)
	assert.Equal(t, []string{"os.getcwd()"}, doc.Body)
	assert.Equal(t, "import os\r\n\r\n\r\nos.getcwd()\r\n", doc.String())
}

func TestScan_TypingBlockWithoutImports(t *testing.T) {
	t.Parallel()

	doc := sourcecode.Scan("if TYPE_CHECKING:\n    import os\n\nx = 1\n")

	assert.Empty(t, doc.Imports)
	assert.Equal(t, []string{"if TYPE_CHECKING:", "    import os", ""}, doc.Typing)
	assert.Equal(t, []string{"x = 1"}, doc.Body)
}
