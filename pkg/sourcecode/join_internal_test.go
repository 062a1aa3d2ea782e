package sourcecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Layout(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Header:  []string{"# header"},
		Imports: []string{"import os", "import sys", ""},
		Typing:  []string{"if TYPE_CHECKING:", "    import re"},
		Body:    []string{"x = 1"},
	}

	text, layout := doc.render()

	assert.Equal(t, "# header\n\nimport os\nimport sys\n\nif TYPE_CHECKING:\n    import re\n\n\nx = 1", text)
	assert.Equal(t, Span{First: 3, Last: 4}, layout.Imports)
	assert.Equal(t, Span{First: 6, Last: 7}, layout.Typing)
}

func TestRender_LayoutWithoutSections(t *testing.T) {
	t.Parallel()

	_, layout := (&Document{Body: []string{"x = 1"}}).render()

	assert.Equal(t, Span{}, layout.Imports)
	assert.Equal(t, Span{}, layout.Typing)
}

func TestFillEmptyBlocks(t *testing.T) {
	t.Parallel()

	lines := []string{"if x:", "y = 1"}
	got := fillEmptyBlocks(lines, []hole{{at: 1, indent: "    "}})
	assert.Equal(t, []string{"if x:", "    pass", "y = 1"}, got)

	lines = []string{"if x:", "    z = 2"}
	got = fillEmptyBlocks(lines, []hole{{at: 1, indent: "    "}})
	assert.Equal(t, []string{"if x:", "    z = 2"}, got)

	lines = []string{"x = 1"}
	got = fillEmptyBlocks(lines, []hole{{at: 1, indent: ""}})
	assert.Equal(t, []string{"x = 1"}, got)
}
