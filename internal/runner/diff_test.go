package runner_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/autoimport/internal/runner"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{name: "equal", before: "a\nb\n", after: "a\nb\n", want: ""},
		{
			name:   "replace middle line",
			before: "a\nb\nc\n",
			after:  "a\nx\nc\n",
			want:   "--- a/f.py\n+++ b/f.py\n@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n",
		},
		{
			name:   "insert at top",
			before: "print(1)\n",
			after:  "import os\nprint(1)\n",
			want:   "--- a/f.py\n+++ b/f.py\n@@ -1,1 +1,2 @@\n+import os\n print(1)\n",
		},
		{
			name:   "missing trailing newline",
			before: "a",
			after:  "b",
			want:   "--- a/f.py\n+++ b/f.py\n@@ -1,1 +1,1 @@\n-a\n\\ No newline at end of file\n+b\n\\ No newline at end of file\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, runner.UnifiedDiff("f.py", tt.before, tt.after, false))
		})
	}
}

func TestUnifiedDiff_SeparateHunks(t *testing.T) {
	t.Parallel()

	lines := make([]string, 0, 20)
	for i := range 20 {
		lines = append(lines, fmt.Sprintf("line%d", i))
	}

	before := strings.Join(lines, "\n") + "\n"

	lines[1] = "changed1"
	lines[18] = "changed18"
	after := strings.Join(lines, "\n") + "\n"

	diff := runner.UnifiedDiff("f.py", before, after, false)

	assert.Equal(t, 2, strings.Count(diff, "@@ -"))
	assert.Contains(t, diff, "@@ -1,5 +1,5 @@\n")
	assert.Contains(t, diff, "@@ -16,5 +16,5 @@\n")
}
