package runner

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
	old  int
	new  int
}

// UnifiedDiff renders a line based unified diff between before and after.
// It returns "" when the texts are equal.
func UnifiedDiff(path, before, after string, colorize bool) string {
	if before == after {
		return ""
	}

	lines := diffLines(before, after)

	var changes []int

	for idx, line := range lines {
		if line.op != diffmatchpatch.DiffEqual {
			changes = append(changes, idx)
		}
	}

	if len(changes) == 0 {
		return ""
	}

	paint := newPalette(colorize)

	var out strings.Builder

	out.WriteString(paint.header.Sprintf("--- a/%s\n+++ b/%s\n", path, path))

	start, end := window(changes[0], len(lines))

	for _, change := range changes[1:] {
		from, to := window(change, len(lines))
		if from <= end {
			end = to

			continue
		}

		writeHunk(&out, lines[start:end], paint)

		start, end = from, to
	}

	writeHunk(&out, lines[start:end], paint)

	return out.String()
}

func window(idx, size int) (int, int) {
	return max(0, idx-diffContext), min(size, idx+diffContext+1)
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	src, dst, table := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), table)

	var (
		lines    []diffLine
		old, new = 1, 1
	)

	for _, diff := range diffs {
		for _, text := range strings.SplitAfter(diff.Text, "\n") {
			if text == "" {
				continue
			}

			lines = append(lines, diffLine{op: diff.Type, text: text, old: old, new: new})

			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				old++
				new++
			case diffmatchpatch.DiffDelete:
				old++
			case diffmatchpatch.DiffInsert:
				new++
			}
		}
	}

	return lines
}

func writeHunk(out *strings.Builder, hunk []diffLine, paint palette) {
	var oldCount, newCount int

	for _, line := range hunk {
		if line.op != diffmatchpatch.DiffInsert {
			oldCount++
		}

		if line.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}

	oldStart, newStart := hunk[0].old, hunk[0].new
	if oldCount == 0 {
		oldStart--
	}

	if newCount == 0 {
		newStart--
	}

	out.WriteString(paint.hunk.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount))
	out.WriteString("\n")

	for _, line := range hunk {
		text := strings.TrimSuffix(line.text, "\n")

		switch line.op {
		case diffmatchpatch.DiffDelete:
			out.WriteString(paint.removed.Sprint("-" + text))
		case diffmatchpatch.DiffInsert:
			out.WriteString(paint.added.Sprint("+" + text))
		case diffmatchpatch.DiffEqual:
			out.WriteString(" " + text)
		}

		out.WriteString("\n")

		if !strings.HasSuffix(line.text, "\n") {
			out.WriteString("\\ No newline at end of file\n")
		}
	}
}

type palette struct {
	header, hunk, added, removed *color.Color
}

func newPalette(colorize bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		hunk:    color.New(color.FgCyan),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}

	for _, c := range []*color.Color{p.header, p.hunk, p.added, p.removed} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}
