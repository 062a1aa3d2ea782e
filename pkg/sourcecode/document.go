// Package sourcecode splits Python source into header, import, typing and
// body sections, moves stray imports to the top and edits the import block.
package sourcecode

import (
	"github.com/Sumatoshi-tech/autoimport/pkg/textutil"
)

// Document is a Python source text partitioned into its four sections.
// Only Imports is edited; Body only loses relocated lines.
type Document struct {
	Header  []string
	Imports []string
	Typing  []string
	Body    []string

	// Newline is the line terminator detected in the input.
	Newline string
	// TrailingNewline records whether the input ended with a line break.
	TrailingNewline bool
}

// Scan partitions text into sections. An empty text yields four empty sections.
func Scan(text string) *Document {
	lines, newline, trailing := textutil.SplitLines(text)

	doc := &Document{Newline: newline, TrailingNewline: trailing}

	headerEnd := scanHeader(lines)
	importsEnd := scanImports(lines, headerEnd)
	typingEnd := scanTyping(lines, importsEnd)

	doc.Header = clone(lines[:headerEnd])
	doc.Imports = clone(lines[headerEnd:importsEnd])
	doc.Typing = clone(lines[importsEnd:typingEnd])
	doc.Body = clone(lines[typingEnd:])

	return doc
}

// scanHeader returns the index of the first line after the leading comments
// and module docstring.
func scanHeader(lines []string) int {
	var (
		st        LineState
		docstring bool
	)

	for idx, line := range lines {
		kind := Classify(line, st)

		switch kind {
		case KindBlank, KindComment, KindStringBody, KindStringClose:
		case KindDocstring, KindStringOpen:
			if docstring || !docstringPattern.MatchString(line) {
				return idx
			}

			docstring = true
		default:
			return idx
		}

		st = st.Advance(line, kind)
	}

	return len(lines)
}

// scanImports returns the index of the first line after the import block.
// A try/except group belongs to the block only when every arm holds nothing
// but imports.
func scanImports(lines []string, start int) int {
	var st LineState

	for idx := start; idx < len(lines); idx++ {
		line := lines[idx]
		kind := Classify(line, st)

		switch kind {
		case KindImport, KindImportOpen, KindSuppressed, KindImportBody, KindImportClose, KindBlank:
		case KindGuard:
			_, n := guardGroup(lines, idx)
			if n == 0 {
				return idx
			}

			idx += n - 1

			continue
		default:
			return idx
		}

		st = st.Advance(line, kind)
	}

	return len(lines)
}

// scanTyping returns the index of the first line after an if TYPE_CHECKING:
// block starting at start, or start when there is none.
func scanTyping(lines []string, start int) int {
	if start >= len(lines) || Classify(lines[start], LineState{}) != KindTypingGuard {
		return start
	}

	idx := start + 1
	for idx < len(lines) && (isBlank(lines[idx]) || indentOf(lines[idx]) != "") {
		idx++
	}

	return idx
}

func clone(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}

	return append([]string(nil), lines...)
}
