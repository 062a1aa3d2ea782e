package sourcecode

import (
	"github.com/Sumatoshi-tech/autoimport/pkg/textutil"
)

// Blank lines inserted between joined sections.
const (
	sectionGap = 1
	bodyGap    = 2
)

// Span is a 1-based inclusive line range in the joined text. The zero value
// is an empty span.
type Span struct {
	First int
	Last  int
}

// Contains reports whether line falls inside the span.
func (s Span) Contains(line int) bool {
	return s.First > 0 && line >= s.First && line <= s.Last
}

// Layout records where the import and typing sections landed in the joined text.
type Layout struct {
	Imports Span
	Typing  Span
}

type section int

const (
	sectionHeader section = iota
	sectionImports
	sectionTyping
	sectionBody
)

// String joins the sections with canonical blank-line separators.
func (d *Document) String() string {
	text, _ := d.render()

	return text
}

// render joins the sections and reports the resulting layout. Each section is
// trimmed of surrounding blank lines. Header, imports and typing are separated
// by one blank line; the body follows imports or typing after two, and a bare
// header after one.
func (d *Document) render() (string, Layout) {
	var (
		out    []string
		layout Layout
		prev   = section(-1)
	)

	parts := [...][]string{
		sectionHeader:  trimBlank(d.Header),
		sectionImports: trimBlank(d.Imports),
		sectionTyping:  trimBlank(d.Typing),
		sectionBody:    trimBlank(d.Body),
	}

	for sec, lines := range parts {
		if len(lines) == 0 {
			continue
		}

		if prev >= 0 {
			gap := sectionGap
			if section(sec) == sectionBody && prev != sectionHeader {
				gap = bodyGap
			}

			for range gap {
				out = append(out, "")
			}
		}

		span := Span{First: len(out) + 1, Last: len(out) + len(lines)}

		switch section(sec) {
		case sectionImports:
			layout.Imports = span
		case sectionTyping:
			layout.Typing = span
		}

		out = append(out, lines...)
		prev = section(sec)
	}

	newline := d.Newline
	if newline == "" {
		newline = textutil.LF
	}

	return textutil.JoinLines(out, newline, d.TrailingNewline), layout
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)

	for start < end && isBlank(lines[start]) {
		start++
	}

	for end > start && isBlank(lines[end-1]) {
		end--
	}

	return lines[start:end]
}
