package sourcecode

import (
	"regexp"
	"strings"
)

var (
	armPattern      = regexp.MustCompile(`^(?:except\b|else\s*:|finally\s*:)`)
	fallbackPattern = regexp.MustCompile(`^except\b.*\b(?:ImportError|ModuleNotFoundError)\b`)
)

// Relocate moves import statements found in the body to the end of the import
// section, in the order they appear, and returns how many statements moved.
//
// Lines inside triple-quoted strings, lines carrying an ignore marker and
// lines inside an if TYPE_CHECKING: block are left alone. An import joined to
// further code by ";" is split and the remainder stays in place. A try/except
// group holding nothing but imports moves as a unit. Any other try statement
// catching ImportError stays as written. A block left without statements gets
// a pass line.
func (d *Document) Relocate() int {
	r := relocator{in: d.Body}
	r.run()

	d.Body = fillEmptyBlocks(r.body, r.holes)
	d.Imports = appendImports(d.Imports, r.moved...)

	return r.count
}

// hole marks a line removed from a block, at position at of the output.
type hole struct {
	at     int
	indent string
}

type relocator struct {
	in    []string
	body  []string
	moved []string
	holes []hole
	count int
}

func (r *relocator) run() {
	var (
		st         LineState
		moving     bool
		openIndent string
		typing     = -1
	)

	for idx := 0; idx < len(r.in); idx++ {
		line := r.in[idx]

		if typing >= 0 {
			if isBlank(line) || len(indentOf(line)) > typing {
				r.body = append(r.body, line)

				continue
			}

			typing = -1
		}

		kind := Classify(line, st)

		switch kind {
		case KindImportBody, KindImportClose:
			if moving {
				r.moved = append(r.moved, strings.TrimPrefix(line, openIndent))
				moving = kind == KindImportBody
			} else {
				r.body = append(r.body, line)
			}
		case KindImport, KindImportOpen:
			r.move(line, strings.TrimSpace(line))

			moving = kind == KindImportOpen
			openIndent = indentOf(line)
		case KindImportCompound:
			cut := strings.Index(codePart(line), ";")
			r.count++
			r.moved = append(r.moved, strings.TrimSpace(line[:cut]))
			r.in[idx] = indentOf(line) + strings.TrimSpace(line[cut+1:])
			idx--

			continue
		case KindTypingGuard:
			typing = 0

			r.body = append(r.body, line)
		case KindGuard:
			if group, n := guardGroup(r.in, idx); n > 0 {
				r.moveGroup(line, group)
				idx += n - 1

				continue
			}

			if end, fallback := tryStatement(r.in, idx); fallback {
				r.body = append(r.body, r.in[idx:end]...)
				idx = end - 1

				continue
			}

			r.body = append(r.body, line)
		default:
			if kind == KindCode && typingGuardPattern.MatchString(strings.TrimSpace(line)) {
				typing = len(indentOf(line))
			}

			r.body = append(r.body, line)
		}

		st = st.Advance(line, kind)
	}
}

func (r *relocator) move(original, statement string) {
	r.count++
	r.moved = append(r.moved, statement)
	r.holes = append(r.holes, hole{at: len(r.body), indent: indentOf(original)})
}

func (r *relocator) moveGroup(first string, group []string) {
	for _, line := range group {
		if Classify(line, LineState{}).IsImport() {
			r.count++
		}
	}

	r.moved = append(r.moved, group...)
	r.holes = append(r.holes, hole{at: len(r.body), indent: indentOf(first)})
}

// guardGroup collects a try: line at start and its except arms when every arm
// holds only imports. It returns the group dedented to column zero and the
// number of input lines it spans, or zero when the group does not qualify.
func guardGroup(lines []string, start int) ([]string, int) {
	if !strings.HasPrefix(strings.TrimSpace(lines[start]), "try") {
		return nil, 0
	}

	var (
		st      LineState
		base    = indentOf(lines[start])
		group   = []string{strings.TrimPrefix(lines[start], base)}
		end     = start + 1
		arms    = 1
		inArm   int
		idx     = start + 1
		trimmed string
	)

	for ; idx < len(lines); idx++ {
		line := lines[idx]

		if st.InImport {
			kind := Classify(line, st)
			group = append(group, strings.TrimPrefix(line, base))
			end = idx + 1
			st = st.Advance(line, kind)

			continue
		}

		if isBlank(line) {
			continue
		}

		kind := Classify(line, st)
		trimmed = strings.TrimSpace(line)

		if len(indentOf(line)) <= len(base) {
			if indentOf(line) != base || kind != KindGuard || !strings.HasPrefix(trimmed, "except") {
				break
			}

			if inArm == 0 {
				return nil, 0
			}

			arms++
			inArm = 0
			group = append(group, strings.TrimPrefix(line, base))
			end = idx + 1

			continue
		}

		if kind != KindImport && kind != KindImportOpen {
			return nil, 0
		}

		inArm++
		group = append(group, strings.TrimPrefix(line, base))
		end = idx + 1
		st = st.Advance(line, kind)
	}

	if arms < 2 || inArm == 0 || st.InImport {
		return nil, 0
	}

	if idx < len(lines) && indentOf(lines[idx]) == base &&
		(strings.HasPrefix(trimmed, "else") || strings.HasPrefix(trimmed, "finally")) {
		return nil, 0
	}

	return group, end - start
}

// tryStatement returns the index after the try statement at start, arms
// included, and whether one of its except arms catches a failed import.
func tryStatement(lines []string, start int) (int, bool) {
	if !strings.HasPrefix(strings.TrimSpace(lines[start]), "try") {
		return start + 1, false
	}

	var (
		base     = indentOf(lines[start])
		end      = start + 1
		fallback bool
	)

	for idx := start + 1; idx < len(lines); idx++ {
		line := lines[idx]
		if isBlank(line) {
			continue
		}

		if len(indentOf(line)) <= len(base) {
			trimmed := strings.TrimSpace(line)
			if indentOf(line) != base || !armPattern.MatchString(trimmed) {
				break
			}

			fallback = fallback || fallbackPattern.MatchString(codePart(trimmed))
		}

		end = idx + 1
	}

	return end, fallback
}

// fillEmptyBlocks inserts a pass statement where removing lines left a block
// opener without any statement.
func fillEmptyBlocks(lines []string, holes []hole) []string {
	for i := len(holes) - 1; i >= 0; i-- {
		h := holes[i]
		if i+1 < len(holes) && holes[i+1].at == h.at {
			continue
		}

		if !emptyBlockAt(lines, h) {
			continue
		}

		lines = append(lines[:h.at], append([]string{h.indent + "pass"}, lines[h.at:]...)...)
	}

	return lines
}

func emptyBlockAt(lines []string, h hole) bool {
	prev := h.at - 1
	for prev >= 0 && isBlank(lines[prev]) {
		prev--
	}

	if prev < 0 {
		return false
	}

	opener := strings.TrimSpace(codePart(lines[prev]))
	openerIndent := len(indentOf(lines[prev]))

	if !strings.HasSuffix(opener, ":") || openerIndent >= len(h.indent) {
		return false
	}

	for next := h.at; next < len(lines); next++ {
		if isBlank(lines[next]) {
			continue
		}

		return len(indentOf(lines[next])) <= openerIndent
	}

	return true
}
