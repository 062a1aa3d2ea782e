package sourcecode

import (
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
)

// AddImport appends statement as its own line at the end of the import
// section. It returns false when an identical line is already present.
func (d *Document) AddImport(statement string) bool {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return false
	}

	for _, line := range d.Imports {
		if strings.TrimSpace(line) == statement {
			return false
		}
	}

	d.Imports = appendImports(d.Imports, statement)

	return true
}

// appendImports adds lines after the last non-blank import line.
func appendImports(imports []string, lines ...string) []string {
	if len(lines) == 0 {
		return imports
	}

	end := len(imports)
	for end > 0 && isBlank(imports[end-1]) {
		end--
	}

	return append(imports[:end:end], lines...)
}

// binding identifies one imported name.
type binding struct {
	qualified string
	pkg       string
	object    string
	alias     string
}

func newBinding(qualified, alias string) binding {
	pkg, object := importmodel.SplitQualifiedName(qualified)

	return binding{qualified: qualified, pkg: pkg, object: object, alias: alias}
}

// fromItem is how the binding appears in a from ... import list.
func (b binding) fromItem() string {
	if b.alias != "" {
		return b.object + " as " + b.alias
	}

	return b.object
}

// importItem is how the binding appears in a plain import list.
func (b binding) importItem() string {
	if b.alias != "" {
		return b.qualified + " as " + b.alias
	}

	return b.qualified
}

func (b binding) aliasPattern() string {
	if b.alias == "" {
		return ""
	}

	return `\s+as\s+` + regexp.QuoteMeta(b.alias)
}

// solePattern matches a line whose only binding is b.
func (b binding) solePattern() *regexp.Regexp {
	stmt := `import\s+` + regexp.QuoteMeta(b.qualified)
	if b.pkg != "" {
		stmt = `(?:from\s+` + regexp.QuoteMeta(b.pkg) + `\s+import\s+` + regexp.QuoteMeta(b.object) + `|` + stmt + `)`
	}

	return regexp.MustCompile(`^\s*` + stmt + b.aliasPattern() + `\s*(?:#.*)?$`)
}

// listPatterns match the statement prefix of a single-line import list, each
// paired with the form the binding takes in that list.
func (b binding) listPatterns() []listPattern {
	patterns := []listPattern{{
		re:   regexp.MustCompile(`^(\s*import\s+)(.*)$`),
		item: b.importItem(),
	}}

	if b.pkg != "" {
		patterns = append(patterns, listPattern{
			re:   regexp.MustCompile(`^(\s*from\s+` + regexp.QuoteMeta(b.pkg) + `\s+import\s*)(.*)$`),
			item: b.fromItem(),
		})
	}

	return patterns
}

type listPattern struct {
	re   *regexp.Regexp
	item string
}

// openerPattern matches the first line of a parenthesized from-import.
func (b binding) openerPattern() *regexp.Regexp {
	return regexp.MustCompile(`^\s*from\s+` + regexp.QuoteMeta(b.pkg) + `\s+import\s*\(\s*$`)
}

// RemoveBinding removes the import of qualified (bound as alias when not
// empty) from the import section. It tries, in order: a line importing only
// that name, a single-line list sharing it with other names, and a
// parenthesized multi-line list. Suppressed lines are never edited. It
// returns false when no line matched.
func (d *Document) RemoveBinding(qualified, alias string) bool {
	b := newBinding(qualified, alias)

	for _, remove := range []func([]string, binding) ([]string, bool){
		removeSole,
		removeShared,
		removeMultiline,
	} {
		if lines, ok := remove(d.Imports, b); ok {
			d.Imports = pruneEmptyGuards(lines)

			return true
		}
	}

	return false
}

func removeSole(lines []string, b binding) ([]string, bool) {
	re := b.solePattern()

	for idx, line := range lines {
		if IsSuppressed(line) || !re.MatchString(line) {
			continue
		}

		return deleteLines(lines, idx, idx+1), true
	}

	return nil, false
}

func removeShared(lines []string, b binding) ([]string, bool) {
	patterns := b.listPatterns()

	for idx, line := range lines {
		if IsSuppressed(line) {
			continue
		}

		code := codePart(line)
		trimmed := strings.TrimRight(code, " \t")

		for _, p := range patterns {
			m := p.re.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}

			list, paren := unwrapParens(m[2])
			if list == "" && paren {
				continue
			}

			items := splitItems(list)
			if len(items) < 2 {
				continue
			}

			rest, ok := dropItem(items, p.item)
			if !ok {
				continue
			}

			joined := strings.Join(rest, ", ")
			if paren {
				joined = "(" + joined + ")"
			}

			out := append([]string(nil), lines...)
			out[idx] = m[1] + joined + code[len(trimmed):] + line[len(code):]

			return out, true
		}
	}

	return nil, false
}

func removeMultiline(lines []string, b binding) ([]string, bool) {
	if b.pkg == "" {
		return nil, false
	}

	opener := b.openerPattern()
	item := b.fromItem()

	for idx, line := range lines {
		if IsSuppressed(line) || !opener.MatchString(strings.TrimRight(codePart(line), " \t")) {
			continue
		}

		for next := idx + 1; next < len(lines); next++ {
			cont := lines[next]
			closes := strings.Contains(codePart(cont), ")")

			if !IsSuppressed(cont) {
				if edited, ok := dropFromContinuation(cont, item, indentOf(line)); ok {
					out := append([]string(nil), lines...)
					if edited == "" {
						out = append(out[:next], out[next+1:]...)
					} else {
						out[next] = edited
					}

					return collapseEmptyBlock(out, idx), true
				}
			}

			if closes {
				break
			}
		}
	}

	return nil, false
}

// dropFromContinuation removes item from one continuation line of a
// parenthesized import. An empty result means the line should be deleted.
func dropFromContinuation(line, item, openerIndent string) (string, bool) {
	code := codePart(line)
	comment := line[len(code):]

	list, tail := code, ""
	if idx := strings.Index(code, ")"); idx >= 0 {
		list, tail = code[:idx], code[idx:]
	}

	rest, ok := dropItem(splitItems(list), item)
	if !ok {
		return "", false
	}

	if len(rest) == 0 {
		if tail == "" {
			return "", true
		}

		return openerIndent + strings.TrimSpace(tail) + comment, true
	}

	joined := strings.Join(rest, ", ")
	if tail == "" || strings.HasSuffix(strings.TrimSpace(list), ",") {
		joined += ","
	}

	return indentOf(line) + joined + strings.TrimRight(tail, " \t") + comment, true
}

// collapseEmptyBlock deletes a parenthesized import opened at idx when only
// blank lines remain before its closing parenthesis.
func collapseEmptyBlock(lines []string, idx int) []string {
	next := idx + 1
	for next < len(lines) && isBlank(lines[next]) {
		next++
	}

	if next >= len(lines) || strings.TrimSpace(codePart(lines[next])) != ")" {
		return lines
	}

	return deleteLines(lines, idx, next+1)
}

// deleteLines removes lines[from:to] and fills a block the removal emptied.
func deleteLines(lines []string, from, to int) []string {
	h := hole{at: from, indent: indentOf(lines[from])}

	out := make([]string, 0, len(lines)-(to-from))
	out = append(out, lines[:from]...)
	out = append(out, lines[to:]...)

	return fillEmptyBlocks(out, []hole{h})
}

// pruneEmptyGuards deletes try/except groups whose every arm is only pass.
func pruneEmptyGuards(lines []string) []string {
	for idx := 0; idx < len(lines); idx++ {
		if Classify(lines[idx], LineState{}) != KindGuard ||
			!strings.HasPrefix(strings.TrimSpace(lines[idx]), "try") {
			continue
		}

		if end, ok := passOnlyGroup(lines, idx); ok {
			lines = append(lines[:idx:idx], lines[end:]...)
			idx--
		}
	}

	return lines
}

func passOnlyGroup(lines []string, start int) (int, bool) {
	base := indentOf(lines[start])
	end := start + 1

	for idx := start + 1; idx < len(lines); idx++ {
		line := lines[idx]
		if isBlank(line) {
			continue
		}

		trimmed := strings.TrimSpace(line)

		if len(indentOf(line)) <= len(base) {
			if indentOf(line) != base || !strings.HasPrefix(trimmed, "except") ||
				Classify(line, LineState{}) != KindGuard {
				break
			}
		} else if trimmed != "pass" {
			return 0, false
		}

		end = idx + 1
	}

	return end, true
}

func unwrapParens(list string) (string, bool) {
	list = strings.TrimSpace(list)
	if !strings.HasPrefix(list, "(") {
		return list, false
	}

	if !strings.HasSuffix(list, ")") {
		return "", true
	}

	return strings.TrimSpace(list[1 : len(list)-1]), true
}

func splitItems(list string) []string {
	var items []string

	for _, item := range strings.Split(list, ",") {
		if item = strings.Join(strings.Fields(item), " "); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func dropItem(items []string, item string) ([]string, bool) {
	for idx, candidate := range items {
		if candidate == item {
			return append(items[:idx:idx], items[idx+1:]...), true
		}
	}

	return nil, false
}
