package sourcecode

import (
	"regexp"
	"strings"
)

// LineKind is the role a single source line plays for the section scanner
// and the import relocator.
type LineKind int

// Line kinds returned by Classify.
const (
	KindCode LineKind = iota
	KindBlank
	KindComment
	// KindDocstring is a triple-quoted string opened and closed on one line.
	KindDocstring
	// KindStringOpen opens a triple-quoted string that continues on later lines.
	KindStringOpen
	KindStringBody
	KindStringClose
	// KindImport is a complete import statement.
	KindImport
	// KindImportOpen starts a parenthesized import spanning several lines.
	KindImportOpen
	KindImportBody
	KindImportClose
	// KindImportCompound is an import followed by ";" and further code.
	KindImportCompound
	// KindSuppressed is an import statement carrying an ignore marker, even
	// when ";" joins further code to it.
	KindSuppressed
	// KindGuard is a try: or except ...: line.
	KindGuard
	// KindTypingGuard is the if TYPE_CHECKING: header.
	KindTypingGuard
)

var kindNames = [...]string{
	KindCode:           "code",
	KindBlank:          "blank",
	KindComment:        "comment",
	KindDocstring:      "docstring",
	KindStringOpen:     "string-open",
	KindStringBody:     "string-body",
	KindStringClose:    "string-close",
	KindImport:         "import",
	KindImportOpen:     "import-open",
	KindImportBody:     "import-body",
	KindImportClose:    "import-close",
	KindImportCompound: "import-compound",
	KindSuppressed:     "suppressed",
	KindGuard:          "guard",
	KindTypingGuard:    "typing-guard",
}

// String returns the kind name.
func (k LineKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// IsImport reports whether the kind starts an import statement.
func (k LineKind) IsImport() bool {
	return k == KindImport || k == KindImportOpen || k == KindSuppressed
}

// LineState carries the multi-line context Classify needs.
type LineState struct {
	// Quote is the open triple-quote delimiter, empty outside strings.
	Quote string
	// InImport is set inside a parenthesized import.
	InImport bool
}

// Advance returns the state that follows a line of the given kind.
func (s LineState) Advance(line string, kind LineKind) LineState {
	switch kind {
	case KindStringOpen:
		s.Quote = openQuote(line)
	case KindStringClose:
		s.Quote = ""
	case KindImportOpen:
		s.InImport = true
	case KindImportClose:
		s.InImport = false
	case KindSuppressed:
		s.InImport = opensParen(codePart(line))
	}

	return s
}

var (
	importPattern      = regexp.MustCompile(`^\s*(?:from\s+\S+\s+)?import(?:\s|\()[^'"]*$`)
	guardPattern       = regexp.MustCompile(`^\s*(?:try|except\b[^:]*)\s*:\s*(?:#.*)?$`)
	typingGuardPattern = regexp.MustCompile(`^if\s+(?:typing\.)?TYPE_CHECKING\s*:\s*(?:#.*)?$`)
	docstringPattern   = regexp.MustCompile(`^\s*[rRuUbBfF]{0,2}("""|''')`)
	ignoreMarker       = regexp.MustCompile(`#\s?noqa:.*?autoimport`)
	fmtSkipMarker      = regexp.MustCompile(`#\s*fmt:\s*skip`)
)

// Classify returns the kind of line given the state left by the previous line.
func Classify(line string, st LineState) LineKind {
	if st.Quote != "" {
		if strings.Contains(line, st.Quote) {
			return KindStringClose
		}

		return KindStringBody
	}

	if st.InImport {
		if strings.Contains(codePart(line), ")") {
			return KindImportClose
		}

		return KindImportBody
	}

	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return KindBlank
	case typingGuardPattern.MatchString(strings.TrimRight(line, " \t")):
		return KindTypingGuard
	case strings.HasPrefix(trimmed, "#"):
		return KindComment
	}

	if quote := openQuote(line); quote != "" {
		if strings.Count(line, quote)%2 == 1 {
			return KindStringOpen
		}

		if docstringPattern.MatchString(line) {
			return KindDocstring
		}

		return KindCode
	}

	if guardPattern.MatchString(line) {
		return KindGuard
	}

	return classifyImport(line)
}

func classifyImport(line string) LineKind {
	head, tail, compound := strings.Cut(codePart(line), ";")
	if strings.Contains(head, "=") || !importPattern.MatchString(head) {
		return KindCode
	}

	if IsSuppressed(line) {
		return KindSuppressed
	}

	if compound && strings.TrimSpace(tail) != "" {
		return KindImportCompound
	}

	if opensParen(head) {
		return KindImportOpen
	}

	return KindImport
}

// IsSuppressed reports whether the line carries an ignore or fmt: skip marker.
func IsSuppressed(line string) bool {
	return ignoreMarker.MatchString(line) || fmtSkipMarker.MatchString(line)
}

// openQuote returns the first triple-quote delimiter on the line.
func openQuote(line string) string {
	dq := strings.Index(line, `"""`)
	sq := strings.Index(line, `'''`)

	switch {
	case dq < 0 && sq < 0:
		return ""
	case sq < 0 || (dq >= 0 && dq < sq):
		return `"""`
	default:
		return `'''`
	}
}

// codePart strips a trailing comment. Import lines carry no string literals,
// so the first "#" starts the comment.
func codePart(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}

	return line
}

func opensParen(code string) bool {
	return strings.Count(code, "(") > strings.Count(code, ")")
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
