package pyflakes

import (
	"regexp"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
)

// identPattern picks names out of a string annotation, skipping attribute parts.
var identPattern = regexp.MustCompile(`(?:^|[^.\w])([A-Za-z_]\w*)`)

const wildcard = "_"

type export struct {
	name string
	line int
}

// walker records bindings and loads for one module.
type walker struct {
	tree        *pyparse.Tree
	module      *scope
	scopes      []*scope
	uses        []use
	exports     []export
	star        bool
	annotation  int
}

func newWalker(tree *pyparse.Tree) *walker {
	module := newScope(moduleScope, nil)

	return &walker{tree: tree, module: module, scopes: []*scope{module}}
}

func (w *walker) open(kind scopeKind, parent *scope) *scope {
	sc := newScope(kind, parent)
	w.scopes = append(w.scopes, sc)

	return sc
}

func (w *walker) text(n sitter.Node) string {
	return w.tree.Text(n)
}

func (w *walker) load(sc *scope, n sitter.Node) {
	w.uses = append(w.uses, use{scope: sc, name: w.text(n), line: pyparse.Line(n)})
}

func (w *walker) store(sc *scope, n sitter.Node) {
	name := w.text(n)
	target := sc.target(name)
	target.bindings[name] = append(target.bindings[name], &binding{line: pyparse.Line(n)})
}

func (w *walker) storeImport(sc *scope, name string, b *binding) {
	target := sc.target(name)
	target.bindings[name] = append(target.bindings[name], b)
}

func (w *walker) children(n sitter.Node, sc *scope) {
	for _, child := range pyparse.NamedChildren(n) {
		w.visit(child, sc)
	}
}

func (w *walker) field(n sitter.Node, name string, sc *scope) {
	if child, ok := pyparse.Field(n, name); ok {
		w.visit(child, sc)
	}
}

//nolint:gocyclo,cyclop // One case per Python construct.
func (w *walker) visit(n sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier":
		w.load(sc, n)
	case "attribute":
		w.field(n, "object", sc)
	case "keyword_argument":
		w.field(n, "value", sc)
	case "dotted_name":
		if first := n.NamedChild(0); !first.IsNull() {
			w.load(sc, first)
		}
	case "import_statement":
		w.importStatement(n, sc)
	case "import_from_statement":
		w.importFrom(n, sc)
	case "future_import_statement":
		w.futureImport(n, sc)
	case "function_definition":
		w.function(n, sc)
	case "class_definition":
		w.class(n, sc)
	case "lambda":
		w.lambda(n, sc)
	case "assignment":
		w.assignment(n, sc)
	case "augmented_assignment":
		w.augmented(n, sc)
	case "for_statement":
		w.forStatement(n, sc)
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		w.comprehension(n, sc)
	case "named_expression":
		w.walrus(n, sc)
	case "with_item", "except_clause", "except_group_clause", "as_pattern":
		w.withAs(n, sc)
	case "global_statement":
		w.declare(n, sc.globals)
	case "nonlocal_statement":
		w.declare(n, sc.nonlocals)
	case "match_statement":
		w.match(n, sc)
	case "type_alias_statement":
		w.typeAlias(n, sc)
	case "type":
		w.annotate(n, sc)
	case "string":
		w.str(n, sc)
	default:
		w.children(n, sc)
	}
}

// bindTargets stores every name of an assignment target.
func (w *walker) bindTargets(n sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier":
		w.store(sc, n)
	case "attribute", "subscript":
		w.visit(n, sc)
	case "type":
		w.annotate(n, sc)
	default:
		for _, child := range pyparse.NamedChildren(n) {
			w.bindTargets(child, sc)
		}
	}
}

func (w *walker) importStatement(n sitter.Node, sc *scope) {
	for _, item := range pyparse.NamedChildren(n) {
		line := pyparse.Line(item)

		switch item.Type() {
		case "dotted_name":
			qualified := w.text(item)
			bound, _, _ := strings.Cut(qualified, ".")
			w.storeImport(sc, bound, &binding{line: line, imported: true, qualified: qualified})
		case "aliased_import":
			name, okName := pyparse.Field(item, "name")
			alias, okAlias := pyparse.Field(item, "alias")

			if okName && okAlias {
				w.storeImport(sc, w.text(alias), &binding{
					line: line, imported: true, qualified: w.text(name), alias: w.text(alias),
				})
			}
		}
	}
}

func (w *walker) importFrom(n sitter.Node, sc *scope) {
	moduleNode, ok := pyparse.Field(n, "module_name")
	if !ok {
		return
	}

	module := w.text(moduleNode)

	for _, item := range pyparse.NamedChildren(n) {
		if pyparse.Same(item, moduleNode) {
			continue
		}

		line := pyparse.Line(item)

		switch item.Type() {
		case "wildcard_import":
			w.star = true
		case "dotted_name":
			name := w.text(item)
			w.storeImport(sc, name, &binding{line: line, imported: true, qualified: joinModule(module, name)})
		case "aliased_import":
			name, okName := pyparse.Field(item, "name")
			alias, okAlias := pyparse.Field(item, "alias")

			if okName && okAlias {
				w.storeImport(sc, w.text(alias), &binding{
					line:      line,
					imported:  true,
					qualified: joinModule(module, w.text(name)),
					alias:     w.text(alias),
				})
			}
		}
	}
}

func joinModule(module, name string) string {
	if strings.HasSuffix(module, ".") {
		return module + name
	}

	return module + "." + name
}

func (w *walker) futureImport(n sitter.Node, sc *scope) {
	for _, item := range pyparse.NamedChildren(n) {
		name := item
		if item.Type() == "aliased_import" {
			alias, ok := pyparse.Field(item, "alias")
			if !ok {
				continue
			}

			name = alias
		}

		if name.Type() != "dotted_name" && name.Type() != "identifier" {
			continue
		}

		w.storeImport(sc, w.text(name), &binding{line: pyparse.Line(item), future: true, used: true})
	}
}

func (w *walker) function(n sitter.Node, sc *scope) {
	if name, ok := pyparse.Field(n, "name"); ok {
		w.store(sc, name)
	}

	inner := w.open(functionScope, sc)

	if params, ok := pyparse.Field(n, "type_parameters"); ok {
		w.typeParams(params, inner)
	}

	if params, ok := pyparse.Field(n, "parameters"); ok {
		w.params(params, sc, inner)
	}

	if ret, ok := pyparse.Field(n, "return_type"); ok {
		w.annotate(ret, sc)
	}

	w.field(n, "body", inner)
}

func (w *walker) class(n sitter.Node, sc *scope) {
	if name, ok := pyparse.Field(n, "name"); ok {
		w.store(sc, name)
	}

	inner := w.open(classScope, sc)

	if params, ok := pyparse.Field(n, "type_parameters"); ok {
		w.typeParams(params, inner)
	}

	w.field(n, "superclasses", sc)
	w.field(n, "body", inner)
}

func (w *walker) lambda(n sitter.Node, sc *scope) {
	inner := w.open(functionScope, sc)

	if params, ok := pyparse.Field(n, "parameters"); ok {
		w.params(params, sc, inner)
	}

	w.field(n, "body", inner)
}

// params binds parameter names in inner and evaluates defaults and
// annotations in outer.
func (w *walker) params(n sitter.Node, outer, inner *scope) {
	for _, param := range pyparse.NamedChildren(n) {
		switch param.Type() {
		case "identifier":
			w.store(inner, param)
		case "default_parameter", "typed_default_parameter":
			if name, ok := pyparse.Field(param, "name"); ok {
				w.bindTargets(name, inner)
			}

			if typ, ok := pyparse.Field(param, "type"); ok {
				w.annotate(typ, outer)
			}

			w.field(param, "value", outer)
		case "typed_parameter":
			for _, part := range pyparse.NamedChildren(param) {
				if part.Type() == "type" {
					w.annotate(part, outer)
				} else {
					w.bindTargets(part, inner)
				}
			}
		default:
			w.bindTargets(param, inner)
		}
	}
}

// typeParams binds the leading name of every type parameter.
func (w *walker) typeParams(n sitter.Node, sc *scope) {
	for _, param := range pyparse.NamedChildren(n) {
		if ident, ok := firstIdentifier(param); ok {
			w.store(sc, ident)
		}
	}
}

func firstIdentifier(n sitter.Node) (sitter.Node, bool) {
	if n.Type() == "identifier" {
		return n, true
	}

	for _, child := range pyparse.NamedChildren(n) {
		if ident, ok := firstIdentifier(child); ok {
			return ident, true
		}
	}

	return n, false
}

func (w *walker) assignment(n sitter.Node, sc *scope) {
	left, hasLeft := pyparse.Field(n, "left")
	right, hasRight := pyparse.Field(n, "right")

	if hasRight {
		w.visit(right, sc)
	}

	if typ, ok := pyparse.Field(n, "type"); ok {
		w.annotate(typ, sc)
	}

	if !hasLeft {
		return
	}

	w.bindTargets(left, sc)

	if hasRight && sc == w.module && left.Type() == "identifier" && w.text(left) == "__all__" {
		w.collectExports(right)
	}
}

func (w *walker) augmented(n sitter.Node, sc *scope) {
	left, hasLeft := pyparse.Field(n, "left")
	right, hasRight := pyparse.Field(n, "right")

	if hasRight {
		w.visit(right, sc)
	}

	if !hasLeft {
		return
	}

	if left.Type() != "identifier" {
		w.visit(left, sc)

		return
	}

	w.load(sc, left)
	w.store(sc, left)

	if hasRight && sc == w.module && w.text(left) == "__all__" {
		w.collectExports(right)
	}
}

// collectExports records the string entries of an __all__ list or tuple.
func (w *walker) collectExports(n sitter.Node) {
	switch n.Type() {
	case "list", "tuple", "parenthesized_expression":
		for _, item := range pyparse.NamedChildren(n) {
			w.collectExports(item)
		}
	case "string":
		if name, ok := stringValue(w.text(n)); ok {
			w.exports = append(w.exports, export{name: name, line: pyparse.Line(n)})
		}
	}
}

func (w *walker) forStatement(n sitter.Node, sc *scope) {
	w.field(n, "right", sc)

	if left, ok := pyparse.Field(n, "left"); ok {
		w.bindTargets(left, sc)
	}

	w.field(n, "body", sc)
	w.field(n, "alternative", sc)
}

func (w *walker) comprehension(n sitter.Node, sc *scope) {
	inner := w.open(comprehensionScope, sc)

	for _, child := range pyparse.NamedChildren(n) {
		if child.Type() != "for_in_clause" {
			w.visit(child, inner)

			continue
		}

		if left, ok := pyparse.Field(child, "left"); ok {
			w.bindTargets(left, inner)
		}

		w.field(child, "right", inner)
	}
}

// walrus binds in the nearest scope that is not a comprehension.
func (w *walker) walrus(n sitter.Node, sc *scope) {
	w.field(n, "value", sc)

	target := sc
	for target.kind == comprehensionScope && target.parent != nil {
		target = target.parent
	}

	if name, ok := pyparse.Field(n, "name"); ok {
		w.store(target, name)
	}
}

// withAs visits a node whose first named child after an "as" keyword is a
// binding target.
func (w *walker) withAs(n sitter.Node, sc *scope) {
	afterAs := false

	for _, child := range pyparse.Children(n) {
		if !child.IsNamed() {
			if child.Type() == "as" {
				afterAs = true
			}

			continue
		}

		if afterAs {
			w.bindTargets(child, sc)

			afterAs = false

			continue
		}

		w.visit(child, sc)
	}
}

func (w *walker) declare(n sitter.Node, names map[string]bool) {
	for _, child := range pyparse.NamedChildren(n) {
		if child.Type() == "identifier" {
			names[w.text(child)] = true
		}
	}
}

func (w *walker) typeAlias(n sitter.Node, sc *scope) {
	if left, ok := pyparse.Field(n, "left"); ok {
		if ident, found := firstIdentifier(left); found {
			w.store(sc, ident)
		}
	}

	if right, ok := pyparse.Field(n, "right"); ok {
		w.annotate(right, sc)
	}
}

func (w *walker) annotate(n sitter.Node, sc *scope) {
	w.annotation++
	defer func() { w.annotation-- }()

	w.children(n, sc)
}

// str treats string annotations as soft loads of the names they mention.
func (w *walker) str(n sitter.Node, sc *scope) {
	if w.annotation == 0 {
		w.children(n, sc)

		return
	}

	value, ok := stringValue(w.text(n))
	if !ok {
		return
	}

	line := pyparse.Line(n)
	for _, match := range identPattern.FindAllStringSubmatch(value, -1) {
		w.uses = append(w.uses, use{scope: sc, name: match[1], line: line, soft: true})
	}
}

// stringValue strips prefix and quotes from a plain string literal.
func stringValue(literal string) (string, bool) {
	start := strings.IndexAny(literal, `"'`)
	if start < 0 {
		return "", false
	}

	if strings.ContainsAny(strings.ToLower(literal[:start]), "f") {
		return "", false
	}

	body := literal[start:]
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(quote) && strings.HasPrefix(body, quote) && strings.HasSuffix(body, quote) {
			return body[len(quote) : len(body)-len(quote)], true
		}
	}

	return "", false
}

func (w *walker) match(n sitter.Node, sc *scope) {
	w.field(n, "subject", sc)

	for _, child := range pyparse.NamedChildren(n) {
		if child.Type() == "block" {
			for _, clause := range pyparse.NamedChildren(child) {
				w.caseClause(clause, sc)
			}
		}

		if child.Type() == "case_clause" {
			w.caseClause(child, sc)
		}
	}
}

func (w *walker) caseClause(n sitter.Node, sc *scope) {
	if n.Type() != "case_clause" {
		w.visit(n, sc)

		return
	}

	for _, child := range pyparse.NamedChildren(n) {
		if child.Type() == "case_pattern" {
			w.pattern(child, sc)
		} else {
			w.visit(child, sc)
		}
	}
}

// pattern binds capture names and loads value and class references.
func (w *walker) pattern(n sitter.Node, sc *scope) {
	switch n.Type() {
	case "identifier":
		if w.text(n) != wildcard {
			w.store(sc, n)
		}
	case "dotted_name":
		if n.NamedChildCount() == 1 {
			w.pattern(n.NamedChild(0), sc)
		} else {
			w.visit(n, sc)
		}
	case "class_pattern":
		for idx, child := range pyparse.NamedChildren(n) {
			if idx == 0 && child.Type() == "dotted_name" {
				w.visit(child, sc)

				continue
			}

			w.pattern(child, sc)
		}
	case "keyword_pattern":
		for idx, child := range pyparse.NamedChildren(n) {
			if idx > 0 {
				w.pattern(child, sc)
			}
		}
	case "as_pattern":
		w.patternAs(n, sc)
	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
	default:
		for _, child := range pyparse.NamedChildren(n) {
			w.pattern(child, sc)
		}
	}
}

func (w *walker) patternAs(n sitter.Node, sc *scope) {
	afterAs := false

	for _, child := range pyparse.Children(n) {
		switch {
		case !child.IsNamed():
			afterAs = afterAs || child.Type() == "as"
		case afterAs:
			w.bindTargets(child, sc)
		default:
			w.pattern(child, sc)
		}
	}
}
