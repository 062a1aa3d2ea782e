// Package pyflakes reports undefined names and unused imports in Python
// modules. It is a static scope analysis over the tree-sitter syntax tree and
// never executes the code it inspects.
package pyflakes

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
)

// ErrSyntax is returned when the module does not parse cleanly.
var ErrSyntax = errors.New("invalid python syntax")

// Engine is the tree-sitter backed importmodel.Engine.
type Engine struct {
	parser *pyparse.Parser
}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{parser: pyparse.NewParser()}
}

var _ importmodel.Engine = (*Engine)(nil)

// Diagnose returns every undefined reference and unused import binding in
// source, ordered by line.
func (e *Engine) Diagnose(ctx context.Context, source string) ([]importmodel.Finding, error) {
	tree, err := e.parser.Parse(ctx, []byte(source))
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if line, bad := firstError(tree.Root()); bad {
		return nil, fmt.Errorf("%w: line %d", ErrSyntax, line)
	}

	w := newWalker(tree)
	w.children(tree.Root(), w.module)

	findings := w.resolve()

	slices.SortStableFunc(findings, func(a, b importmodel.Finding) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Name, b.Name))
	})

	return findings, nil
}

// firstError returns the line of the first ERROR or MISSING node. Tree-sitter
// recovers from some errors by inserting a zero-width MISSING token instead of
// an ERROR node, so both are checked.
func firstError(n sitter.Node) (int, bool) {
	if n.IsError() || n.IsMissing() {
		return pyparse.Line(n), true
	}

	if !n.HasError() {
		return 0, false
	}

	for _, child := range pyparse.Children(n) {
		if line, bad := firstError(child); bad {
			return line, true
		}
	}

	return pyparse.Line(n), true
}

// resolve matches loads against bindings, then collects what stayed unused.
func (w *walker) resolve() []importmodel.Finding {
	var findings []importmodel.Finding

	for _, u := range w.uses {
		if u.name == "locals" && u.scope.kind != classScope && !u.soft {
			u.scope.markAllUsed()
		}

		if found := u.scope.lookup(u.name); found != nil {
			found.markUsed(u.name)

			continue
		}

		if u.soft || w.star || isBuiltin(u.name) {
			continue
		}

		findings = append(findings, importmodel.Finding{
			Kind: importmodel.UndefinedReference,
			Name: u.name,
			Line: u.line,
		})
	}

	for _, exp := range w.exports {
		if _, ok := w.module.bindings[exp.name]; ok {
			w.module.markUsed(exp.name)

			continue
		}

		if !w.star {
			findings = append(findings, importmodel.Finding{
				Kind: importmodel.UndefinedReference,
				Name: exp.name,
				Line: exp.line,
			})
		}
	}

	for _, sc := range w.scopes {
		findings = append(findings, unusedImports(sc)...)
	}

	return findings
}

func unusedImports(sc *scope) []importmodel.Finding {
	var findings []importmodel.Finding

	for _, list := range sc.bindings {
		for _, b := range list {
			if !b.imported || b.used || b.future {
				continue
			}

			findings = append(findings, importmodel.Finding{
				Kind:  importmodel.UnusedBinding,
				Name:  b.qualified,
				Alias: b.alias,
				Line:  b.line,
			})
		}
	}

	return findings
}
