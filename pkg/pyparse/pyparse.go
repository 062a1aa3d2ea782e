// Package pyparse wraps the tree-sitter Python grammar with a pooled parser
// and small node helpers shared by the diagnostic engine and the symbol index.
package pyparse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fortio.org/safecast"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/python"
)

var (
	errPoolType   = errors.New("pyparse: unexpected parser type in pool")
	errNoRootNode = errors.New("pyparse: tree has no root node")
)

var language = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(python.GetLanguage())
})

// Parser parses Python source. It is safe for concurrent use.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser backed by a pool of tree-sitter parsers.
func NewParser() *Parser {
	lang := language()

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Tree is a parsed source together with the bytes it was parsed from.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Parse parses src. The caller must Close the returned tree.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse python: %w", err)
	}

	if tree.RootNode().IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	return &Tree{tree: tree, Source: src}, nil
}

// Root returns the module node.
func (t *Tree) Root() sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Text returns the source text covered by n.
func (t *Tree) Text(n sitter.Node) string {
	start, errStart := safecast.Conv[int](n.StartByte())
	end, errEnd := safecast.Conv[int](n.EndByte())

	if errStart != nil || errEnd != nil || start > end || end > len(t.Source) {
		return ""
	}

	return string(t.Source[start:end])
}

// Line returns the 1-based line n starts on.
func Line(n sitter.Node) int {
	row, err := safecast.Conv[int](n.StartPoint().Row)
	if err != nil {
		return 0
	}

	return row + 1
}

// Field returns the child stored under field name, or false when absent.
func Field(n sitter.Node, name string) (sitter.Node, bool) {
	child := n.ChildByFieldName(name)

	return child, !child.IsNull()
}

// Same reports whether a and b cover the same source range and type.
func Same(a, b sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// NamedChildren returns the named children of n.
func NamedChildren(n sitter.Node) []sitter.Node {
	children := make([]sitter.Node, 0, n.NamedChildCount())
	for idx := range n.NamedChildCount() {
		children = append(children, n.NamedChild(idx))
	}

	return children
}

// Children returns every child of n, anonymous tokens included.
func Children(n sitter.Node) []sitter.Node {
	children := make([]sitter.Node, 0, n.ChildCount())
	for idx := range n.ChildCount() {
		children = append(children, n.Child(idx))
	}

	return children
}
