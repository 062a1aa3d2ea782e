package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
)

// NamespaceFile is the name of the user and project level namespace files.
const NamespaceFile = ".autoimport_ns.py"

// NamespacePaths returns the default namespace files: the one in the home
// directory and the one in dir. Later files override earlier ones.
func NamespacePaths(home, dir string) []string {
	var paths []string

	if home != "" {
		paths = append(paths, filepath.Join(home, NamespaceFile))
	}

	return append(paths, filepath.Join(dir, NamespaceFile))
}

// LoadNamespace reads the import statements of the given files into a table
// keyed by the name each statement binds. Missing files are skipped.
func LoadNamespace(ctx context.Context, parser *pyparse.Parser, paths ...string) (Table, error) {
	table := make(Table)

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("read namespace file %s: %w", path, err)
		}

		tree, err := parser.Parse(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("parse namespace file %s: %w", path, err)
		}

		collectNamespace(tree, table)
		tree.Close()
	}

	return table, nil
}

func collectNamespace(tree *pyparse.Tree, table Table) {
	for _, stmt := range pyparse.NamedChildren(tree.Root()) {
		switch stmt.Type() {
		case "import_statement":
			for _, item := range pyparse.NamedChildren(stmt) {
				name, alias := importItem(tree, item)
				if name == "" {
					continue
				}

				if alias != "" {
					table[alias] = fmt.Sprintf("import %s as %s", name, alias)
				} else {
					bound, _, _ := strings.Cut(name, ".")
					table[bound] = "import " + name
				}
			}
		case "import_from_statement":
			moduleNode, ok := pyparse.Field(stmt, "module_name")
			if !ok {
				continue
			}

			module := tree.Text(moduleNode)

			for _, item := range pyparse.NamedChildren(stmt) {
				if pyparse.Same(item, moduleNode) {
					continue
				}

				name, alias := importItem(tree, item)
				if name == "" {
					continue
				}

				if alias != "" {
					table[alias] = fmt.Sprintf("from %s import %s as %s", module, name, alias)
				} else {
					table[name] = fmt.Sprintf("from %s import %s", module, name)
				}
			}
		}
	}
}

func importItem(tree *pyparse.Tree, item sitter.Node) (string, string) {
	switch item.Type() {
	case "dotted_name":
		return tree.Text(item), ""
	case "aliased_import":
		name, okName := pyparse.Field(item, "name")
		alias, okAlias := pyparse.Field(item, "alias")

		if okName && okAlias {
			return tree.Text(name), tree.Text(alias)
		}
	}

	return "", ""
}
