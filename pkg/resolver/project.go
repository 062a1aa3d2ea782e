package resolver

import (
	"cmp"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
)

// PyprojectFile marks a project root.
const PyprojectFile = "pyproject.toml"

const (
	projectCacheSize = 64
	initModule       = "__init__"
	allName          = "__all__"
)

// FindRoot returns the nearest directory at or above start holding a
// pyproject.toml, or start itself when there is none.
func FindRoot(start string) string {
	for dir := start; ; {
		if isFile(filepath.Join(dir, PyprojectFile)) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}

		dir = parent
	}
}

type pyproject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// PackageName returns the import name of the package developed in root.
func PackageName(root string) string {
	var meta pyproject

	name := ""
	if _, err := toml.DecodeFile(filepath.Join(root, PyprojectFile), &meta); err == nil {
		name = cmp.Or(meta.Project.Name, meta.Tool.Poetry.Name)
	}

	if name == "" {
		name = filepath.Base(root)
	}

	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

// PackageDir locates the package sources under root, trying the flat and
// src layouts with the name as given and lowercased.
func PackageDir(root, pkg string) (string, bool) {
	for _, name := range slices.Compact([]string{pkg, strings.ToLower(pkg)}) {
		for _, dir := range []string{filepath.Join(root, name), filepath.Join(root, "src", name)} {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir, true
			}
		}
	}

	return "", false
}

// Projects resolves names against the symbols of the package developed in
// the project a file belongs to. Indexes are built on first use and cached
// per project root.
type Projects struct {
	parser  *pyparse.Parser
	logger  *slog.Logger
	indexes *lru.Cache[string, Table]
	group   singleflight.Group
}

// NewProjects creates a Projects resolver factory.
func NewProjects(parser *pyparse.Parser, logger *slog.Logger) *Projects {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// lru.New only fails for a non-positive size.
	indexes, _ := lru.New[string, Table](projectCacheSize)

	return &Projects{parser: parser, logger: logger, indexes: indexes}
}

// For returns the project resolver for the file at path.
func (p *Projects) For(path string) importmodel.Resolver {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	root := FindRoot(filepath.Dir(abs))

	return importmodel.ResolverFunc(func(name string) (string, bool) {
		return p.Index(root).Resolve(name)
	})
}

// Index returns the symbol table of the project rooted at root.
func (p *Projects) Index(root string) Table {
	if table, ok := p.indexes.Get(root); ok {
		return table
	}

	value, _, _ := p.group.Do(root, func() (any, error) {
		table := p.build(context.Background(), root)
		p.indexes.Add(root, table)

		return table, nil
	})

	table, _ := value.(Table)

	return table
}

type pyModule struct {
	dotted string
	path   string
	depth  int
}

func (p *Projects) build(ctx context.Context, root string) Table {
	table := make(Table)
	pkg := PackageName(root)

	dir, ok := PackageDir(root, pkg)
	if !ok {
		p.logger.DebugContext(ctx, "no package sources", "root", root, "package", pkg)

		return table
	}

	modules := collectModules(dir, pkg)
	submodules := make(map[string]string)

	for _, mod := range modules {
		symbols, exported, err := p.moduleSymbols(ctx, mod.path)
		if err != nil {
			p.logger.DebugContext(ctx, "skip unparsable module", "path", mod.path, "error", err)

			continue
		}

		if mod.dotted == pkg {
			for _, name := range exported {
				table[name] = "from " + pkg + " import " + name
			}
		}

		for _, name := range symbols {
			if _, taken := table[name]; !taken {
				table[name] = "from " + mod.dotted + " import " + name
			}
		}

		if parent, leaf, found := strings.Cut(mod.dotted, "."); found && parent == pkg && !strings.Contains(leaf, ".") {
			submodules[leaf] = "from " + pkg + " import " + leaf
		}
	}

	for name, statement := range submodules {
		if _, taken := table[name]; !taken {
			table[name] = statement
		}
	}

	p.logger.DebugContext(ctx, "indexed project", "root", root, "package", pkg, "symbols", len(table))

	return table
}

// collectModules lists the package's Python files, packages before their
// contents and shallow modules first.
func collectModules(dir, pkg string) []pyModule {
	var modules []pyModule

	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries are skipped.
		}

		if entry.IsDir() {
			if path != dir && (strings.HasPrefix(entry.Name(), ".") || entry.Name() == "__pycache__") {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".py" {
			return nil
		}

		rel, relErr := filepath.Rel(dir, strings.TrimSuffix(path, ".py"))
		if relErr != nil {
			return nil //nolint:nilerr // Outside the package.
		}

		parts := append([]string{pkg}, strings.Split(filepath.ToSlash(rel), "/")...)
		if parts[len(parts)-1] == initModule {
			parts = parts[:len(parts)-1]
		}

		modules = append(modules, pyModule{dotted: strings.Join(parts, "."), path: path, depth: len(parts)})

		return nil
	})

	slices.SortStableFunc(modules, func(a, b pyModule) int {
		return cmp.Or(cmp.Compare(a.depth, b.depth), cmp.Compare(a.dotted, b.dotted))
	})

	return modules
}

// moduleSymbols returns the public top-level definitions of a module and the
// entries of its __all__.
func (p *Projects) moduleSymbols(ctx context.Context, path string) ([]string, []string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	tree, err := p.parser.Parse(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	var symbols, exported []string

	for _, stmt := range pyparse.NamedChildren(tree.Root()) {
		if stmt.Type() == "decorated_definition" {
			if def, ok := pyparse.Field(stmt, "definition"); ok {
				stmt = def
			}
		}

		switch stmt.Type() {
		case "function_definition", "class_definition":
			if name, ok := pyparse.Field(stmt, "name"); ok {
				symbols = append(symbols, tree.Text(name))
			}
		case "expression_statement":
			for _, expr := range pyparse.NamedChildren(stmt) {
				name, names := assignedName(tree, expr)

				switch {
				case name == allName:
					exported = append(exported, names...)
				case name != "" && !strings.HasPrefix(name, "_"):
					symbols = append(symbols, name)
				}
			}
		}
	}

	return symbols, exported, nil
}

// assignedName returns the identifier a module level assignment binds and,
// for a list or tuple of strings on the right, its entries.
func assignedName(tree *pyparse.Tree, expr sitter.Node) (string, []string) {
	if expr.Type() != "assignment" && expr.Type() != "augmented_assignment" {
		return "", nil
	}

	left, ok := pyparse.Field(expr, "left")
	if !ok || left.Type() != "identifier" {
		return "", nil
	}

	var entries []string

	if right, found := pyparse.Field(expr, "right"); found && (right.Type() == "list" || right.Type() == "tuple") {
		for _, item := range pyparse.NamedChildren(right) {
			if item.Type() != "string" {
				continue
			}

			if value := strings.Trim(tree.Text(item), `"'`); identifier.MatchString(value) {
				entries = append(entries, value)
			}
		}
	}

	return tree.Text(left), entries
}
