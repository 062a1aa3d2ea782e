package resolver

import (
	_ "embed"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:embed stdlib.txt
var stdlibList string

var stdlibNames = wordSet(stdlibList)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const moduleCacheSize = 4096

// Modules resolves names that are importable top-level modules: the
// standard library plus anything found in the search directories.
type Modules struct {
	dirs  []string
	found *lru.Cache[string, bool]
}

// NewModules creates a module resolver over dirs, searched in order.
func NewModules(dirs ...string) *Modules {
	// lru.New only fails for a non-positive size.
	found, _ := lru.New[string, bool](moduleCacheSize)

	return &Modules{dirs: dirs, found: found}
}

// Resolve implements importmodel.Resolver.
func (m *Modules) Resolve(name string) (string, bool) {
	if !identifier.MatchString(name) {
		return "", false
	}

	if _, ok := stdlibNames[name]; ok {
		return "import " + name, true
	}

	exists, cached := m.found.Get(name)
	if !cached {
		exists = m.lookup(name)
		m.found.Add(name, exists)
	}

	if !exists {
		return "", false
	}

	return "import " + name, true
}

func (m *Modules) lookup(name string) bool {
	for _, dir := range m.dirs {
		for _, candidate := range []string{
			filepath.Join(dir, name+".py"),
			filepath.Join(dir, name+".pyi"),
			filepath.Join(dir, name, "__init__.py"),
			filepath.Join(dir, name, "__init__.pyi"),
		} {
			if isFile(candidate) {
				return true
			}
		}

		if matches, err := filepath.Glob(filepath.Join(dir, name+".*.so")); err == nil && len(matches) > 0 {
			return true
		}
	}

	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// SearchPaths returns the module search directories: extra first, then
// PYTHONPATH entries, then the site-packages of the active virtualenv.
func SearchPaths(extra []string, getenv func(string) string) []string {
	dirs := make([]string, 0, len(extra))
	dirs = append(dirs, extra...)

	if pythonPath := getenv("PYTHONPATH"); pythonPath != "" {
		for _, dir := range filepath.SplitList(pythonPath) {
			if strings.TrimSpace(dir) != "" {
				dirs = append(dirs, dir)
			}
		}
	}

	if venv := getenv("VIRTUAL_ENV"); venv != "" {
		sitePackages, err := filepath.Glob(filepath.Join(venv, "lib", "python*", "site-packages"))
		if err == nil {
			dirs = append(dirs, sitePackages...)
		}

		dirs = append(dirs, filepath.Join(venv, "Lib", "site-packages"))
	}

	return dirs
}
