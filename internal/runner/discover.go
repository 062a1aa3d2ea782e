package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

const (
	pythonLanguage = "Python"
	initFile       = "__init__.py"
	cacheDir       = "__pycache__"
)

// Discover expands paths into the Python files to fix. Directories are
// walked recursively, skipping hidden, cache and vendored directories.
// Explicit files are kept whatever their extension. Missing paths are
// reported together after the rest has been collected.
func Discover(paths []string, ignoreInit bool) ([]string, error) {
	var (
		files []string
		errs  []error
	)

	seen := make(map[string]struct{})
	add := func(path string) {
		if ignoreInit && filepath.Base(path) == initFile {
			return
		}

		if _, dup := seen[path]; dup {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrMissingInput, err))

			continue
		}

		if !info.IsDir() {
			add(path)

			continue
		}

		if err := walkPython(path, add); err != nil {
			errs = append(errs, err)
		}
	}

	return files, errors.Join(errs...)
}

func walkPython(root string, add func(string)) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && skipDir(root, path, entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if isPython(path) {
			add(path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	return nil
}

func skipDir(root, path, name string) bool {
	if strings.HasPrefix(name, ".") || name == cacheDir {
		return true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return enry.IsVendor(filepath.ToSlash(rel) + "/")
}

func isPython(path string) bool {
	lang, _ := enry.GetLanguageByExtension(path)

	return lang == pythonLanguage
}
