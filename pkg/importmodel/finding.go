// Package importmodel defines the data model shared by the import fixer, the
// diagnostic engine and the name resolvers.
package importmodel

import (
	"context"
	"strings"
)

// FindingKind classifies a diagnostic finding.
type FindingKind int

// Finding kinds.
const (
	// UndefinedReference is a name used but never bound in a visible scope.
	UndefinedReference FindingKind = iota + 1
	// UnusedBinding is an imported name that is never referenced.
	UnusedBinding
)

// String returns the kind name.
func (k FindingKind) String() string {
	switch k {
	case UndefinedReference:
		return "undefined"
	case UnusedBinding:
		return "unused"
	default:
		return "unknown"
	}
}

// Finding is a single diagnostic about an import-related name.
//
// For UndefinedReference, Name is the bare referenced name. For UnusedBinding,
// Name is the qualified imported name ("os", "os.path", ".model.Book") and
// Alias holds the locally bound name when the import used "as".
type Finding struct {
	Kind  FindingKind
	Name  string
	Alias string
	Line  int
}

// SplitQualifiedName splits a dotted name into everything before the last
// segment and the last segment. Leading relative dots stay with the package:
// ".x" yields (".", "x") and "..a.b" yields ("..a", "b").
func SplitQualifiedName(name string) (pkg, object string) {
	trimmed := strings.TrimLeft(name, ".")
	dots := name[:len(name)-len(trimmed)]

	idx := strings.LastIndexByte(trimmed, '.')
	if idx < 0 {
		return dots, trimmed
	}

	return dots + trimmed[:idx], trimmed[idx+1:]
}

//go:generate go tool mockgen -source=finding.go -destination=mocks/finding.gen.go -package=mocks

// Engine reports undefined and unused names in a Python source text.
type Engine interface {
	Diagnose(ctx context.Context, source string) ([]Finding, error)
}

// Resolver maps a bare name to the import statement that binds it.
type Resolver interface {
	Resolve(name string) (statement string, ok bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (string, bool)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (string, bool) {
	return f(name)
}
