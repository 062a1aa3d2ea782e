package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
)

// Options configures a Registry.
type Options struct {
	// Common maps names to statements and is consulted first.
	Common map[string]string
	// SearchPaths are directories searched for importable modules.
	SearchPaths []string
	// NamespaceFiles are Python files whose imports extend the namespace.
	NamespaceFiles []string
	Logger         *slog.Logger
}

// Registry builds the resolver chain for each fixed file. It is safe for
// concurrent use.
type Registry struct {
	common    Table
	modules   *Modules
	projects  *Projects
	namespace Table
}

// NewRegistry loads the namespace files and prepares the shared strategies.
func NewRegistry(ctx context.Context, parser *pyparse.Parser, opts Options) (*Registry, error) {
	namespace, err := LoadNamespace(ctx, parser, opts.NamespaceFiles...)
	if err != nil {
		return nil, fmt.Errorf("load namespace: %w", err)
	}

	return &Registry{
		common:    Common(opts.Common),
		modules:   NewModules(opts.SearchPaths...),
		projects:  NewProjects(parser, opts.Logger),
		namespace: namespace,
	}, nil
}

// For returns the chain for the file at path: common statements, modules,
// typing, the file's project symbols and the namespace files.
func (r *Registry) For(path string) importmodel.Resolver {
	return Chain{
		r.common,
		r.modules,
		Typing{},
		r.projects.For(path),
		r.namespace,
	}
}
