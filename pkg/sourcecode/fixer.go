package sourcecode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
)

// ErrNoEngine is returned by NewFixer when no diagnostic engine is given.
var ErrNoEngine = errors.New("sourcecode: diagnostic engine is required")

// Result describes the outcome of one Fix call.
type Result struct {
	// Text is the fixed source. It is the input verbatim when nothing changed.
	Text    string
	Changed bool
	// Moved counts import statements relocated from the body.
	Moved int
	// Added lists the import statements appended, in order.
	Added []string
	// Removed lists the qualified names whose bindings were removed.
	Removed []string
	// Unresolved lists undefined names no resolver could map.
	Unresolved []string
}

// Fixer adds missing imports, removes unused ones and moves stray imports to
// the top of a Python source text. A Fixer is immutable and safe for
// concurrent use.
type Fixer struct {
	engine     importmodel.Engine
	resolver   importmodel.Resolver
	common     map[string]string
	logger     *slog.Logger
	moveToTop  bool
	keepUnused bool
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithResolver sets the resolver consulted after the common statements.
func WithResolver(r importmodel.Resolver) Option {
	return func(f *Fixer) {
		f.resolver = r
	}
}

// WithCommonStatements sets the name to import statement table consulted
// before the resolver.
func WithCommonStatements(table map[string]string) Option {
	return func(f *Fixer) {
		f.common = maps.Clone(table)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fixer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMoveToTop toggles relocation of imports found in the body.
func WithMoveToTop(enabled bool) Option {
	return func(f *Fixer) {
		f.moveToTop = enabled
	}
}

// WithKeepUnused disables removal of unused imports.
func WithKeepUnused(keep bool) Option {
	return func(f *Fixer) {
		f.keepUnused = keep
	}
}

// NewFixer creates a Fixer that diagnoses sources with engine.
func NewFixer(engine importmodel.Engine, opts ...Option) (*Fixer, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}

	f := &Fixer{
		engine:    engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		moveToTop: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fix runs one forward pass over source: scan, relocate, diagnose, edit and
// join. Unresolvable names and unmatched removals are skipped silently.
func (f *Fixer) Fix(ctx context.Context, source string) (Result, error) {
	doc := Scan(source)

	var res Result

	if f.moveToTop {
		res.Moved = doc.Relocate()
	}

	joined, layout := doc.render()

	findings, err := f.engine.Diagnose(ctx, joined)
	if err != nil {
		return Result{}, fmt.Errorf("diagnose: %w", err)
	}

	f.apply(ctx, doc, findings, layout, &res)

	if res.Moved == 0 && len(res.Added) == 0 && len(res.Removed) == 0 {
		res.Text = source

		return res, nil
	}

	res.Text = doc.String()
	res.Changed = res.Text != source

	return res, nil
}

func (f *Fixer) apply(ctx context.Context, doc *Document, findings []importmodel.Finding, layout Layout, res *Result) {
	var (
		order   []string
		outside = make(map[string]bool)
	)

	for _, fd := range findings {
		switch fd.Kind {
		case importmodel.UndefinedReference:
			// Names referenced only inside the TYPE_CHECKING block are left alone.
			inTyping := fd.Line > 0 && layout.Typing.Contains(fd.Line)

			if _, seen := outside[fd.Name]; !seen {
				order = append(order, fd.Name)
			}

			outside[fd.Name] = outside[fd.Name] || !inTyping
		case importmodel.UnusedBinding:
			if f.keepUnused || (fd.Line > 0 && !layout.Imports.Contains(fd.Line)) {
				continue
			}

			if doc.RemoveBinding(fd.Name, fd.Alias) {
				f.logger.DebugContext(ctx, "removed unused import", "name", fd.Name, "alias", fd.Alias)
				res.Removed = append(res.Removed, fd.Name)
			}
		}
	}

	for _, name := range order {
		if !outside[name] {
			continue
		}

		stmt, ok := f.resolve(name)
		if !ok {
			f.logger.DebugContext(ctx, "unresolved name", "name", name)
			res.Unresolved = append(res.Unresolved, name)

			continue
		}

		if doc.AddImport(stmt) {
			f.logger.DebugContext(ctx, "added import", "name", name, "statement", stmt)
			res.Added = append(res.Added, stmt)
		}
	}

	if res.Moved > 0 {
		f.logger.DebugContext(ctx, "relocated imports", "count", res.Moved)
	}
}

func (f *Fixer) resolve(name string) (string, bool) {
	if stmt, ok := f.common[name]; ok && stmt != "" {
		return stmt, true
	}

	if f.resolver == nil {
		return "", false
	}

	stmt, ok := f.resolver.Resolve(name)

	return stmt, ok && stmt != ""
}
