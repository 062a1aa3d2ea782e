// Package runner reads, fixes and writes Python files. It owns file
// discovery, bounded parallelism and the check, diff and summary modes of
// the command line.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/autoimport/pkg/config"
	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
	"github.com/Sumatoshi-tech/autoimport/pkg/observability"
	"github.com/Sumatoshi-tech/autoimport/pkg/sourcecode"
	"github.com/Sumatoshi-tech/autoimport/pkg/textutil"
)

// StdinPath is the argument that selects standard input.
const StdinPath = "-"

const (
	stdinName = "<stdin>"
	skipLarge = "larger than max_file_size"
	skipBin   = "binary content"
)

var (
	// ErrNoInput is returned when no file or directory is given.
	ErrNoInput = errors.New("no input files")
	// ErrMissingInput wraps paths that do not exist.
	ErrMissingInput = errors.New("missing input")
	// ErrChangesNeeded is returned in check mode when a file would change.
	ErrChangesNeeded = errors.New("changes needed")
	// ErrNoEngine is returned by New without a diagnostic engine.
	ErrNoEngine = errors.New("runner: diagnostic engine is required")
)

// Mode selects what happens to a changed file.
type Mode int

const (
	// ModeWrite rewrites changed files in place.
	ModeWrite Mode = iota
	// ModeCheck writes nothing and fails when a file would change.
	ModeCheck
	// ModeDiff prints a unified diff instead of writing.
	ModeDiff
)

// ResolverSource returns the resolver chain for one file.
type ResolverSource interface {
	For(path string) importmodel.Resolver
}

// Options configures a Runner.
type Options struct {
	Config    *config.Config
	Engine    importmodel.Engine
	Resolvers ResolverSource
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Metrics   *observability.FixMetrics
	// Out receives diffs and fixed stdin text.
	Out   io.Writer
	Mode  Mode
	Jobs  int
	Color bool
}

// Runner fixes files with a shared engine and resolver registry.
type Runner struct {
	opts Options
}

// New validates opts and fills in defaults.
func New(opts Options) (*Runner, error) {
	if opts.Engine == nil {
		return nil, ErrNoEngine
	}

	if opts.Config == nil {
		opts.Config = config.Default()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("autoimport")
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}

	return &Runner{opts: opts}, nil
}

// Run fixes every Python file under paths. Per-file failures are joined
// into the returned error; the report still lists every file. In check
// mode the error wraps ErrChangesNeeded when any file would change.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	files, discoverErr := Discover(paths, r.opts.Config.IgnoreInitModules())

	results := make([]FileResult, len(files))

	if len(files) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(r.opts.Jobs, len(files)))

		for idx, path := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				results[idx] = r.fixFile(gctx, path)

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("fix files: %w", err)
		}
	}

	report := &Report{Files: results}

	errs := []error{discoverErr}

	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
		}

		if res.Diff != "" {
			if _, err := io.WriteString(r.opts.Out, res.Diff); err != nil {
				errs = append(errs, fmt.Errorf("write diff: %w", err))
			}
		}
	}

	if r.opts.Mode == ModeCheck {
		if changed := report.Changed(); changed > 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrChangesNeeded, plural(changed, "file")))
		}
	}

	return report, errors.Join(errs...)
}

// RunStdin fixes the source read from in. In write mode the fixed text is
// always written to Out, changed or not.
func (r *Runner) RunStdin(ctx context.Context, in io.Reader) (*Report, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	res := r.fixSource(ctx, filepath.Join(cwd, stdinName), stdinName, string(data))
	res.Lines = textutil.CountLines(data)
	report := &Report{Files: []FileResult{res}}

	if res.Err != nil {
		return report, res.Err
	}

	switch r.opts.Mode {
	case ModeWrite:
		if _, err := io.WriteString(r.opts.Out, res.Fix.Text); err != nil {
			return report, fmt.Errorf("write stdout: %w", err)
		}
	case ModeDiff:
		if _, err := io.WriteString(r.opts.Out, res.Diff); err != nil {
			return report, fmt.Errorf("write diff: %w", err)
		}
	case ModeCheck:
		if res.Status == observability.StatusChanged {
			return report, fmt.Errorf("%w: %s", ErrChangesNeeded, stdinName)
		}
	}

	return report, nil
}

func (r *Runner) fixFile(ctx context.Context, path string) FileResult {
	info, err := os.Stat(path)
	if err != nil {
		return r.finish(ctx, FileResult{Path: path, Status: observability.StatusError, Err: err})
	}

	if limit := r.opts.Config.MaxFileSize(); limit > 0 && uint64(info.Size()) > limit { //nolint:gosec // Size is never negative.
		r.opts.Logger.WarnContext(ctx, "skipping file",
			"path", path, "reason", skipLarge,
			"size", humanize.Bytes(uint64(info.Size())), "limit", humanize.Bytes(limit)) //nolint:gosec // Size is never negative.

		return r.finish(ctx, FileResult{Path: path, Status: observability.StatusSkipped, Reason: skipLarge})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return r.finish(ctx, FileResult{Path: path, Status: observability.StatusError, Err: err})
	}

	if textutil.IsBinary(data) {
		r.opts.Logger.WarnContext(ctx, "skipping file", "path", path, "reason", skipBin)

		return r.finish(ctx, FileResult{Path: path, Status: observability.StatusSkipped, Reason: skipBin})
	}

	res := r.fixSource(ctx, path, path, string(data))
	res.Lines = textutil.CountLines(data)

	if res.Status != observability.StatusChanged || r.opts.Mode != ModeWrite {
		return res
	}

	if err := os.WriteFile(path, []byte(res.Fix.Text), info.Mode().Perm()); err != nil {
		res.Status = observability.StatusError
		res.Err = fmt.Errorf("write: %w", err)

		r.opts.Logger.ErrorContext(ctx, "write failed", "path", path, "error", err)
	}

	return res
}

// fixSource runs the fixer over source. resolvePath locates the project
// and display is the name shown in diffs and reports.
func (r *Runner) fixSource(ctx context.Context, resolvePath, display, source string) FileResult {
	ctx, span := r.opts.Tracer.Start(ctx, "autoimport.fix_file",
		trace.WithAttributes(attribute.String("path", display)))
	defer span.End()

	start := time.Now()
	res := FileResult{Path: display}

	opts := []sourcecode.Option{
		sourcecode.WithLogger(r.opts.Logger.With("path", display)),
		sourcecode.WithMoveToTop(r.opts.Config.MoveToTop()),
		sourcecode.WithKeepUnused(r.opts.Config.KeepUnused()),
	}

	if r.opts.Resolvers != nil {
		opts = append(opts, sourcecode.WithResolver(r.opts.Resolvers.For(resolvePath)))
	}

	fixer, err := sourcecode.NewFixer(r.opts.Engine, opts...)
	if err == nil {
		res.Fix, err = fixer.Fix(ctx, source)
	}

	res.Duration = time.Since(start)

	switch {
	case err != nil:
		res.Status = observability.StatusError
		res.Err = err

		span.RecordError(err)
		span.SetStatus(codes.Error, "fix failed")
	case res.Fix.Changed:
		res.Status = observability.StatusChanged

		if r.opts.Mode == ModeDiff {
			res.Diff = UnifiedDiff(display, source, res.Fix.Text, r.opts.Color)
		}
	default:
		res.Status = observability.StatusUnchanged
	}

	span.SetAttributes(
		attribute.String("status", res.Status),
		attribute.Int("imports.added", len(res.Fix.Added)),
		attribute.Int("imports.removed", len(res.Fix.Removed)),
	)

	return r.finish(ctx, res)
}

func (r *Runner) finish(ctx context.Context, res FileResult) FileResult {
	if res.Err != nil {
		r.opts.Logger.ErrorContext(ctx, "fix failed", "path", res.Path, "error", res.Err)
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordFile(ctx, observability.FileOutcome{
			Status:     res.Status,
			Added:      len(res.Fix.Added),
			Removed:    len(res.Fix.Removed),
			Moved:      res.Fix.Moved,
			Unresolved: len(res.Fix.Unresolved),
			Duration:   res.Duration,
		})
	}

	return res
}
