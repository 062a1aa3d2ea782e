// Package commands implements CLI command handlers for autoimport.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autoimport/internal/runner"
	"github.com/Sumatoshi-tech/autoimport/pkg/config"
	"github.com/Sumatoshi-tech/autoimport/pkg/observability"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyflakes"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
	"github.com/Sumatoshi-tech/autoimport/pkg/resolver"
	"github.com/Sumatoshi-tech/autoimport/pkg/version"
)

const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// ErrMixedStdin is returned when "-" is combined with other paths.
var ErrMixedStdin = errors.New(`"-" reads standard input and cannot be combined with other paths`)

// FixCommand holds the flags of the root fix command.
type FixCommand struct {
	check       bool
	diff        bool
	summary     bool
	noColor     bool
	jobs        int
	configFile  string
	metricsFile string
	logLevel    string
	logJSON     bool
}

// NewFixCommand creates the root command, which fixes the given files.
func NewFixCommand() *cobra.Command {
	fc := &FixCommand{}

	cmd := &cobra.Command{
		Use:   "autoimport [flags] [files or dirs...]",
		Short: "Add missing and remove unused Python imports",
		Long: `autoimport adds the imports a Python file is missing, removes the ones it
does not use and moves stray imports to the top of the file.

Directories are walked recursively. Use "-" to filter standard input to
standard output.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          fc.run,
	}

	cmd.Flags().BoolVar(&fc.check, "check", false, "Write nothing and exit with status 1 when a file would change")
	cmd.Flags().BoolVar(&fc.diff, "diff", false, "Print a unified diff instead of writing files")
	cmd.Flags().BoolVar(&fc.summary, "summary", false, "Print a table of per-file changes")
	cmd.Flags().BoolVar(&fc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().IntVarP(&fc.jobs, "jobs", "j", runtime.NumCPU(), "Number of files fixed in parallel")
	cmd.Flags().StringVar(&fc.configFile, "config-file", "", "Config file (default: nearest pyproject.toml)")
	cmd.Flags().StringVar(&fc.metricsFile, "metrics-file", "", "Write Prometheus text format metrics to this file")
	cmd.Flags().StringVar(&fc.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&fc.logJSON, "log-json", false, "Emit JSON log records")

	cmd.MarkFlagsMutuallyExclusive("check", "diff")

	return cmd
}

func (fc *FixCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w; pass files, directories or \"-\"", runner.ErrNoInput)
	}

	stdin := slices.Contains(args, runner.StdinPath)
	if stdin && len(args) > 1 {
		return ErrMixedStdin
	}

	obsCfg, err := fc.observabilityConfig(stdin)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := providers.Tracer.Start(ctx, "autoimport.run")
	defer span.End()

	cfg, err := config.LoadConfig(fc.configFile, configStart(args))
	if err != nil {
		return err
	}

	providers.Logger.DebugContext(ctx, "configuration loaded", "path", cfg.Path())

	fm, err := observability.NewFixMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	parser := pyparse.NewParser()

	registry, err := newRegistry(ctx, parser, cfg, providers)
	if err != nil {
		return err
	}

	colorize := !fc.noColor && !color.NoColor

	fixRunner, err := runner.New(runner.Options{
		Config:    cfg,
		Engine:    pyflakes.NewEngine(),
		Resolvers: registry,
		Logger:    providers.Logger,
		Tracer:    providers.Tracer,
		Metrics:   fm,
		Out:       cmd.OutOrStdout(),
		Mode:      fc.mode(),
		Jobs:      fc.jobs,
		Color:     colorize,
	})
	if err != nil {
		return err
	}

	var (
		report     *runner.Report
		summaryOut = cmd.OutOrStdout()
	)

	if stdin {
		summaryOut = cmd.ErrOrStderr()
		report, err = fixRunner.RunStdin(ctx, cmd.InOrStdin())
	} else {
		report, err = fixRunner.Run(ctx, args)
	}

	if fc.summary && report != nil {
		report.WriteSummary(summaryOut, colorize)
	}

	return err
}

func (fc *FixCommand) mode() runner.Mode {
	switch {
	case fc.check:
		return runner.ModeCheck
	case fc.diff:
		return runner.ModeDiff
	default:
		return runner.ModeWrite
	}
}

func (fc *FixCommand) observabilityConfig(stdin bool) (observability.Config, error) {
	level, err := observability.ParseLevel(fc.logLevel)
	if err != nil {
		return observability.Config{}, err
	}

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
	cfg.OTLPInsecure = os.Getenv(envOTLPInsecure) == "true"
	cfg.MetricsFile = fc.metricsFile
	cfg.LogLevel = level
	cfg.LogJSON = fc.logJSON

	switch {
	case stdin:
		cfg.Mode = observability.ModeStdin
	case fc.check:
		cfg.Mode = observability.ModeCheck
	}

	return cfg, nil
}

func newRegistry(
	ctx context.Context, parser *pyparse.Parser, cfg *config.Config, providers observability.Providers,
) (*resolver.Registry, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		providers.Logger.DebugContext(ctx, "no home directory, skipping user namespace file", "error", err)
	}

	registry, err := resolver.NewRegistry(ctx, parser, resolver.Options{
		Common:         cfg.CommonStatements(),
		SearchPaths:    resolver.SearchPaths(cfg.PythonPath(), os.Getenv),
		NamespaceFiles: resolver.NamespacePaths(home, cwd),
		Logger:         providers.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build resolvers: %w", err)
	}

	return registry, nil
}

// configStart is where the pyproject.toml search begins: the first target
// path, or the working directory for standard input.
func configStart(args []string) string {
	start := "."
	if len(args) > 0 && args[0] != runner.StdinPath {
		start = args[0]
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}

	return abs
}

// PrintError writes err to w. A check that only found pending changes is
// not reported as an error.
func PrintError(w io.Writer, err error) {
	if errors.Is(err, runner.ErrChangesNeeded) && !hasOtherErrors(err) {
		fmt.Fprintf(w, "would fix: %v\n", err)

		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}

func hasOtherErrors(err error) bool {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return false
	}

	for _, inner := range joined.Unwrap() {
		if !errors.Is(inner, runner.ErrChangesNeeded) {
			return true
		}
	}

	return false
}
