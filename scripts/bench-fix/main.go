// bench-fix measures throughput and heap usage of a check-mode run over a
// Python source tree, once per --jobs value.
//
// Usage:
//
//	go run ./scripts/bench-fix --path ~/sources/django --jobs 1,4,8 \
//	  --profile-dir docs/profiles/fix
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/autoimport/internal/runner"
	"github.com/Sumatoshi-tech/autoimport/pkg/config"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyflakes"
	"github.com/Sumatoshi-tech/autoimport/pkg/pyparse"
	"github.com/Sumatoshi-tech/autoimport/pkg/resolver"
)

func main() {
	path := flag.String("path", "", "Python source tree to check")
	jobsList := flag.String("jobs", "1,"+strconv.Itoa(runtime.NumCPU()), "Comma separated --jobs values")
	profileDir := flag.String("profile-dir", "", "Directory to write heap and CPU profiles")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")

	flag.Parse()

	if *path == "" {
		log.Fatal("--path is required")
	}

	jobs, err := parseJobs(*jobsList)
	if err != nil {
		log.Fatalf("parse --jobs: %v", err)
	}

	if *profileDir != "" {
		if err := os.MkdirAll(*profileDir, 0o755); err != nil {
			log.Fatalf("mkdir profile-dir: %v", err)
		}
	}

	if *cpuProfile && *profileDir != "" {
		cpuPath := filepath.Join(*profileDir, "cpu.prof")

		cpuFile, cpuErr := os.Create(cpuPath)
		if cpuErr != nil {
			log.Fatalf("create cpu profile: %v", cpuErr)
		}
		defer cpuFile.Close()

		if startErr := pprof.StartCPUProfile(cpuFile); startErr != nil {
			log.Fatalf("start cpu profile: %v", startErr)
		}

		defer pprof.StopCPUProfile()

		log.Printf("CPU profiling enabled -> %s", cpuPath)
	}

	cfg, err := config.LoadConfig("", *path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	parser := pyparse.NewParser()

	registry, err := resolver.NewRegistry(ctx, parser, resolver.Options{
		Common:      cfg.CommonStatements(),
		SearchPaths: resolver.SearchPaths(cfg.PythonPath(), os.Getenv),
	})
	if err != nil {
		log.Fatalf("build resolvers: %v", err)
	}

	takeSnapshot("before_runs")

	for _, n := range jobs {
		fixRunner, err := runner.New(runner.Options{
			Config:    cfg,
			Engine:    pyflakes.NewEngine(),
			Resolvers: registry,
			Mode:      runner.ModeCheck,
			Jobs:      n,
		})
		if err != nil {
			log.Fatalf("new runner: %v", err)
		}

		start := time.Now()

		report, err := fixRunner.Run(ctx, []string{*path})
		if err != nil && !errors.Is(err, runner.ErrChangesNeeded) {
			log.Printf("warning: run with %d jobs: %v", n, err)
		}

		elapsed := time.Since(start)
		files := len(report.Files)

		log.Printf("jobs=%-3d files=%d lines=%s changed=%d failed=%d elapsed=%s rate=%.1f files/s %.0f lines/s",
			n, files, humanize.Comma(int64(report.Lines())), report.Changed(), report.Failed(),
			elapsed.Round(time.Millisecond), float64(files)/elapsed.Seconds(),
			float64(report.Lines())/elapsed.Seconds())

		takeSnapshot(fmt.Sprintf("after_jobs_%d", n))
	}

	if *profileDir != "" {
		writeHeapProfile(filepath.Join(*profileDir, "heap_after_runs.prof"))
	}
}

func parseJobs(list string) ([]int, error) {
	var jobs []int

	for field := range strings.SplitSeq(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid jobs value %q", field)
		}

		jobs = append(jobs, n)
	}

	return jobs, nil
}

func takeSnapshot(label string) {
	runtime.GC()
	runtime.GC()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	log.Printf("  [heap] %-20s inuse=%s  sys=%s  idle=%s  gc=%d",
		label, humanize.Bytes(m.HeapInuse), humanize.Bytes(m.HeapSys), humanize.Bytes(m.HeapIdle), m.NumGC)
}

func writeHeapProfile(path string) {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		log.Printf("warning: create heap profile %s: %v", path, err)

		return
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("warning: write heap profile %s: %v", path, err)
	}
}
