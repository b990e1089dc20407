package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/common/expfmt"
	"github.com/viant/afs"
	"github.com/viant/depsense/analyzer"
	"github.com/viant/depsense/analyzer/report"
	"github.com/viant/depsense/inspector/index"
	"github.com/viant/depsense/inspector/info"
	"golang.org/x/sync/errgroup"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	envAnalysisRoot = "DEPSENSE_ANALYSIS_ROOT"
	envConcurrency  = "DEPSENSE_CONCURRENCY"
	envCacheSize    = "DEPSENSE_CACHE_SIZE"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("depsense", flag.ContinueOnError)
	flags.SetOutput(stderr)
	requestURL := flags.String("request", "", "analysis request YAML file")
	root := flags.String("root", "", "analysis root, overrides request and "+envAnalysisRoot)
	metricsURL := flags.String("metrics", "", "file to write Prometheus text metrics to")
	verbose := flags.Bool("v", false, "debug logging")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if *requestURL == "" {
		fmt.Fprintln(stderr, "-request is required")
		flags.Usage()
		return exitUsage
	}
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	fs := afs.New()
	request, err := info.LoadRequest(ctx, fs, *requestURL)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err = applyEnv(request); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if *root != "" {
		request.AnalysisRoot = *root
	}

	metrics := analyzer.NewMetrics()
	subject, err := analyzer.New(
		analyzer.WithConfig(&request.Config),
		analyzer.WithLogger(logger),
		analyzer.WithMetrics(metrics),
		analyzer.WithFileSystem(fs),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	writer := report.NewWriter(fs)
	failures := make([]error, len(request.Variants))
	var group errgroup.Group
	for i, variant := range request.Variants {
		group.Go(func() error {
			result, err := subject.Analyze(ctx, request.Module, variant)
			if err == nil {
				err = writer.Write(ctx, request.AnalysisRoot, result)
			}
			if err != nil {
				if removeErr := removeReports(ctx, fs, request.AnalysisRoot, variant.Name); removeErr != nil {
					err = errors.Join(err, removeErr)
				}
			}
			failures[i] = err
			return nil
		})
	}
	_ = group.Wait()

	status := exitOK
	for i, err := range failures {
		variant := request.Variants[i]
		if err == nil {
			fmt.Fprintf(stdout, "%v: reports written to %v\n", variant.Name, report.VariantLocation(request.AnalysisRoot, variant.Name))
			continue
		}
		status = exitFailure
		var missing *index.MissingArtifactError
		if errors.As(err, &missing) {
			fmt.Fprintf(stderr, "%v: missing artifact %v (%v)\n", variant.Name, missing.Artifact.ComponentIdentifier, missing.Artifact.File)
			continue
		}
		fmt.Fprintf(stderr, "%v: %v\n", variant.Name, err)
	}

	if *metricsURL != "" {
		if err = writeMetrics(ctx, fs, *metricsURL, metrics); err != nil {
			fmt.Fprintln(stderr, err)
			status = exitFailure
		}
	}
	return status
}

func applyEnv(request *info.Request) error {
	if value := os.Getenv(envAnalysisRoot); value != "" {
		request.AnalysisRoot = value
	}
	for name, target := range map[string]*int{
		envConcurrency: &request.Concurrency,
		envCacheSize:   &request.CacheSize,
	} {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %v: %w", name, err)
		}
		*target = parsed
	}
	return request.Config.Validate()
}

// removeReports deletes report directory of a failed variant
func removeReports(ctx context.Context, fs afs.Service, root, variant string) error {
	location := report.VariantLocation(root, variant)
	exists, err := fs.Exists(ctx, location)
	if err != nil || !exists {
		return err
	}
	if err = fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to remove stale reports %v: %w", location, err)
	}
	return nil
}

func writeMetrics(ctx context.Context, fs afs.Service, URL string, metrics *analyzer.Metrics) error {
	families, err := metrics.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	buffer := new(bytes.Buffer)
	for _, family := range families {
		if _, err = expfmt.MetricFamilyToText(buffer, family); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	if err = fs.Upload(ctx, URL, 0o644, buffer); err != nil {
		return fmt.Errorf("failed to write metrics %v: %w", URL, err)
	}
	return nil
}
