package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/depsense/analyzer/report"
	"github.com/viant/depsense/inspector"
	"github.com/viant/depsense/inspector/classfile"
	"github.com/viant/depsense/inspector/index"
	"github.com/viant/depsense/inspector/info"
	"github.com/viant/depsense/inspector/repository"
	"golang.org/x/sync/errgroup"
)

// Analyzer detects unused direct and used transitive dependencies of module variants.
// A single analyzer can serve concurrent Analyze calls, artifact listings are shared between them.
type Analyzer struct {
	config    *info.Config
	logger    *slog.Logger
	metrics   *Metrics
	fs        afs.Service
	inspector *inspector.Inspector
	indexer   *index.Indexer
}

// New creates an analyzer
func New(options ...Option) (*Analyzer, error) {
	ret := &Analyzer{}
	for _, opt := range options {
		opt(ret)
	}
	if ret.config == nil {
		ret.config = info.DefaultConfig()
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	repo := repository.New(ret.fs, classfile.WithMaxMajorVersion(ret.config.MaxMajorVersion))
	ret.inspector = inspector.NewInspector(ret.config, repo, ret.logger)
	var err error
	if ret.indexer, err = index.NewIndexer(ret.config, repo, ret.logger); err != nil {
		return nil, err
	}
	return ret, nil
}

// Analyze classifies resolved dependencies of a module variant. Missing artifacts, unlistable
// archives and cancellation fail the run; unreadable classes and missing outputs become diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, module string, variant *info.Variant) (*report.Report, error) {
	if variant == nil {
		return nil, fmt.Errorf("failed to analyze %v: variant was nil", module)
	}
	started := time.Now()
	runID := uuid.New().String()
	logger := a.logger.With("runId", runID, "module", module, "variant", variant.Name)

	var extraction *inspector.Extraction
	var idx *index.Index
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		extraction, err = a.inspector.Inspect(groupCtx, variant.Outputs)
		return err
	})
	group.Go(func() (err error) {
		idx, err = a.indexer.Index(groupCtx, variant.Resolved)
		return err
	})
	if err := group.Wait(); err != nil {
		a.metrics.recordFailure(variant.Name, time.Since(started))
		logger.ErrorContext(ctx, "analysis failed", "error", err)
		return nil, fmt.Errorf("failed to analyze %v variant %v: %w", module, variant.Name, err)
	}

	misuse := Classify(extraction.Used, idx.Ownership, variant.DeclaredSet())
	diagnostics := append(info.Diagnostics{}, extraction.Diagnostics...)
	var ambiguous []string
	if a.config.ReportAmbiguous {
		ambiguous = AmbiguousUsages(extraction.Used, idx.Ownership)
		for _, class := range ambiguous {
			owners := idx.Ownership.Owners(class).Strings()
			diagnostics = append(diagnostics, info.NewInfo(info.KindAmbiguousOwnership, class, "supplied by "+strings.Join(owners, ", ")))
		}
	}
	diagnostics.Sort()

	ret := &report.Report{
		RunID:       runID,
		Module:      module,
		Variant:     variant.Name,
		UsedClasses: extraction.Used,
		Artifacts:   variant.Resolved,
		Misuse:      misuse,
		Diagnostics: diagnostics,
		Ambiguous:   ambiguous,
	}
	elapsed := time.Since(started)
	a.metrics.recordSuccess(variant.Name, extraction, idx, misuse, elapsed)
	logger.InfoContext(ctx, "analysis completed",
		"scanned", extraction.Scanned,
		"usedClasses", len(extraction.Used),
		"artifacts", idx.Artifacts,
		"cacheHits", idx.CacheHits,
		"unusedDirect", len(misuse.UnusedDirectDependencies),
		"usedTransitive", len(misuse.UsedTransitiveDependencies),
		"diagnostics", len(diagnostics),
		"elapsed", elapsed)
	return ret, nil
}
