package analyzer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/viant/depsense/analyzer/report"
	"github.com/viant/depsense/inspector"
	"github.com/viant/depsense/inspector/index"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds analysis metrics on a private registry
type Metrics struct {
	ClassesScanned    *prometheus.CounterVec
	UnreadableClasses *prometheus.CounterVec
	ArtifactsIndexed  *prometheus.CounterVec
	ListingCacheHits  prometheus.Counter
	UnusedDirect      *prometheus.GaugeVec
	UsedTransitive    *prometheus.GaugeVec
	AnalysisDuration  *prometheus.HistogramVec
	AnalysesTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates metrics with a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		ClassesScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depsense_classes_scanned_total",
			Help: "Total number of compiled class files parsed",
		}, []string{"variant"}),
		UnreadableClasses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depsense_unreadable_classes_total",
			Help: "Total number of class files skipped as unreadable",
		}, []string{"variant"}),
		ArtifactsIndexed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depsense_artifacts_indexed_total",
			Help: "Total number of resolved artifacts listed",
		}, []string{"variant"}),
		ListingCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "depsense_listing_cache_hits_total",
			Help: "Total number of artifact listings served from cache",
		}),
		UnusedDirect: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "depsense_unused_direct_dependencies",
			Help: "Number of declared dependencies with no used class",
		}, []string{"variant"}),
		UsedTransitive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "depsense_used_transitive_dependencies",
			Help: "Number of undeclared dependencies with a used class",
		}, []string{"variant"}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "depsense_analysis_duration_seconds",
			Help:    "Variant analysis duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"variant"}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depsense_analyses_total",
			Help: "Total number of variant analyses",
		}, []string{"variant", "status"}),
	}
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Gather returns collected metric families
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

func (m *Metrics) recordSuccess(variant string, extraction *inspector.Extraction, idx *index.Index, misuse *report.MisuseReport, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ClassesScanned.WithLabelValues(variant).Add(float64(extraction.Scanned))
	m.UnreadableClasses.WithLabelValues(variant).Add(float64(extraction.Unreadable()))
	m.ArtifactsIndexed.WithLabelValues(variant).Add(float64(idx.Artifacts))
	m.ListingCacheHits.Add(float64(idx.CacheHits))
	m.UnusedDirect.WithLabelValues(variant).Set(float64(len(misuse.UnusedDirectDependencies)))
	m.UsedTransitive.WithLabelValues(variant).Set(float64(len(misuse.UsedTransitiveDependencies)))
	m.AnalysisDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
	m.AnalysesTotal.WithLabelValues(variant, statusSuccess).Inc()
}

func (m *Metrics) recordFailure(variant string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
	m.AnalysesTotal.WithLabelValues(variant, statusFailure).Inc()
}
