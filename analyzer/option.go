package analyzer

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/depsense/inspector/info"
)

type Option func(*Analyzer)

// WithConfig sets engine configuration
func WithConfig(config *info.Config) Option {
	return func(a *Analyzer) {
		a.config = config
	}
}

// WithLogger sets structured logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithMetrics sets metrics sink; analyses are not measured without it
func WithMetrics(metrics *Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = metrics
	}
}

// WithFileSystem sets file system used to read outputs and artifacts
func WithFileSystem(fs afs.Service) Option {
	return func(a *Analyzer) {
		a.fs = fs
	}
}
