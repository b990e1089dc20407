package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/depsense/inspector/graph"
	"gopkg.in/yaml.v3"
)

const (
	UsedClassesFile                = "all-used-classes.txt"
	DeclaredDependenciesFile       = "all-declared-dependencies.txt"
	DeclaredDependenciesPrettyFile = "all-declared-dependencies-pretty.txt"
	UnusedDirectDependenciesFile   = "unused-direct-dependencies.txt"
	UsedTransitiveDependenciesFile = "used-transitive-dependencies.txt"
	DiagnosticsFile                = "diagnostics.txt"
	SummaryFile                    = "summary.yaml"
)

// FileNames lists every report file in write order
var FileNames = []string{
	UsedClassesFile,
	DeclaredDependenciesFile,
	DeclaredDependenciesPrettyFile,
	UnusedDirectDependenciesFile,
	UsedTransitiveDependenciesFile,
	DiagnosticsFile,
	SummaryFile,
}

// Writer writes variant reports under analysis root
type Writer struct {
	fs afs.Service
}

// NewWriter creates a report writer
func NewWriter(fs afs.Service) *Writer {
	if fs == nil {
		fs = afs.New()
	}
	return &Writer{fs: fs}
}

// VariantLocation returns report directory of a variant
func VariantLocation(root, variant string) string {
	return url.Join(root, variant)
}

// Write writes every report file to <root>/<variant>/
func (w *Writer) Write(ctx context.Context, root string, report *Report) error {
	files, err := report.Files()
	if err != nil {
		return err
	}
	baseURL := VariantLocation(root, report.Variant)
	for _, name := range FileNames {
		URL := url.Join(baseURL, name)
		if err = w.fs.Upload(ctx, URL, 0o644, bytes.NewReader(files[name])); err != nil {
			return fmt.Errorf("failed to write %v: %w", URL, err)
		}
	}
	return nil
}

// Files renders report files keyed by name, output is byte identical for identical reports
func (r *Report) Files() (map[string][]byte, error) {
	artifacts := r.Artifacts.Sorted()
	if artifacts == nil {
		artifacts = graph.Artifacts{}
	}
	compact, err := json.Marshal(artifacts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifacts: %w", err)
	}
	pretty, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifacts: %w", err)
	}
	summary, err := yaml.Marshal(r.Summary())
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	diagnostics := make([]string, 0, len(r.Diagnostics))
	for _, diagnostic := range r.Diagnostics {
		diagnostics = append(diagnostics, diagnostic.String())
	}
	sort.Strings(diagnostics)
	misuse := r.misuse()
	return map[string][]byte{
		UsedClassesFile:                lines(r.UsedClasses.Sorted()),
		DeclaredDependenciesFile:       append(compact, '\n'),
		DeclaredDependenciesPrettyFile: append(pretty, '\n'),
		UnusedDirectDependenciesFile:   lines(misuse.UnusedDirectDependencies.Strings()),
		UsedTransitiveDependenciesFile: lines(misuse.UsedTransitiveDependencies.Strings()),
		DiagnosticsFile:                lines(diagnostics),
		SummaryFile:                    summary,
	}, nil
}

func lines(items []string) []byte {
	if len(items) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(items, "\n") + "\n")
}
