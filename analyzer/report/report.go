package report

import (
	"github.com/viant/depsense/inspector/graph"
	"github.com/viant/depsense/inspector/info"
)

// MisuseReport represents dependency misuse of a single variant
type MisuseReport struct {
	UnusedDirectDependencies   graph.ComponentSet
	UsedTransitiveDependencies graph.ComponentSet
}

// NewMisuseReport creates a misuse report, nil sets are replaced with empty ones
func NewMisuseReport(unusedDirect, usedTransitive graph.ComponentSet) *MisuseReport {
	if unusedDirect == nil {
		unusedDirect = graph.NewComponentSet()
	}
	if usedTransitive == nil {
		usedTransitive = graph.NewComponentSet()
	}
	return &MisuseReport{UnusedDirectDependencies: unusedDirect, UsedTransitiveDependencies: usedTransitive}
}

// IsEmpty returns true when the variant has no misused dependency
func (m *MisuseReport) IsEmpty() bool {
	return len(m.UnusedDirectDependencies) == 0 && len(m.UsedTransitiveDependencies) == 0
}

// Report represents analysis result of a module variant
type Report struct {
	RunID       string
	Module      string
	Variant     string
	UsedClasses graph.ClassSet
	Artifacts   graph.Artifacts
	Misuse      *MisuseReport
	Diagnostics info.Diagnostics
	Ambiguous   []string // used classes supplied by more than one component
}

// Summary represents YAML digest of a report
type Summary struct {
	Module                     string   `yaml:"module"`
	Variant                    string   `yaml:"variant"`
	UsedClasses                int      `yaml:"usedClasses"`
	Artifacts                  int      `yaml:"artifacts"`
	UnusedDirectDependencies   []string `yaml:"unusedDirectDependencies"`
	UsedTransitiveDependencies []string `yaml:"usedTransitiveDependencies"`
	AmbiguousClasses           []string `yaml:"ambiguousClasses,omitempty"`
	Diagnostics                int      `yaml:"diagnostics"`
	Warnings                   int      `yaml:"warnings"`
}

// Summary returns report digest
func (r *Report) Summary() *Summary {
	misuse := r.misuse()
	return &Summary{
		Module:                     r.Module,
		Variant:                    r.Variant,
		UsedClasses:                len(r.UsedClasses),
		Artifacts:                  len(r.Artifacts),
		UnusedDirectDependencies:   misuse.UnusedDirectDependencies.Strings(),
		UsedTransitiveDependencies: misuse.UsedTransitiveDependencies.Strings(),
		AmbiguousClasses:           r.Ambiguous,
		Diagnostics:                len(r.Diagnostics),
		Warnings:                   r.Diagnostics.Count(info.LevelWarning),
	}
}

func (r *Report) misuse() *MisuseReport {
	if r.Misuse == nil {
		return NewMisuseReport(nil, nil)
	}
	return r.Misuse
}
