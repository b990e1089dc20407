package info

import (
	"fmt"
	"sort"
)

// Level represents diagnostic severity
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// DiagnosticKind classifies recoverable analysis problems
type DiagnosticKind string

const (
	KindUnreadableClass    DiagnosticKind = "unreadable-class"
	KindMissingOutput      DiagnosticKind = "missing-output"
	KindAmbiguousOwnership DiagnosticKind = "ambiguous-ownership"
)

// Diagnostic represents a recoverable problem reported alongside analysis output
type Diagnostic struct {
	Level   Level          `yaml:"level" json:"level"`
	Kind    DiagnosticKind `yaml:"kind" json:"kind"`
	Path    string         `yaml:"path" json:"path"` // class file, output location or class name
	Message string         `yaml:"message" json:"message"`
}

// NewWarning creates warning diagnostic
func NewWarning(kind DiagnosticKind, path string, err error) *Diagnostic {
	return &Diagnostic{Level: LevelWarning, Kind: kind, Path: path, Message: err.Error()}
}

// NewInfo creates informational diagnostic
func NewInfo(kind DiagnosticKind, path, message string) *Diagnostic {
	return &Diagnostic{Level: LevelInfo, Kind: kind, Path: path, Message: message}
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Level, d.Kind, d.Path, d.Message)
}

// Diagnostics represents side channel diagnostics list
type Diagnostics []*Diagnostic

// Sort orders diagnostics by kind, path, message
func (d Diagnostics) Sort() {
	sort.SliceStable(d, func(i, j int) bool {
		if d[i].Kind != d[j].Kind {
			return d[i].Kind < d[j].Kind
		}
		if d[i].Path != d[j].Path {
			return d[i].Path < d[j].Path
		}
		return d[i].Message < d[j].Message
	})
}

// Count returns number of diagnostics with supplied level
func (d Diagnostics) Count(level Level) int {
	count := 0
	for _, item := range d {
		if item.Level == level {
			count++
		}
	}
	return count
}
