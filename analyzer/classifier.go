package analyzer

import (
	"github.com/viant/depsense/analyzer/report"
	"github.com/viant/depsense/inspector/graph"
)

// Classify computes dependency misuse: declared components owning no used class,
// and undeclared components owning at least one used class.
// Every owner of a used class counts as used, classes without owner are ignored.
func Classify(used graph.ClassSet, ownership *graph.ClassOwnership, declared graph.ComponentSet) *report.MisuseReport {
	usedComponents := UsedComponents(used, ownership)
	return report.NewMisuseReport(
		declared.Difference(usedComponents),
		usedComponents.Difference(declared),
	)
}

// UsedComponents returns union of owners of every used class
func UsedComponents(used graph.ClassSet, ownership *graph.ClassOwnership) graph.ComponentSet {
	ret := graph.NewComponentSet()
	if ownership == nil {
		return ret
	}
	for class := range used {
		for component := range ownership.Owners(class) {
			ret.Add(component)
		}
	}
	return ret
}

// AmbiguousUsages returns sorted used classes supplied by more than one component
func AmbiguousUsages(used graph.ClassSet, ownership *graph.ClassOwnership) []string {
	ret := graph.NewClassSet()
	if ownership == nil {
		return nil
	}
	for class := range used {
		if len(ownership.Owners(class)) > 1 {
			ret.Add(class)
		}
	}
	return ret.Sorted()
}
