package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Artifact represents a resolved dependency unit backed by an archive or a class directory
type Artifact struct {
	ComponentIdentifier ComponentIdentifier `json:"componentIdentifier" yaml:"componentIdentifier"`
	File                string              `json:"file" yaml:"file"`
	Direct              bool                `json:"direct,omitempty" yaml:"direct,omitempty"` // declared by the analyzed module
}

func (a *Artifact) String() string {
	return a.ComponentIdentifier.String() + " (" + a.File + ")"
}

// Artifacts represents resolved dependency closure
type Artifacts []*Artifact

// Components returns the set of every artifact component
func (a Artifacts) Components() ComponentSet {
	ret := make(ComponentSet, len(a))
	for _, artifact := range a {
		ret.Add(artifact.ComponentIdentifier)
	}
	return ret
}

// Direct returns the set of components flagged as direct
func (a Artifacts) Direct() ComponentSet {
	ret := make(ComponentSet)
	for _, artifact := range a {
		if artifact.Direct {
			ret.Add(artifact.ComponentIdentifier)
		}
	}
	return ret
}

// Sorted returns a copy ordered by component string form, then by file
func (a Artifacts) Sorted() Artifacts {
	ret := make(Artifacts, len(a))
	copy(ret, a)
	sort.SliceStable(ret, func(i, j int) bool {
		left, right := ret[i].ComponentIdentifier.String(), ret[j].ComponentIdentifier.String()
		if left != right {
			return left < right
		}
		return ret[i].File < ret[j].File
	})
	return ret
}

// ParseArtifacts decodes a JSON array of artifact records
func ParseArtifacts(data []byte) (Artifacts, error) {
	var ret Artifacts
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to decode artifacts: %w", err)
	}
	for i, artifact := range ret {
		if artifact == nil {
			return nil, fmt.Errorf("artifact[%d] was null", i)
		}
		if artifact.File == "" {
			return nil, fmt.Errorf("artifact[%d] %v: file was empty", i, artifact.ComponentIdentifier)
		}
	}
	return ret, nil
}
