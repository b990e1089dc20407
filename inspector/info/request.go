package info

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/depsense/inspector/graph"
	"gopkg.in/yaml.v3"
)

// Request represents analysis of one module across its build variants
type Request struct {
	Module       string `yaml:"module" validate:"required"`
	AnalysisRoot string `yaml:"analysisRoot" validate:"required"`
	Config       `yaml:",inline"`
	Variants     []*Variant `yaml:"variants" validate:"required,min=1,dive"`
}

// Variant represents variant scoped analysis inputs
type Variant struct {
	Name      string                      `yaml:"name" validate:"required,excludesall=/\\,ne=.,ne=.."`
	Outputs   []string                    `yaml:"outputs"`                       // compiled class directories or archives
	Artifacts string                      `yaml:"artifacts" validate:"required"` // JSON resolved artifact list
	Declared  []graph.ComponentIdentifier `yaml:"declared,omitempty"`            // explicit direct dependencies, otherwise artifacts flagged direct

	Resolved graph.Artifacts `yaml:"-"`
}

// DeclaredSet returns direct dependency set of the variant
func (v *Variant) DeclaredSet() graph.ComponentSet {
	if len(v.Declared) > 0 {
		return graph.NewComponentSet(v.Declared...)
	}
	return v.Resolved.Direct()
}

// ParseRequest decodes and validates YAML request, relative paths are resolved against baseDir
func ParseRequest(data []byte, baseDir string) (*Request, error) {
	ret := &Request{Config: *DefaultConfig()}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	ret.AnalysisRoot = resolvePath(baseDir, ret.AnalysisRoot)
	names := map[string]bool{}
	for _, variant := range ret.Variants {
		if variant == nil {
			return nil, fmt.Errorf("invalid request: variant was null")
		}
		if names[variant.Name] {
			return nil, fmt.Errorf("invalid request: duplicate variant %q", variant.Name)
		}
		names[variant.Name] = true
		variant.Artifacts = resolvePath(baseDir, variant.Artifacts)
		for i, output := range variant.Outputs {
			variant.Outputs[i] = resolvePath(baseDir, output)
		}
	}
	if err := validate.Struct(ret); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return ret, nil
}

// LoadRequest loads request and every variant's resolved artifacts
func LoadRequest(ctx context.Context, fs afs.Service, location string) (*Request, error) {
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %v: %w", location, err)
	}
	ret, err := ParseRequest(data, filepath.Dir(location))
	if err != nil {
		return nil, err
	}
	for _, variant := range ret.Variants {
		if err = variant.LoadArtifacts(ctx, fs); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// LoadArtifacts loads variant resolved artifacts
func (v *Variant) LoadArtifacts(ctx context.Context, fs afs.Service) error {
	data, err := fs.DownloadWithURL(ctx, v.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to load artifacts of variant %v: %w", v.Name, err)
	}
	if v.Resolved, err = graph.ParseArtifacts(data); err != nil {
		return fmt.Errorf("variant %v: %w", v.Name, err)
	}
	return nil
}

func resolvePath(baseDir, location string) string {
	if location == "" || filepath.IsAbs(location) || baseDir == "" {
		return location
	}
	return filepath.Join(baseDir, location)
}
