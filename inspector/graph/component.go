package graph

import (
	"fmt"
	"strings"
)

// ComponentKind tells where an artifact comes from
type ComponentKind string

const (
	KindLibrary ComponentKind = "library" // external coordinate
	KindProject ComponentKind = "project" // another module of the same build
)

const projectPrefix = "project "

// ComponentIdentifier identifies the origin of an artifact: a library coordinate or a module of the same build
type ComponentIdentifier struct {
	Kind    ComponentKind
	Group   string
	Module  string
	Version string
	Path    string // build path of a project component, e.g. ":lib"
}

// Library creates a library coordinate identifier
func Library(group, module, version string) ComponentIdentifier {
	return ComponentIdentifier{Kind: KindLibrary, Group: group, Module: module, Version: version}
}

// Project creates an in-build module identifier
func Project(path string) ComponentIdentifier {
	return ComponentIdentifier{Kind: KindProject, Path: path}
}

// IsProject returns true for in-build module components
func (c ComponentIdentifier) IsProject() bool {
	return c.Kind == KindProject
}

// String returns natural string form: group:module:version or project <path>
func (c ComponentIdentifier) String() string {
	if c.IsProject() {
		return projectPrefix + c.Path
	}
	builder := strings.Builder{}
	builder.WriteString(c.Group)
	builder.WriteString(":")
	builder.WriteString(c.Module)
	if c.Version != "" {
		builder.WriteString(":")
		builder.WriteString(c.Version)
	}
	return builder.String()
}

// MarshalText encodes identifier as its natural string form
func (c ComponentIdentifier) MarshalText() ([]byte, error) {
	if c.Kind == "" {
		return nil, fmt.Errorf("component identifier kind was empty")
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes identifier from its natural string form
func (c *ComponentIdentifier) UnmarshalText(text []byte) error {
	parsed, err := ParseComponentIdentifier(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseComponentIdentifier parses "group:module[:version]" or "project <path>"
func ParseComponentIdentifier(text string) (ComponentIdentifier, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, projectPrefix) {
		path := strings.TrimSpace(text[len(projectPrefix):])
		if path == "" {
			return ComponentIdentifier{}, fmt.Errorf("invalid project identifier %q: empty path", text)
		}
		return Project(path), nil
	}
	parts := strings.Split(text, ":")
	switch len(parts) {
	case 2:
		if parts[0] != "" && parts[1] != "" {
			return Library(parts[0], parts[1], ""), nil
		}
	case 3:
		if parts[0] != "" && parts[1] != "" && parts[2] != "" {
			return Library(parts[0], parts[1], parts[2]), nil
		}
	}
	return ComponentIdentifier{}, fmt.Errorf("invalid component identifier %q: expected group:module[:version] or project <path>", text)
}
