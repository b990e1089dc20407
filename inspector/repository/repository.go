package repository

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/viant/depsense/inspector/classfile"
)

// ErrNotFound reports a container location that does not exist
var ErrNotFound = errors.New("location not found")

// Kind represents class file container kind
type Kind string

const (
	KindDirectory      Kind = "directory" // tree of loose class files
	KindArchive        Kind = "archive"   // jar or zip
	KindAndroidArchive Kind = "aar"       // zip with classes.jar and libs/*.jar
	KindClass          Kind = "class"     // single class file
	KindOther          Kind = "other"     // metadata only, native code, etc.
)

const (
	classSuffix      = ".class"
	multiReleaseRoot = "META-INF/versions/"
	metaInfRoot      = "META-INF/"
)

// Container represents opened class file container
type Container struct {
	Location string
	Kind     Kind
	Info     os.FileInfo
	Entries  []*Entry
	closers  []io.Closer
}

// Close releases container resources
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// ClassNames returns binary names of every container class
func (c *Container) ClassNames() []string {
	ret := make([]string, 0, len(c.Entries))
	for _, entry := range c.Entries {
		if entry.ClassName != "" {
			ret = append(ret, entry.ClassName)
		}
	}
	return ret
}

// Entry represents a class file within container
type Entry struct {
	Path      string // container relative path
	Location  string // path within the file system, archive entries as archive!/entry
	ClassName string // binary class name, empty when a loose class file could not be parsed
	read      func() ([]byte, error)
}

// Read returns class file bytes
func (e *Entry) Read() ([]byte, error) {
	data, err := e.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", e.Location, err)
	}
	return data, nil
}

// EntryClassName returns binary class name of container entry; false for non class entries,
// module/package descriptors and META-INF content other than multi-release versions
func EntryClassName(entryPath string) (string, bool) {
	entryPath = strings.TrimPrefix(strings.ReplaceAll(entryPath, "\\", "/"), "/")
	if !strings.HasSuffix(entryPath, classSuffix) {
		return "", false
	}
	if strings.HasPrefix(entryPath, multiReleaseRoot) {
		versioned := entryPath[len(multiReleaseRoot):]
		index := strings.IndexByte(versioned, '/')
		if index <= 0 {
			return "", false
		}
		entryPath = versioned[index+1:]
	} else if strings.HasPrefix(entryPath, metaInfRoot) {
		return "", false
	}
	name := classfile.BinaryName(strings.TrimSuffix(entryPath, classSuffix))
	if name == "" || classfile.IsDescriptorClass(name) {
		return "", false
	}
	return name, true
}
