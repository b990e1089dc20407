package repository

import (
	"context"
	"os"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/depsense/inspector/classfile"
)

// Repository opens class file containers
type Repository struct {
	fs           afs.Service
	detector     *Detector
	parseOptions []classfile.Option // applied when loose class files are parsed for their name
}

// New creates a repository backed by supplied file system
func New(fs afs.Service, parseOptions ...classfile.Option) *Repository {
	if fs == nil {
		fs = afs.New()
	}
	return &Repository{fs: fs, detector: NewDetector(fs), parseOptions: parseOptions}
}

// Open detects location kind and lists its class entries, the caller closes the container
func (r *Repository) Open(ctx context.Context, location string) (*Container, error) {
	kind, info, err := r.detector.Detect(ctx, location)
	if err != nil {
		return nil, err
	}
	ret := &Container{Location: location, Kind: kind, Info: info}
	switch kind {
	case KindDirectory:
		err = ret.openDirectory(ctx, r.fs)
	case KindArchive:
		err = ret.openArchive()
	case KindAndroidArchive:
		err = ret.openAndroidArchive()
	case KindClass:
		ret.openClass(ctx, r.fs, r.parseOptions)
	}
	if err != nil {
		_ = ret.Close()
		return nil, err
	}
	return ret, nil
}

func (c *Container) openClass(ctx context.Context, fs afs.Service, parseOptions []classfile.Option) {
	location := c.Location
	entry := &Entry{
		Path:     filepath.Base(location),
		Location: location,
		read: func() ([]byte, error) {
			return fs.DownloadWithURL(ctx, location)
		},
	}
	if data, err := entry.read(); err == nil {
		if classFile, err := classfile.Parse(data, parseOptions...); err == nil {
			entry.ClassName = classFile.Name
		}
	}
	c.Entries = append(c.Entries, entry)
}

// Detect returns container kind and file info of location
func (r *Repository) Detect(ctx context.Context, location string) (Kind, os.FileInfo, error) {
	return r.detector.Detect(ctx, location)
}
