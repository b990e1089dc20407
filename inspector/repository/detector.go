package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// Detector identifies container kind of compiled output and artifact locations
type Detector struct {
	fs         afs.Service
	extensions map[string]Kind
}

// NewDetector creates a detector
func NewDetector(fs afs.Service) *Detector {
	return &Detector{
		fs: fs,
		extensions: map[string]Kind{
			".jar":   KindArchive,
			".zip":   KindArchive,
			".war":   KindArchive,
			".aar":   KindAndroidArchive,
			".class": KindClass,
		},
	}
}

// Detect returns container kind and file info of location, ErrNotFound when location is missing
func (d *Detector) Detect(ctx context.Context, location string) (Kind, os.FileInfo, error) {
	exists, err := d.fs.Exists(ctx, location)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check %v: %w", location, err)
	}
	if !exists {
		return "", nil, fmt.Errorf("%w: %v", ErrNotFound, location)
	}
	object, err := d.fs.Object(ctx, location)
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat %v: %w", location, err)
	}
	if object.IsDir() {
		return KindDirectory, object, nil
	}
	if kind, ok := d.extensions[strings.ToLower(filepath.Ext(location))]; ok {
		return kind, object, nil
	}
	return KindOther, object, nil
}
