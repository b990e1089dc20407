package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/viant/afs"
)

// openDirectory lists class files of a directory tree
func (c *Container) openDirectory(ctx context.Context, fs afs.Service) error {
	err := fs.Walk(ctx, c.Location, func(ctx context.Context, baseURL string, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		relative := path.Join(filepath.ToSlash(parent), info.Name())
		className, ok := EntryClassName(relative)
		if !ok {
			return true, nil
		}
		location := filepath.Join(c.Location, filepath.FromSlash(relative))
		c.Entries = append(c.Entries, &Entry{
			Path:      relative,
			Location:  location,
			ClassName: className,
			read: func() ([]byte, error) {
				return fs.DownloadWithURL(ctx, location)
			},
		})
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %v: %w", c.Location, err)
	}
	return nil
}
