package repository

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	aarClassesJar = "classes.jar"
	aarLibsDir    = "libs/"
)

// openArchive lists class entries of a jar/zip file
func (c *Container) openArchive() error {
	reader, err := zip.OpenReader(c.Location)
	if err != nil {
		return fmt.Errorf("failed to open archive %v: %w", c.Location, err)
	}
	c.closers = append(c.closers, reader)
	c.Entries = append(c.Entries, archiveEntries(&reader.Reader, c.Location, "")...)
	return nil
}

// openAndroidArchive lists class entries of classes.jar and libs/*.jar nested in an aar
func (c *Container) openAndroidArchive() error {
	reader, err := zip.OpenReader(c.Location)
	if err != nil {
		return fmt.Errorf("failed to open android archive %v: %w", c.Location, err)
	}
	c.closers = append(c.closers, reader)
	for _, file := range reader.File {
		if !isNestedJar(file.Name) {
			continue
		}
		data, err := readZipFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %v in %v: %w", file.Name, c.Location, err)
		}
		nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return fmt.Errorf("failed to open %v in %v: %w", file.Name, c.Location, err)
		}
		c.Entries = append(c.Entries, archiveEntries(nested, c.Location, file.Name+"!/")...)
	}
	return nil
}

func isNestedJar(name string) bool {
	if name == aarClassesJar {
		return true
	}
	return strings.HasPrefix(name, aarLibsDir) && path.Ext(name) == ".jar" && !strings.Contains(name[len(aarLibsDir):], "/")
}

func archiveEntries(reader *zip.Reader, location, prefix string) []*Entry {
	var ret []*Entry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		className, ok := EntryClassName(file.Name)
		if !ok {
			continue
		}
		file := file
		ret = append(ret, &Entry{
			Path:      prefix + file.Name,
			Location:  location + "!/" + prefix + file.Name,
			ClassName: className,
			read: func() ([]byte, error) {
				return readZipFile(file)
			},
		})
	}
	return ret
}

func readZipFile(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
