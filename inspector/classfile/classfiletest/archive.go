package classfiletest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
)

// ArchiveBytes returns zip bytes with supplied entries in name order
func ArchiveBytes(entries map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	buffer := new(bytes.Buffer)
	writer := zip.NewWriter(buffer)
	for _, name := range names {
		entry, err := writer.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err = entry.Write(entries[name]); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// WriteArchive writes zip file with supplied entries
func WriteArchive(location string, entries map[string][]byte) error {
	data, err := ArchiveBytes(entries)
	if err != nil {
		return err
	}
	return WriteFile(location, data)
}

// WriteFile writes file creating parent directories
func WriteFile(location string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return err
	}
	return os.WriteFile(location, data, 0o644)
}
