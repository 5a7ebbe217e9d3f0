// Package export builds ZIP archives from stored document records.
package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"nothivault/internal/vault/codec"
	"nothivault/internal/vault/store"
)

// FolderArchive decodes every record and packs the original files into
// one ZIP. Records are archived in the order given; colliding filenames
// get a numeric suffix so no entry is silently dropped.
func FolderArchive(records []store.Record) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	taken := make(map[string]bool, len(records))
	for _, rec := range records {
		_, data, err := codec.Decode(rec.DataURL)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("decode payload of %s (%s): %w", rec.ID, rec.Name, err)
		}

		name := uniqueName(rec.Name, taken)
		taken[name] = true

		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		w, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// uniqueName returns name, or "name (n).ext" for the first n that is
// still free.
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}
