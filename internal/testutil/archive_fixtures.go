package testutil

import (
	"archive/zip"
	"bytes"
	"testing"
)

// ArchiveEntry is a file stored in a generated archive. A Name ending in "/"
// is stored as a directory.
type ArchiveEntry struct {
	Name string
	Body []byte
}

// BuildZip builds an in-memory zip archive holding entries in order.
func BuildZip(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", e.Name, err)
		}
		if len(e.Body) == 0 {
			continue
		}
		if _, err := w.Write(e.Body); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip archive: %v", err)
	}
	return buf.Bytes()
}
