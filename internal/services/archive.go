package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/nwaples/rardecode/v2"

	"github.com/Belphemur/SubMatch/internal/apperrors"
)

const (
	subtitleExtension = ".srt"
	infoExtension     = ".nfo"

	// maxEntrySize bounds the extracted subtitle.
	maxEntrySize = 32 << 20
)

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// SelectEntry picks the subtitle among archive entry names: the first .srt
// entry, otherwise the first entry that is not an .nfo file.
func SelectEntry(names []string) (int, bool) {
	for i, name := range names {
		if strings.HasSuffix(strings.ToLower(name), subtitleExtension) {
			return i, true
		}
	}
	for i, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), infoExtension) {
			return i, true
		}
	}
	return -1, false
}

// extractSubtitle reads the subtitle entry out of the archive stored in f.
// It returns the entry name and content.
func extractSubtitle(f *os.File, size int64, sourceURL string) (string, []byte, error) {
	header := make([]byte, len(rarMagic))
	n, err := f.ReadAt(header, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "cannot read archive", Err: err}
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, zipMagic):
		return extractZip(f, size, sourceURL)
	case bytes.HasPrefix(header, rarMagic):
		return extractRar(f, sourceURL)
	default:
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "unsupported archive format"}
	}
}

func extractZip(r io.ReaderAt, size int64, sourceURL string) (string, []byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "invalid zip archive", Err: err}
	}

	var (
		files []*zip.File
		names []string
	)
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		files = append(files, file)
		names = append(names, file.Name)
	}

	idx, ok := SelectEntry(names)
	if !ok {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "no subtitle file found"}
	}

	rc, err := files[idx].Open()
	if err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: fmt.Sprintf("cannot open %s", names[idx]), Err: err}
	}
	defer rc.Close()

	data, err := readEntry(rc)
	if err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: fmt.Sprintf("cannot read %s", names[idx]), Err: err}
	}
	return path.Base(names[idx]), data, nil
}

// extractRar walks the archive twice: RAR is a stream format, so the entry
// names are only known once every header has been read.
func extractRar(f *os.File, sourceURL string) (string, []byte, error) {
	names, err := rarEntries(f)
	if err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "invalid rar archive", Err: err}
	}

	idx, ok := SelectEntry(names)
	if !ok {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "no subtitle file found"}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "cannot rewind archive", Err: err}
	}
	rr, err := rardecode.NewReader(f)
	if err != nil {
		return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: "invalid rar archive", Err: err}
	}

	for i := 0; ; {
		hdr, err := rr.Next()
		if err != nil {
			return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: fmt.Sprintf("cannot reach %s", names[idx]), Err: err}
		}
		if hdr.IsDir {
			continue
		}
		if i == idx {
			data, err := readEntry(rr)
			if err != nil {
				return "", nil, &apperrors.ErrArchive{URL: sourceURL, Reason: fmt.Sprintf("cannot read %s", names[idx]), Err: err}
			}
			return path.Base(names[idx]), data, nil
		}
		i++
	}
}

func rarEntries(f *os.File) ([]string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	rr, err := rardecode.NewReader(f)
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		hdr, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if !hdr.IsDir {
			names = append(names, hdr.Name)
		}
	}
}

func readEntry(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	return data, nil
}
