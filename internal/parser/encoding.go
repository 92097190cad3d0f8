package parser

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/Belphemur/SubMatch/internal/apperrors"
)

// minConfidence is the lowest chardet confidence accepted as a detection.
const minConfidence = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CanonicalEncoding resolves an encoding label ("latin1", "UTF8", "cp1252")
// to its WHATWG canonical name.
func CanonicalEncoding(label string) (string, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return "", err
	}
	return htmlindex.Name(enc)
}

// DetectEncoding returns the canonical name of the encoding of data, or ""
// when it cannot be determined.
func DetectEncoding(data []byte) string {
	switch {
	case len(data) == 0:
		return ""
	case bytes.HasPrefix(data, utf8BOM):
		return "utf-8"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "utf-16be"
	}

	if utf8.Valid(data) {
		if isASCII(data) {
			// ASCII is a subset of every supported target
			name, _ := CanonicalEncoding("us-ascii")
			return name
		}
		return "utf-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return ""
	}
	name, err := CanonicalEncoding(result.Charset)
	if err != nil {
		return ""
	}
	return name
}

// Transcode converts data from one encoding to another. Characters the target
// cannot represent are replaced. A leading BOM or replacement character left
// over from the source encoding is dropped.
func Transcode(data []byte, from, to string) ([]byte, error) {
	fromEnc, err := htmlindex.Get(from)
	if err != nil {
		return nil, &apperrors.ErrEncoding{From: from, To: to, Err: err}
	}
	toEnc, err := htmlindex.Get(to)
	if err != nil {
		return nil, &apperrors.ErrEncoding{From: from, To: to, Err: err}
	}

	decoded, err := fromEnc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, &apperrors.ErrEncoding{From: from, To: to, Err: err}
	}
	decoded = trimLeadingMarks(decoded)

	encoded, err := encoding.ReplaceUnsupported(toEnc.NewEncoder()).Bytes(decoded)
	if err != nil {
		return nil, &apperrors.ErrEncoding{From: from, To: to, Err: err}
	}
	return encoded, nil
}

// TranscodeFile re-encodes the subtitle file at path into target in place.
// It returns the detected source encoding and whether the file was rewritten.
func TranscodeFile(path, target string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}

	to, err := CanonicalEncoding(target)
	if err != nil {
		return "", false, &apperrors.ErrEncoding{To: target, Err: err}
	}

	from := DetectEncoding(data)
	if from == "" {
		return "", false, &apperrors.ErrEncoding{To: to, Err: fmt.Errorf("cannot detect encoding of %s", path)}
	}
	if from == to {
		return from, false, nil
	}

	converted, err := Transcode(data, from, to)
	if err != nil {
		return from, false, err
	}
	if err := WriteSubtitleFile(path, converted); err != nil {
		return from, false, err
	}
	return from, true, nil
}

// trimLeadingMarks drops BOMs and replacement characters at the start of
// decoded UTF-8 text.
func trimLeadingMarks(b []byte) []byte {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != '\uFEFF' && r != utf8.RuneError {
			break
		}
		b = b[size:]
	}
	return b
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
