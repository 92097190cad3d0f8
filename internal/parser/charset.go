package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader converts an HTML page to UTF-8 before it is handed to goquery.
// The encoding is taken from a BOM, then <meta charset> or http-equiv, then
// a content heuristic. The catalogs still serve Latin-1 and Windows-1252 pages.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	return charset.NewReader(body, "")
}
