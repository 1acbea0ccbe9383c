// Package loader turns uploaded files into plain text for indexing.
// Heavyweight extraction (PDF, OCR, DOCX) lives in an external service;
// this package only handles formats that already are text.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"audiobook/types"
)

var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".text": {},
}

// ExtractText returns the document text for a supported upload.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := textExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, ext)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", types.ErrExtractionFailed, filename)
	}
	return string(data), nil
}

// DocumentID derives the logical document name from an uploaded filename:
// the base name without extension, with spaces collapsed to underscores.
func DocumentID(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.TrimSpace(name)
	return strings.Join(strings.Fields(name), "_")
}
