// Package pdf pulls plain text out of uploaded resumes.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

// Extractor converts PDF bytes to text through docconv (poppler's pdftotext
// must be on PATH).
type Extractor struct {
	convert func(io.Reader) (string, map[string]string, error)
}

func NewExtractor() *Extractor {
	return &Extractor{convert: docconv.ConvertPDF}
}

// Text returns the document body with surrounding whitespace trimmed. An
// image-only PDF yields an empty string and no error.
func (e *Extractor) Text(r io.Reader) (string, error) {
	body, _, err := e.convert(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return strings.TrimSpace(body), nil
}
