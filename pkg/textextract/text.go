// Package textextract turns a document's raw bytes into plain text before
// they reach the GenAI extract prompt, the same preprocessing role the
// teacher's pkg/processing/extractor/service.go plays ahead of its own
// classifier call. It is best-effort: a mimetype with no matching extractor,
// or an extractor that errors, yields an empty string rather than failing
// the caller, since the raw bytes still go to the provider either way.
package textextract

import (
	"bytes"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the best-effort plain text for data, or "" if no
// extractor handles mimetype or extraction fails.
func Extract(data []byte, mimetype string) string {
	switch {
	case mimetype == "application/pdf":
		text, err := extractPDF(data)
		if err != nil {
			log.Printf("[TEXTEXTRACT] pdf extraction failed: %v", err)
			return ""
		}
		return text
	case strings.HasPrefix(mimetype, "text/"):
		return string(data)
	default:
		return extractOCR(data, mimetype)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	textReader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	raw, err := io.ReadAll(textReader)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
