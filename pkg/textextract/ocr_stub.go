//go:build !ocr

package textextract

// extractOCR is the default no-op: image mimetypes go to the provider as
// raw bytes only. Build with -tags=ocr to link the Tesseract-backed
// extractor in ocr.go instead.
func extractOCR(data []byte, mimetype string) string {
	return ""
}
