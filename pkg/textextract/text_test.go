package textextract

import "testing"

func TestExtractPassesThroughPlainText(t *testing.T) {
	got := Extract([]byte("ola mundo"), "text/plain")
	if got != "ola mundo" {
		t.Fatalf("Extract = %q, want passthrough", got)
	}
}

func TestExtractUnknownMimetypeIsBestEffortEmpty(t *testing.T) {
	got := Extract([]byte{0xFF, 0xD8}, "image/jpeg")
	if got != "" {
		t.Fatalf("Extract = %q, want empty string from the no-op OCR stub build", got)
	}
}

func TestExtractMalformedPDFIsBestEffortEmpty(t *testing.T) {
	got := Extract([]byte("not a pdf"), "application/pdf")
	if got != "" {
		t.Fatalf("Extract = %q, want empty string for a PDF the reader can't parse", got)
	}
}
