//go:build ocr

package textextract

import (
	"bytes"
	"image"
	"image/png"
	"log"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

func imageBytes(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// extractOCR rasterizes image/PDF bytes and runs them through the local
// Tesseract binary, mirroring the teacher's optional
// pkg/processing/extractor/ocr.go build-tag-gated extractor. Absent a
// working Tesseract install this degrades to "" rather than failing the
// caller, same as the stub build.
func extractOCR(data []byte, mimetype string) string {
	client := gosseract.NewClient()
	defer client.Close()

	if mimetype == "application/pdf" {
		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			log.Printf("[TEXTEXTRACT] ocr: open pdf failed: %v", err)
			return ""
		}
		defer doc.Close()

		var buf bytes.Buffer
		for i := 0; i < doc.NumPage(); i++ {
			img, err := doc.Image(i)
			if err != nil {
				continue
			}
			if err := client.SetImageFromBytes(imageBytes(img)); err != nil {
				continue
			}
			text, err := client.Text()
			if err != nil {
				continue
			}
			buf.WriteString(text)
			buf.WriteString("\n")
		}
		return buf.String()
	}

	if err := client.SetImageFromBytes(data); err != nil {
		log.Printf("[TEXTEXTRACT] ocr: load image failed: %v", err)
		return ""
	}
	text, err := client.Text()
	if err != nil {
		log.Printf("[TEXTEXTRACT] ocr: recognize failed: %v", err)
		return ""
	}
	return text
}
