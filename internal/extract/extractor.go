package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"atsresume/internal/apperr"
)

// minimumCharacters is the threshold below which every extraction path is
// considered to have failed — the caller interprets this as
// "insufficient_text" (spec §4.1/§4.6).
const minimumCharacters = 50

var recognizedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true,
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tif": true, ".tiff": true,
	".html": true, ".htm": true,
}

// Extractor turns raw file bytes into a single normalized UTF-8 string.
type Extractor struct {
	ocr             OCREngine
	docConverterURL string
}

// New constructs an Extractor. ocr may be NoOpOCREngine() when no OCR
// service is configured; docConverterURL is the legacy .doc external
// conversion endpoint (OCR.DocConverterURL in config), empty if unset.
func New(ocr OCREngine, docConverterURL string) *Extractor {
	if ocr == nil {
		ocr = NoOpOCREngine()
	}
	return &Extractor{ocr: ocr, docConverterURL: docConverterURL}
}

// Extract dispatches on filename extension and returns ExtractionError if
// every available path yields fewer than minimumCharacters of text.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error

	switch {
	case ext == ".pdf":
		text, err = e.extractPDF(ctx, data)
	case ext == ".docx":
		text, err = e.extractDOCX(ctx, data)
	case ext == ".doc":
		text, err = e.extractDOC(ctx, data)
	case ext == ".txt":
		text, err = normalizeText(string(data)), nil
	case isImageExtension(ext):
		text, err = e.extractImage(ctx, data)
	case ext == ".html" || ext == ".htm":
		text, err = e.extractHTML(ctx, data)
	default:
		text, err = decodeUTF8WithReplacement(data), nil
	}

	if err != nil || len(strings.TrimSpace(text)) < minimumCharacters {
		if err == nil {
			err = fmt.Errorf("insufficient_text")
		}
		return "", &apperr.ExtractionError{Filename: filename, Err: err}
	}
	return text, nil
}

// ExtractForceOCR re-runs extraction for the failed:insufficient_text retry
// path (spec §4.5/§4.6), forcing the OCR path for formats that have one
// (PDF/image) instead of trying the text layer first. Formats with no OCR
// fallback to force just run the normal Extract.
func (e *Extractor) ExtractForceOCR(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext != ".pdf" {
		return e.Extract(ctx, data, filename)
	}

	text, err := e.ocrPDFPages(ctx, data)
	if err != nil || len(strings.TrimSpace(text)) < minimumCharacters {
		if err == nil {
			err = fmt.Errorf("insufficient_text")
		}
		return "", &apperr.ExtractionError{Filename: filename, Err: err}
	}
	return normalizeText(text), nil
}

// Recognized reports whether ext (including the leading dot, case
// insensitive) is in the allow-list; unknown extensions still get a
// best-effort UTF-8 decode rather than being rejected outright.
func Recognized(ext string) bool {
	return recognizedExtensions[strings.ToLower(ext)]
}

func isImageExtension(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// decodeUTF8WithReplacement decodes data as UTF-8, substituting the
// replacement character for any invalid byte sequence, for unrecognized
// extensions.
func decodeUTF8WithReplacement(data []byte) string {
	if utf8.Valid(data) {
		return normalizeText(string(data))
	}
	var b strings.Builder
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		b.WriteRune(r)
		i += size
	}
	return normalizeText(b.String())
}
