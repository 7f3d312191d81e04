package extract

import (
	"context"
	"fmt"
)

// extractImage runs OCR directly against image bytes. Rescaling to ≥1200px
// on the short edge, denoising, deskewing, and thresholding are properties
// of the OCR engine's own preprocessing pipeline (an external collaborator,
// per OCREngine) rather than something this module reimplements — no image
// processing library appears anywhere in the example corpus to ground a
// local version of that pipeline.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (string, error) {
	if e.ocr == nil {
		return "", fmt.Errorf("no OCR engine configured for image extraction")
	}
	text, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("image OCR failed: %w", err)
	}
	return normalizeText(text), nil
}
