package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a local Tesseract installation via
// gosseract.
//
// Each Recognize call uses its own gosseract client; the clients are not
// safe for concurrent reuse and the scan loop dispatches regions
// sequentially anyway. Tesseract reads from a file path, so the region is
// written to a temporary PNG that is removed before returning.
type Tesseract struct {
	// Language is the Tesseract language code, e.g. "eng". The matching
	// training data must be installed.
	Language string
}

// NewTesseract creates a recognizer for the given language code. An empty
// code defaults to English.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language}
}

// Recognize runs OCR on img and returns the text with a confidence score.
//
// The confidence is the mean of Tesseract's word-level confidences; when
// word boxes are unavailable the text is still returned with confidence 0.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}

	tmpFile, err := os.CreateTemp("", "cardscan-region-*.png")
	if err != nil {
		return Recognition{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return Recognition{}, fmt.Errorf("failed to encode region: %w", err)
	}
	tmpFile.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return Recognition{}, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return Recognition{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return Recognition{Text: text}, nil
	}

	var sum float64
	n := 0
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		sum += float64(box.Confidence) / 100.0
		n++
	}
	if n == 0 {
		return Recognition{Text: text}, nil
	}
	return Recognition{Text: text, Confidence: sum / float64(n)}, nil
}
