package ocr

import (
	"context"
	"image"
)

// Recognition is the outcome of recognizing one image region.
type Recognition struct {
	// Text is the raw recognized text, forwarded untouched.
	Text string `json:"text"`

	// Confidence is the recognizer's certainty in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Recognizer extracts text from an image region.
//
// Implementations may take arbitrarily long; callers run them off the scan
// loop and should honor ctx cancellation where the backend allows it.
// A failed recognition returns a zero Recognition and an error; the scan
// loop logs and continues.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (Recognition, error)
}
