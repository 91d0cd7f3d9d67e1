// Package ocr defines the text-recognition boundary of the scan engine and
// provides the Tesseract-backed implementation.
//
// The engine itself never performs recognition; it hands rectified card
// regions to a Recognizer and forwards whatever text and confidence come
// back. Downstream field parsing is out of scope here.
package ocr
