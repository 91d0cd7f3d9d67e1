// Package preprocess turns raw camera frames into the binary images the
// contour localizer consumes, and renders debug overlays.
//
// Binarization runs grayscale conversion, optional Gaussian blur, and a
// global threshold. When no threshold is configured the level is chosen per
// frame with Otsu's method over a perceptual-lightness histogram, which
// separates a bright card from a darker mat without manual tuning.
package preprocess
