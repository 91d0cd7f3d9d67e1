// Package contour locates a card-shaped quadrilateral in a binarized frame,
// for mats without fiducial markers.
//
// The input is a single-channel binary image whose foreground (white) pixels
// cover the card region; producing that image is the caller's job (see the
// preprocess package). The localizer enumerates connected foreground
// regions, reduces each plausible region to a four-vertex convex polygon,
// and scores the candidates against the expected card geometry.
//
// Area fraction, aspect ratio and solidity act as hard gates; the relative
// weighting of the surviving candidates is tunable policy.
package contour
