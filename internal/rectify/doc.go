// Package rectify flattens an obliquely viewed card into a canonical
// rectangle and slices out the regions handed to text recognition.
//
// The warp maps every destination pixel back into source space through the
// homography from the canonical rectangle to the detected quad, sampling
// with bilinear interpolation. Destination pixels whose pre-image falls
// outside the source frame are left at the background color rather than
// sampled.
//
// CropStretch is the lower-fidelity fallback: it crops the quad's bounding
// box and stretches it to the canonical size without correcting
// perspective. It exists for callers that only have a bounding box and need
// a usable image quickly; prefer Rectify whenever a true quadrilateral is
// available.
package rectify
