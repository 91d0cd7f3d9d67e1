// Package geometry provides the planar math used by the card localization
// pipeline: 2D point and vector arithmetic, ordered quadrilaterals, and
// exact 4-point homography solving.
//
// # Coordinate System
//
// All coordinates are in image pixel space: (0,0) at the top-left corner,
// X increasing rightward, Y increasing downward. Because Y grows downward,
// a "clockwise" rotation on screen corresponds to a counter-clockwise
// rotation in conventional math coordinates; see Perp for the convention
// used by offset computations.
//
// # Quadrilateral Winding
//
// Quad stores exactly four points in the fixed order top-left, top-right,
// bottom-right, bottom-left. Producers are responsible for maintaining this
// order (see OrderQuad); SolveHomography and downstream rectification assume
// it and will produce a crossed mapping if given a self-intersecting quad.
//
// # Degenerate Input
//
// Operations that can divide by a vanishing quantity (Normalize, the
// projective divide in Homography.Apply, matrix inversion) detect the
// degenerate case against a small epsilon and report it instead of
// propagating NaN or Inf values downstream.
package geometry
