// Package layout resolves the position of a card from fiducial markers
// printed on a scanning mat.
//
// The mat holds four square markers arranged around a card-sized outline,
// one per corner, separated from the card edge by a fixed gap. Given the
// marker corner positions a detector reported for one frame, the Resolver
// estimates the card's four corners in pixel space, degrading gracefully
// when only a subset of the markers was seen.
//
// All physical dimensions in PhysicalLayout share one unit (millimeters for
// the stock mat); the resolver only ever uses ratios between them, so any
// self-consistent unit works.
package layout
