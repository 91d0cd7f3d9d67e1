// Package scan drives the per-frame card scanning cycle: localize the card,
// debounce the detection across frames, rectify the stable view, dispatch
// the rectified regions to text recognition, and merge the answers into an
// accumulated record.
//
// The Orchestrator owns all cross-frame mutable state (the stabilizer, the
// in-flight recognition flag, the cool-down deadline, the record). It is a
// single-owner component: Tick and Run must be called from one goroutine.
// The only concurrency is the recognition dispatch, which runs off the loop
// and reports back through a channel that Tick drains, so recognizer
// results never mutate orchestrator state from another goroutine.
//
// The loop is built to run indefinitely against a live feed: every error a
// frame can provoke (no markers, degenerate geometry, recognizer failure,
// a frame that is not ready) is logged and survived, never escalated.
package scan
