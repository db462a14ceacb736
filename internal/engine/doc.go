// Package engine implements the discrete-time crosswalk simulation: agents
// of four classes share a bounded grid, advance toward their destinations one
// cell per turn, and resolve contention for a cell through a two-party swap
// negotiation.
//
// A World is single-threaded. Each call to Step plays one full turn:
//
//	Movers act (shuffled)         -> cleanup
//	PathFollowers act (shuffled)  -> cleanup
//	Tourists act (shuffled, mode) -> cleanup
//	reset action states, turn++
//
// All randomness comes from the Rand supplied in Options, so a pinned seed
// reproduces a run exactly.
package engine
