// Package scenario reads, writes and generates crosswalk scenario files.
//
// A scenario is a CSV-like list of records, one per line:
//
//	A12,0,7,49,9     class symbol + id, start x, start y, destination x, destination y
//	D,3,0,3,0        obstacles carry no id and their destination equals their start
//
// Blank lines and lines starting with '#' are ignored.
package scenario
