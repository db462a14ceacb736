// Package constants provides named constants used throughout the crosswalk codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Lifecycle constants
const (
	// DefaultMaxTouristMoves bounds a Tourist's lifetime. A Tourist whose
	// move counter exceeds this value is removed at the next cleanup, so it
	// survives at most DefaultMaxTouristMoves+1 qualifying actions.
	DefaultMaxTouristMoves = 40
)

// Grid constants match the free-flow crosswalk the model was built around.
const (
	// DefaultWidth is the number of columns in the default crosswalk.
	DefaultWidth = 50

	// DefaultHeight is the number of rows in the default crosswalk.
	DefaultHeight = 20

	// DefaultTurns is used when neither flags nor config name a turn count
	// and stdin is not interactive.
	DefaultTurns = 40

	// MaxGridCells caps width*height for any run.
	MaxGridCells = 1_000_000

	// MaxTurns caps the turn count of any run.
	MaxTurns = 100_000
)

// Scenario generator defaults. The start band is [BandMinX,BandMaxX) x
// [BandMinY,BandMaxY) on the left edge, mirrored onto the right edge.
const (
	DefaultBandMinX = 0
	DefaultBandMaxX = 6
	DefaultBandMinY = 7
	DefaultBandMaxY = 13

	// Class probabilities per band cell; the remainder leaves the cell empty.
	DefaultProbMover        = 0.5
	DefaultProbPathFollower = 0.3
	DefaultProbTourist      = 0.15
)

// Storage and output layout
const (
	// DirName is the per-project working directory, relative to --root.
	DirName = ".crosswalk"

	// DatabaseFile is the SQLite run archive inside DirName.
	DatabaseFile = "crosswalk.db"

	// ConfigFile is the YAML config inside ~/DirName.
	ConfigFile = "config.yaml"

	// DefaultSnapshotScale is the pixel size of one cell in PNG snapshots.
	DefaultSnapshotScale = 8
)
