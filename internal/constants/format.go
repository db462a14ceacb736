package constants

// SnapshotFormat selects how per-turn grid snapshots are written to disk.
type SnapshotFormat string

const (
	// FormatNone disables snapshot files.
	FormatNone SnapshotFormat = "none"

	// FormatText writes one symbol grid per turn (turn_0001.txt).
	FormatText SnapshotFormat = "txt"

	// FormatPNG writes one grayscale image per turn (turn_0001.png).
	FormatPNG SnapshotFormat = "png"
)

// Valid returns true if the format is a recognized value.
func (f SnapshotFormat) Valid() bool {
	switch f {
	case FormatNone, FormatText, FormatPNG:
		return true
	}
	return false
}

// Extension returns the file extension for the format, without the dot.
func (f SnapshotFormat) Extension() string {
	if f == FormatNone {
		return ""
	}
	return string(f)
}

// String returns the string representation of the format.
func (f SnapshotFormat) String() string {
	return string(f)
}
