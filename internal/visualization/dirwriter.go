package visualization

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/models"
)

// DirWriter saves one snapshot file per turn into a directory.
type DirWriter struct {
	dir    string
	format constants.SnapshotFormat
	scale  int
	files  []string
}

// NewDirWriter creates dir if needed. Scale only applies to PNG output.
func NewDirWriter(dir string, format constants.SnapshotFormat, scale int) (*DirWriter, error) {
	if !format.Valid() || format == constants.FormatNone {
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &DirWriter{dir: dir, format: format, scale: scale}, nil
}

// Files lists the paths written so far.
func (d *DirWriter) Files() []string { return d.files }

// ObserveFrame writes turn_NNNN.<ext>.
func (d *DirWriter) ObserveFrame(_ context.Context, frame models.Frame) error {
	var buf bytes.Buffer
	switch d.format {
	case constants.FormatPNG:
		if err := RenderPNG(&buf, frame.Snapshot, d.scale); err != nil {
			return err
		}
	default:
		buf.WriteString(RenderText(frame.Snapshot))
	}

	path := filepath.Join(d.dir, fmt.Sprintf("turn_%04d.%s", frame.Turn, d.format.Extension()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	d.files = append(d.files, path)
	return nil
}
