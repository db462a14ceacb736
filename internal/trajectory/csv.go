// Package trajectory exports per-turn agent positions as CSV.
package trajectory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/crosswalk/internal/models"
	"github.com/nvandessel/crosswalk/internal/simulation"
)

// Header is the first row of every trajectory file.
var Header = []string{"turn", "class", "id", "x", "y", "dest_x", "dest_y"}

// CSVWriter writes one row per active agent per frame.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	header bool
	rows   int
}

// NewCSVWriter writes to w. The header is written with the first frame.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// CreateCSV creates (or truncates) the file at path, including missing
// parent directories. Close or Finish closes the file.
func CreateCSV(path string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating trajectory directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trajectory file: %w", err)
	}
	cw := NewCSVWriter(f)
	cw.closer = f
	return cw, nil
}

// Rows returns the number of data rows written so far.
func (c *CSVWriter) Rows() int { return c.rows }

// ObserveFrame implements simulation.Observer.
func (c *CSVWriter) ObserveFrame(_ context.Context, frame models.Frame) error {
	return c.WriteRows(frame.Rows)
}

// WriteRows writes rows, emitting the header first if needed.
func (c *CSVWriter) WriteRows(rows []models.TrajectoryRow) error {
	if !c.header {
		if err := c.w.Write(Header); err != nil {
			return fmt.Errorf("writing trajectory header: %w", err)
		}
		c.header = true
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Turn),
			r.Symbol,
			r.ID,
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.DestX),
			strconv.Itoa(r.DestY),
		}
		if err := c.w.Write(record); err != nil {
			return fmt.Errorf("writing trajectory row: %w", err)
		}
		c.rows++
	}
	c.w.Flush()
	return c.w.Error()
}

// Finish implements simulation.Finisher.
func (c *CSVWriter) Finish(context.Context, simulation.Result) error {
	return c.Close()
}

// Close flushes buffered rows and closes the file if the writer owns one.
// It is safe to call more than once.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		c.closer = nil
	}
	return err
}

// ReadCSV parses a trajectory file written by CSVWriter.
func ReadCSV(r io.Reader) ([]models.TrajectoryRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading trajectory: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]models.TrajectoryRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		var nums [5]int
		for j, idx := range []int{0, 3, 4, 5, 6} {
			v, err := strconv.Atoi(rec[idx])
			if err != nil {
				return nil, fmt.Errorf("trajectory line %d column %s: %w", i+2, Header[idx], err)
			}
			nums[j] = v
		}
		out = append(out, models.TrajectoryRow{
			Turn:   nums[0],
			Symbol: rec[1],
			ID:     rec[2],
			X:      nums[1],
			Y:      nums[2],
			DestX:  nums[3],
			DestY:  nums[4],
		})
	}
	return out, nil
}
