package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nvandessel/crosswalk/internal/models"
)

// Write emits records in the format Parse reads.
func Write(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	for _, r := range records {
		row := []string{
			string(r.Class.Symbol()) + r.ID,
			strconv.Itoa(r.Start.X),
			strconv.Itoa(r.Start.Y),
			strconv.Itoa(r.Dest.X),
			strconv.Itoa(r.Dest.Y),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", row[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating scenario: %w", err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
