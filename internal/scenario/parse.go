package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nvandessel/crosswalk/internal/models"
)

// Sentinel errors wrapped by ParseError.
var (
	ErrFieldCount   = errors.New("expected 5 fields")
	ErrCoordinate   = errors.New("coordinate is not an integer")
	ErrOutOfRange   = errors.New("coordinate outside grid")
	ErrClassSymbol  = errors.New("class symbol must be a letter")
	ErrMissingID    = errors.New("agent id missing")
	ErrObstacleMove = errors.New("obstacle destination differs from its start")
	ErrDuplicateID  = errors.New("agent id already used by this class")
)

// ParseError reports the first malformed record of a scenario.
type ParseError struct {
	Line   int
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Record, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads a scenario file. See Parse.
func ParseFile(path string, width, height int) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	records, err := Parse(f, width, height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads scenario records from r and checks every coordinate against a
// width x height grid. A non-positive width or height disables the range
// check. Agent ids must be unique within a class; obstacles are exempt.
// Parsing stops at the first bad record with a *ParseError.
func Parse(r io.Reader, width, height int) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var records []models.Record
	seen := make(map[string]int)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, fmt.Errorf("reading scenario: %w", err)
		}

		line, _ := cr.FieldPos(0)
		rec, err := parseRecord(fields, width, height)
		if err != nil {
			return nil, &ParseError{Line: line, Record: strings.Join(fields, ","), Err: err}
		}
		if rec.Class != models.ClassObstacle {
			key := string(rec.Class.Symbol()) + rec.ID
			if first, ok := seen[key]; ok {
				return nil, &ParseError{
					Line:   line,
					Record: strings.Join(fields, ","),
					Err:    fmt.Errorf("%w: %s first seen on line %d", ErrDuplicateID, key, first),
				}
			}
			seen[key] = line
		}
		records = append(records, rec)
	}
}

func parseRecord(fields []string, width, height int) (models.Record, error) {
	if len(fields) != 5 {
		return models.Record{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(fields))
	}

	tag := strings.TrimSpace(fields[0])
	if tag == "" {
		return models.Record{}, ErrClassSymbol
	}
	class, ok := models.ClassFromSymbol(tag[0])
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %q", ErrClassSymbol, tag[:1])
	}
	id := tag[1:]
	if id == "" && class != models.ClassObstacle {
		return models.Record{}, ErrMissingID
	}

	var coords [4]int
	for i := range coords {
		v, err := strconv.Atoi(strings.TrimSpace(fields[i+1]))
		if err != nil {
			return models.Record{}, fmt.Errorf("%w: %q", ErrCoordinate, fields[i+1])
		}
		coords[i] = v
	}

	rec := models.Record{
		Class: class,
		ID:    id,
		Start: models.Point{X: coords[0], Y: coords[1]},
		Dest:  models.Point{X: coords[2], Y: coords[3]},
	}

	if width > 0 && height > 0 {
		for _, p := range []models.Point{rec.Start, rec.Dest} {
			if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
				return models.Record{}, fmt.Errorf("%w: %v not in %dx%d", ErrOutOfRange, p, width, height)
			}
		}
	}

	if class == models.ClassObstacle && rec.Start != rec.Dest {
		return models.Record{}, ErrObstacleMove
	}
	return rec, nil
}
