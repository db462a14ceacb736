package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/crosswalk/internal/models"
)

func TestParse(t *testing.T) {
	input := `# left band
A1,0,7,49,9
B12, 1, 8, 49, 12

C3,2,9,49,7
x4,3,9,1,7
D,10,0,10,0
`
	records, err := Parse(strings.NewReader(input), 50, 20)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, models.Record{
		Class: models.ClassMover, ID: "1",
		Start: models.Point{X: 0, Y: 7}, Dest: models.Point{X: 49, Y: 9},
	}, records[0])
	assert.Equal(t, models.ClassPathFollower, records[1].Class)
	assert.Equal(t, "12", records[1].ID)
	assert.Equal(t, models.Point{X: 49, Y: 12}, records[1].Dest)
	assert.Equal(t, models.ClassTourist, records[2].Class)
	assert.Equal(t, models.ClassTourist, records[3].Class, "unknown letters are tourists")
	assert.Equal(t, models.ClassObstacle, records[4].Class)
	assert.Empty(t, records[4].ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
	}{
		{"too few fields", "A1,0,0,1", ErrFieldCount, 1},
		{"too many fields", "A1,0,0,1,1,1", ErrFieldCount, 1},
		{"non-numeric", "A1,0,zero,1,1", ErrCoordinate, 1},
		{"start out of range", "A1,0,20,1,1", ErrOutOfRange, 1},
		{"destination out of range", "B1,0,0,50,1", ErrOutOfRange, 1},
		{"negative", "C1,-1,0,1,1", ErrOutOfRange, 1},
		{"empty symbol", ",0,0,1,1", ErrClassSymbol, 1},
		{"digit symbol", "71,0,0,1,1", ErrClassSymbol, 1},
		{"missing id", "A,0,0,1,1", ErrMissingID, 1},
		{"moving obstacle", "D,0,0,1,1", ErrObstacleMove, 1},
		{"reports line number", "A1,0,0,1,1\n\nA2,0,1,1", ErrFieldCount, 3},
		{"duplicate id", "A1,0,0,4,0\nA1,0,2,4,2", ErrDuplicateID, 2},
		{"duplicate tourist under another letter", "C1,0,0,4,0\nx1,0,2,4,2", ErrDuplicateID, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), 50, 20)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Contains(t, pe.Error(), "line")
		})
	}
}

func TestParse_IDsUniquePerClass(t *testing.T) {
	input := "A1,0,0,4,0\nB1,0,1,4,1\nC1,0,2,4,2\nD,1,3,1,3\nD,2,3,2,3"
	records, err := Parse(strings.NewReader(input), 5, 4)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestParse_NoBoundsCheckWithoutGrid(t *testing.T) {
	records, err := Parse(strings.NewReader("A1,100,100,200,200"), 0, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.csv")
	require.NoError(t, os.WriteFile(path, []byte("A1,0,0,2,0\nD,1,1,1,1\n"), 0644))

	records, err := ParseFile(path, 3, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = ParseFile(filepath.Join(dir, "missing.csv"), 3, 2)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite_ReadsBack(t *testing.T) {
	records := []models.Record{
		{Class: models.ClassMover, ID: "1", Start: models.Point{X: 0, Y: 7}, Dest: models.Point{X: 49, Y: 9}},
		{Class: models.ClassTourist, ID: "2", Start: models.Point{X: 48, Y: 8}, Dest: models.Point{X: 1, Y: 12}},
		{Class: models.ClassObstacle, Start: models.Point{X: 3, Y: 0}, Dest: models.Point{X: 3, Y: 0}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	assert.Equal(t, "A1,0,7,49,9\nC2,48,8,1,12\nD,3,0,3,0\n", buf.String())

	got, err := Parse(&buf, 50, 20)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
