package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/nvandessel/crosswalk/internal/models"
)

// MaxPlotValue is the plot value drawn as white. Zero is black.
const MaxPlotValue = 3.0

// RenderText draws the snapshot as symbol rows framed by a turn header.
func RenderText(s models.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn %d\n", s.Turn)
	for _, row := range s.Symbols {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// GrayLevel maps a plot value onto 0..255.
func GrayLevel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= MaxPlotValue:
		return 255
	default:
		return uint8(v/MaxPlotValue*255 + 0.5)
	}
}

// RenderPNG encodes the snapshot as a grayscale image with each cell drawn
// as a scale x scale block.
func RenderPNG(w io.Writer, s models.Snapshot, scale int) error {
	if scale < 1 {
		scale = 1
	}
	height := len(s.Values)
	width := 0
	if height > 0 {
		width = len(s.Values[0])
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("cannot render empty %dx%d snapshot", width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width*scale, height*scale))
	for y, row := range s.Values {
		for x, v := range row {
			c := color.Gray{Y: GrayLevel(v)}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetGray(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
