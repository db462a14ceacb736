package scenario

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/models"
)

// Rand is the randomness Generate draws from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// GeneratorConfig shapes a free-flow crossing: agents fill a start band on
// the left edge and its mirror image on the right edge, and walk to the
// opposite side.
type GeneratorConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// The start band is [MinX,MaxX) x [MinY,MaxY).
	MinX int `json:"min_x" yaml:"min_x"`
	MaxX int `json:"max_x" yaml:"max_x"`
	MinY int `json:"min_y" yaml:"min_y"`
	MaxY int `json:"max_y" yaml:"max_y"`

	// Per-cell class probabilities. The remainder leaves the cell empty.
	ProbMover        float64 `json:"prob_mover" yaml:"prob_mover"`
	ProbPathFollower float64 `json:"prob_path_follower" yaml:"prob_path_follower"`
	ProbTourist      float64 `json:"prob_tourist" yaml:"prob_tourist"`

	// Walls fills every row outside [MinY,MaxY) with obstacles.
	Walls bool `json:"walls" yaml:"walls"`
}

// DefaultGeneratorConfig returns the classic 50x20 crossing.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Width:            constants.DefaultWidth,
		Height:           constants.DefaultHeight,
		MinX:             constants.DefaultBandMinX,
		MaxX:             constants.DefaultBandMaxX,
		MinY:             constants.DefaultBandMinY,
		MaxY:             constants.DefaultBandMaxY,
		ProbMover:        constants.DefaultProbMover,
		ProbPathFollower: constants.DefaultProbPathFollower,
		ProbTourist:      constants.DefaultProbTourist,
		Walls:            true,
	}
}

// Validate checks that the band fits the grid and the probabilities are sane.
func (c GeneratorConfig) Validate() error {
	var errs []error
	if c.Width < 2 || c.Height < 1 {
		errs = append(errs, fmt.Errorf("grid %dx%d too small", c.Width, c.Height))
	}
	if c.MinX < 0 || c.MaxX <= c.MinX || c.MaxX > c.Width {
		errs = append(errs, fmt.Errorf("band x range [%d,%d) invalid for width %d", c.MinX, c.MaxX, c.Width))
	}
	if 2*c.MaxX > c.Width {
		errs = append(errs, fmt.Errorf("band x range [%d,%d) overlaps its mirror in width %d", c.MinX, c.MaxX, c.Width))
	}
	if c.MinY < 0 || c.MaxY <= c.MinY || c.MaxY > c.Height {
		errs = append(errs, fmt.Errorf("band y range [%d,%d) invalid for height %d", c.MinY, c.MaxY, c.Height))
	}
	for name, p := range map[string]float64{
		"prob_mover":         c.ProbMover,
		"prob_path_follower": c.ProbPathFollower,
		"prob_tourist":       c.ProbTourist,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s %.3f not in [0,1]", name, p))
		}
	}
	if sum := c.ProbMover + c.ProbPathFollower + c.ProbTourist; sum > 1 {
		errs = append(errs, fmt.Errorf("class probabilities sum to %.3f > 1", sum))
	}
	return errors.Join(errs...)
}

// Generate rolls a scenario. Every band cell on the left gets a class with
// the configured probabilities and a destination on the far right column;
// then the mirrored band on the right is rolled independently with
// destinations in column 1. Destination rows are drawn uniformly from the
// band's rows. Ids count up from 1 per class.
func Generate(cfg GeneratorConfig, rng Rand) ([]models.Record, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generator config: %w", err)
	}

	var out []models.Record
	ids := map[models.Class]int{}

	roll := func(start models.Point, destX int) {
		var class models.Class
		r := rng.Float64()
		switch {
		case r < cfg.ProbMover:
			class = models.ClassMover
		case r < cfg.ProbMover+cfg.ProbPathFollower:
			class = models.ClassPathFollower
		case r < cfg.ProbMover+cfg.ProbPathFollower+cfg.ProbTourist:
			class = models.ClassTourist
		default:
			return
		}
		ids[class]++
		out = append(out, models.Record{
			Class: class,
			ID:    strconv.Itoa(ids[class]),
			Start: start,
			Dest:  models.Point{X: destX, Y: cfg.MinY + rng.IntN(cfg.MaxY-cfg.MinY)},
		})
	}

	for x := cfg.MinX; x < cfg.MaxX; x++ {
		for y := cfg.MinY; y < cfg.MaxY; y++ {
			roll(models.Point{X: x, Y: y}, cfg.Width-1)
		}
	}
	for x := cfg.MinX; x < cfg.MaxX; x++ {
		for y := cfg.MinY; y < cfg.MaxY; y++ {
			roll(models.Point{X: cfg.Width - 1 - x, Y: y}, 1)
		}
	}

	if cfg.Walls {
		for x := 0; x < cfg.Width; x++ {
			for y := 0; y < cfg.Height; y++ {
				if y >= cfg.MinY && y < cfg.MaxY {
					continue
				}
				p := models.Point{X: x, Y: y}
				out = append(out, models.Record{Class: models.ClassObstacle, Start: p, Dest: p})
			}
		}
	}
	return out, nil
}
