package scenario

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/crosswalk/internal/models"
)

func TestGenerate_DefaultCrossing(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	records, err := Generate(cfg, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	starts := map[models.Point]bool{}
	ids := map[string]bool{}
	walls := 0
	for _, r := range records {
		require.False(t, starts[r.Start], "duplicate start %v", r.Start)
		starts[r.Start] = true

		if r.Class == models.ClassObstacle {
			walls++
			assert.Equal(t, r.Start, r.Dest)
			assert.True(t, r.Start.Y < cfg.MinY || r.Start.Y >= cfg.MaxY)
			continue
		}

		label := string(r.Class.Symbol()) + r.ID
		require.False(t, ids[label], "duplicate id %s", label)
		ids[label] = true

		assert.GreaterOrEqual(t, r.Start.Y, cfg.MinY)
		assert.Less(t, r.Start.Y, cfg.MaxY)
		assert.GreaterOrEqual(t, r.Dest.Y, cfg.MinY)
		assert.Less(t, r.Dest.Y, cfg.MaxY)

		switch {
		case r.Start.X < cfg.MaxX:
			assert.Equal(t, cfg.Width-1, r.Dest.X)
		case r.Start.X >= cfg.Width-cfg.MaxX:
			assert.Equal(t, 1, r.Dest.X)
		default:
			t.Errorf("start %v outside both bands", r.Start)
		}
	}

	assert.Equal(t, cfg.Width*(cfg.Height-(cfg.MaxY-cfg.MinY)), walls)
	assert.NotEmpty(t, ids)
}

func TestGenerate_IdsCountPerClass(t *testing.T) {
	cfg := GeneratorConfig{Width: 10, Height: 3, MinX: 0, MaxX: 2, MinY: 1, MaxY: 2, ProbMover: 1}
	records, err := Generate(cfg, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)

	require.Len(t, records, 4)
	for i, r := range records {
		assert.Equal(t, models.ClassMover, r.Class)
		assert.Equal(t, string(rune('1'+i)), r.ID)
	}
	assert.Equal(t, models.Point{X: 9, Y: 1}, records[2].Start, "mirror of x=0")
	assert.Equal(t, models.Point{X: 8, Y: 1}, records[3].Start, "mirror of x=1")
}

func TestGenerate_SameSeedSameScenario(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	a, err := Generate(cfg, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	b, err := Generate(cfg, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeneratorConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{"band wider than grid", func(c *GeneratorConfig) { c.MaxX = 60 }},
		{"band overlaps mirror", func(c *GeneratorConfig) { c.MaxX = 30 }},
		{"empty y range", func(c *GeneratorConfig) { c.MaxY = c.MinY }},
		{"negative probability", func(c *GeneratorConfig) { c.ProbTourist = -0.1 }},
		{"probabilities over one", func(c *GeneratorConfig) { c.ProbMover = 0.9 }},
	}

	require.NoError(t, DefaultGeneratorConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
			_, err := Generate(cfg, rand.New(rand.NewPCG(1, 1)))
			assert.Error(t, err)
		})
	}
}
