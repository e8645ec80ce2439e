// Reactor grid generation: a filled hexagon around the origin whose nutrient
// decays exponentially with distance from the center, with per-tile jitter.
package world

import (
	"errors"
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/cytogenesis/internal/entropy"
)

// ErrNegativeRadius is returned when a grid is requested with a ring radius below zero.
var ErrNegativeRadius = errors.New("world: negative ring radius")

// JitterField selects how the per-tile nutrient richness jitter is drawn.
type JitterField uint8

const (
	FieldUniform JitterField = iota // Independent uniform(-richness, richness) per tile
	FieldSimplex                    // Spatially correlated simplex noise with the same amplitude
)

// simplexFrequency scales axial space before sampling the noise field.
const simplexFrequency = 0.35

// GenConfig holds grid generation parameters for one round.
type GenConfig struct {
	Radius    int         // Ring radius around the origin (0 = single tile)
	Variation float64     // Exponential decay rate of nutrient with distance
	Richness  float64     // Jitter amplitude, 0–1
	Field     JitterField // Jitter source
}

// Build creates the grid for one round. Each tile's jitter is drawn once, here.
func Build(cfg GenConfig, src entropy.Source) (*Grid, error) {
	if cfg.Radius < 0 {
		return nil, fmt.Errorf("build grid radius %d: %w", cfg.Radius, ErrNegativeRadius)
	}

	jitter := uniformJitter(src, cfg.Richness)
	if cfg.Field == FieldSimplex {
		jitter = simplexJitter(opensimplex.NewNormalized(src.Int64()), cfg.Richness)
	}

	coords := RingCoordinates(Origin, cfg.Radius)
	g := newGrid(cfg.Radius, len(coords))
	for _, coord := range coords {
		g.set(NewTile(coord, NutrientAt(coord, cfg.Variation, jitter(coord))))
	}
	g.index()
	return g, nil
}

// NutrientAt is the initial nutrient of a tile: exp(-variation*distance) * (1 + jitter), capped at 1.
func NutrientAt(coord HexCoord, variation, jitter float64) float64 {
	d := float64(Distance(Origin, coord))
	return math.Min(math.Exp(-variation*d)*(1+jitter), 1)
}

func uniformJitter(src entropy.Source, richness float64) func(HexCoord) float64 {
	return func(HexCoord) float64 {
		return entropy.Uniform(src, -richness, richness)
	}
}

func simplexJitter(noise opensimplex.Noise, richness float64) func(HexCoord) float64 {
	return func(c HexCoord) float64 {
		// Axial → cartesian for the skewed (r, q) layout.
		x := float64(c.R) + float64(c.Q)*0.5
		y := float64(c.Q) * math.Sqrt(3.0) / 2.0
		n := noise.Eval2(x*simplexFrequency, y*simplexFrequency)
		return richness * (2*n - 1)
	}
}
