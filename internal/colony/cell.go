// Package colony models the cells growing on the reactor grid: one cell line per round,
// its Gaussian-weighted inoculation, and replication into free neighboring tiles.
package colony

import (
	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/kinetics"
	"github.com/talgya/cytogenesis/internal/world"
)

// Cell is one organism on one tile.
type Cell struct {
	Coord  world.HexCoord `json:"coord"`
	Energy float64        `json:"energy"`

	// Growth is true while the cell can still absorb nutrient and divide.
	// Once false it stays false for the rest of the round.
	Growth bool `json:"growth"`

	// Kinetic constants, copied per cell so scaling one cell never touches its siblings.
	RateMax           float64 `json:"rate_max"`
	Affinity          float64 `json:"affinity"`
	DivisionThreshold float64 `json:"division_threshold"`

	// Threshold the round started with; renderers size cells against it.
	BaseThreshold float64 `json:"-"`
}

// NewCell creates an inoculum cell. Its energy is initial*(1 + variation*uniform(-1, 1)),
// capped at the division threshold, and its consumption rate is scaled for the level.
func NewCell(coord world.HexCoord, p config.Params, src entropy.Source) *Cell {
	c := &Cell{
		Coord:             coord,
		Growth:            true,
		RateMax:           p.ScaledConsumptionRate(),
		Affinity:          p.CellEnergyAffinity,
		DivisionThreshold: p.CellDivisionThreshold,
		BaseThreshold:     p.CellDivisionThreshold,
	}
	energy := p.CellEnergyInitial * (1 + p.CellEnergyVariation*entropy.Uniform(src, -1, 1))
	c.Energy = min(energy, c.DivisionThreshold)
	return c
}

// daughter returns a growing copy of c placed at coord with no energy yet.
func (c *Cell) daughter(coord world.HexCoord) *Cell {
	d := *c
	d.Coord = coord
	d.Energy = 0
	d.Growth = true
	return &d
}

// Kinetics returns the cell's Monod constants.
func (c *Cell) Kinetics() kinetics.Params {
	return kinetics.Params{
		RateMax:           c.RateMax,
		Affinity:          c.Affinity,
		DivisionThreshold: c.DivisionThreshold,
	}
}

// ReadyToDivide reports whether the cell has reached its division threshold.
func (c *Cell) ReadyToDivide() bool {
	return c.Energy >= c.DivisionThreshold
}

// RadiusFactor is the energy relative to the round's starting threshold, for drawing.
func (c *Cell) RadiusFactor() float64 {
	if c.BaseThreshold <= 0 {
		return 0
	}
	return c.Energy / c.BaseThreshold
}
