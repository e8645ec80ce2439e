// Package kinetics implements the nutrient/energy exchange between a tile and the cell on it.
// Uptake follows Monod kinetics and is mass conserving: whatever leaves the tile enters the cell.
package kinetics

import "golang.org/x/exp/constraints"

// ExhaustionEpsilon is the nutrient level below which a tile counts as depleted.
const ExhaustionEpsilon = 0.005

// Params are the per-cell kinetic constants.
type Params struct {
	RateMax           float64 // Maximum energy consumption rate (Vmax)
	Affinity          float64 // Half-saturation constant (K)
	DivisionThreshold float64 // Energy ceiling
}

// State is the mutable pair of tile nutrient and cell energy, plus the cell's growth flag.
type State struct {
	Nutrient float64
	Energy   float64
	Growth   bool
}

// Uptake returns the Monod uptake for the given nutrient level, before any clamping.
func Uptake(p Params, nutrient float64) float64 {
	return p.RateMax * nutrient / (nutrient + p.Affinity)
}

// Step advances one (tile, cell) pair by one tick. It is deterministic, conserves
// nutrient+energy exactly, and never lets energy exceed the division threshold.
// A non-growing cell or a dry tile is a no-op. Once the tile drops below
// ExhaustionEpsilon the cell stops growing for good and the residue moves into it.
// If the cell is already at its threshold the residue stays put, so the tile of a
// stopped cell reports a nutrient in [0, ExhaustionEpsilon), not always exactly 0.
func Step(p Params, s State) State {
	if !s.Growth || s.Nutrient <= 0 {
		return s
	}

	uptake := Uptake(p, s.Nutrient)
	uptake = min(uptake, s.Nutrient)
	uptake = min(uptake, p.DivisionThreshold-s.Energy)
	// A cell already over its threshold (threshold lowered mid-round) takes nothing.
	uptake = clamp(uptake, 0, s.Nutrient)

	s.Nutrient -= uptake
	s.Energy += uptake

	if abs(s.Nutrient) < ExhaustionEpsilon {
		s.Growth = false
		// The residue moves into the cell so the transfer stays exact; if the cell
		// has no headroom left for it, it stays on the tile.
		if residue := s.Nutrient; residue <= p.DivisionThreshold-s.Energy {
			s.Energy += residue
			s.Nutrient = 0
		}
	}
	return s
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
