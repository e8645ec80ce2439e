package colony

import (
	"math"
	"slices"

	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/world"
)

// InoculationSigma is the spread of the Gaussian bias toward the center tile.
const InoculationSigma = 0.25

// GaussianWeight is the unnormalized Gaussian density exp(-d²/(2σ²)).
func GaussianWeight(distance, sigma float64) float64 {
	return math.Exp(-(distance * distance) / (2 * sigma * sigma))
}

// InoculationWeights returns the normalized Gaussian weight of every coordinate by its
// distance from the origin. The weights sum to 1.
func InoculationWeights(coords []world.HexCoord) []float64 {
	weights := make([]float64, len(coords))
	for i, c := range coords {
		weights[i] = GaussianWeight(float64(world.Distance(world.Origin, c)), InoculationSigma)
	}
	return Normalize(weights)
}

// Normalize scales weights in place so they sum to 1. An all-zero slice is left as is.
func Normalize(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// SampleWithoutReplacement draws k distinct indices. Each draw picks among the remaining
// indices with probability proportional to weight, then removes the pick. When every
// remaining weight has underflowed to zero the draw falls back to uniform.
func SampleWithoutReplacement(weights []float64, k int, src entropy.Source) []int {
	k = min(k, len(weights))
	remaining := make([]int, len(weights))
	for i := range remaining {
		remaining[i] = i
	}

	picked := make([]int, 0, k)
	for len(picked) < k {
		total := 0.0
		for _, idx := range remaining {
			total += weights[idx]
		}

		pos := 0
		if total > 0 {
			target := src.Float64() * total
			acc := 0.0
			pos = -1
			for i, idx := range remaining {
				if weights[idx] <= 0 {
					continue
				}
				acc += weights[idx]
				pos = i
				if target < acc {
					break
				}
			}
		} else {
			pos = src.IntN(len(remaining))
		}

		picked = append(picked, remaining[pos])
		remaining = slices.Delete(remaining, pos, pos+1)
	}
	return picked
}

// PlaceInoculum chooses n distinct grid coordinates biased toward the center.
// n is clamped to the number of tiles.
func PlaceInoculum(grid *world.Grid, n int, src entropy.Source) []world.HexCoord {
	coords := grid.Coords()
	idx := SampleWithoutReplacement(InoculationWeights(coords), min(n, len(coords)), src)
	chosen := make([]world.HexCoord, len(idx))
	for i, j := range idx {
		chosen[i] = coords[j]
	}
	return chosen
}
