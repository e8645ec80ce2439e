package world

import "math"

// Highlight durations, in frames, applied when a cell is born on a tile.
const (
	HighlightDefault  = 15
	HighlightDaughter = 50
)

// Tile is one hexagon of the reactor: its coordinate and remaining nutrient.
type Tile struct {
	Coord HexCoord `json:"coord"`

	// Relative substrate concentration: 1.0 (full) to 0.0 (depleted).
	// Only ever decreases during a round.
	Nutrient float64 `json:"nutrient"`

	// Cosmetic countdown set when a daughter cell lands here.
	HighlightTicks int `json:"highlight_ticks"`
}

// NewTile creates a tile with the given nutrient level.
func NewTile(coord HexCoord, nutrient float64) *Tile {
	return &Tile{Coord: coord, Nutrient: nutrient}
}

// SetHighlight starts the highlight countdown.
func (t *Tile) SetHighlight(ticks int) {
	t.HighlightTicks = ticks
}

// DecayHighlight counts the highlight down by one frame.
func (t *Tile) DecayHighlight() {
	if t.HighlightTicks > 0 {
		t.HighlightTicks--
	}
}

// Highlighted reports whether the tile is still flashing.
func (t *Tile) Highlighted() bool {
	return t.HighlightTicks > 0
}

// GreenChannel is the derived body color component for renderers: nutrient scaled to 0–255.
// Derived on demand, never stored.
func (t *Tile) GreenChannel() uint8 {
	v := math.Round(t.Nutrient * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
