package engine

import "github.com/talgya/cytogenesis/internal/telemetry"

// TileView is the render-facing copy of one tile.
type TileView struct {
	R         int     `json:"r"`
	Q         int     `json:"q"`
	Nutrient  float64 `json:"nutrient"`
	Green     uint8   `json:"green"`
	Highlight int     `json:"highlight,omitempty"`
}

// CellView is the render-facing copy of one cell.
type CellView struct {
	R            int     `json:"r"`
	Q            int     `json:"q"`
	Energy       float64 `json:"energy"`
	RadiusFactor float64 `json:"radius_factor"`
	Growth       bool    `json:"growth"`
}

// View is a consistent read-only copy of a round between ticks.
type View struct {
	Level  int              `json:"level"`
	Tick   uint64           `json:"tick"`
	Done   bool             `json:"done"`
	Radius int              `json:"radius"`
	Tiles  []TileView       `json:"tiles"`
	Cells  []CellView       `json:"cells"`
	Series telemetry.Series `json:"-"`
}

// Snapshot copies the round state for observers on other goroutines.
func (r *Round) Snapshot() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := View{
		Level:  r.Params.CurrentLevel,
		Tick:   r.tick,
		Done:   r.done,
		Radius: r.Grid.Radius,
		Tiles:  make([]TileView, 0, r.Grid.Len()),
		Cells:  make([]CellView, 0, r.Line.Len()),
		Series: r.Tracker.Series(),
	}
	for _, coord := range r.Grid.Coords() {
		t := r.Grid.Get(coord)
		v.Tiles = append(v.Tiles, TileView{
			R:         coord.R,
			Q:         coord.Q,
			Nutrient:  t.Nutrient,
			Green:     t.GreenChannel(),
			Highlight: t.HighlightTicks,
		})
	}
	for _, c := range r.Line.Cells() {
		v.Cells = append(v.Cells, CellView{
			R:            c.Coord.R,
			Q:            c.Coord.Q,
			Energy:       c.Energy,
			RadiusFactor: c.RadiusFactor(),
			Growth:       c.Growth,
		})
	}
	return v
}
