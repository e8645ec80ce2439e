package world

import (
	"fmt"
	"slices"
)

// Grid holds the tiles of one colonization round. Its tile set is fixed once built.
type Grid struct {
	Tiles  map[HexCoord]*Tile `json:"-"`
	Radius int                `json:"radius"`

	coords []HexCoord // sorted, stable iteration order
}

func newGrid(radius int, capacity int) *Grid {
	return &Grid{
		Tiles:  make(map[HexCoord]*Tile, capacity),
		Radius: radius,
	}
}

// Get returns the tile at the given coordinate, or nil if it is not part of the grid.
func (g *Grid) Get(coord HexCoord) *Tile {
	return g.Tiles[coord]
}

// Has reports whether the coordinate belongs to the grid.
func (g *Grid) Has(coord HexCoord) bool {
	_, ok := g.Tiles[coord]
	return ok
}

// Len returns the number of tiles.
func (g *Grid) Len() int {
	return len(g.Tiles)
}

// Coords returns all tile coordinates in a deterministic (r, q) order.
// The returned slice must not be modified.
func (g *Grid) Coords() []HexCoord {
	return g.coords
}

// TotalNutrient sums the remaining nutrient over every tile.
func (g *Grid) TotalNutrient() float64 {
	total := 0.0
	for _, c := range g.coords {
		total += g.Tiles[c].Nutrient
	}
	return total
}

// DecayHighlights advances every tile's highlight countdown by one frame.
func (g *Grid) DecayHighlights() {
	for _, t := range g.Tiles {
		t.DecayHighlight()
	}
}

func (g *Grid) set(t *Tile) {
	g.Tiles[t.Coord] = t
}

func (g *Grid) index() {
	g.coords = make([]HexCoord, 0, len(g.Tiles))
	for c := range g.Tiles {
		g.coords = append(g.coords, c)
	}
	slices.SortFunc(g.coords, CompareCoords)
}

// CompareCoords orders coordinates by r, then q.
func CompareCoords(a, b HexCoord) int {
	if a.R != b.R {
		return a.R - b.R
	}
	return a.Q - b.Q
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(radius=%d, tiles=%d)", g.Radius, g.Len())
}
