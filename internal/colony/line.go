package colony

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/world"
)

var (
	// ErrOccupied is returned when a cell would land on a tile that already holds one.
	ErrOccupied = errors.New("colony: tile already occupied")
	// ErrNoTile is returned when a cell would land outside the grid.
	ErrNoTile = errors.New("colony: coordinate is not a grid tile")
)

// Line is the set of live cells of one round, at most one per grid tile.
// Daughters born during a tick wait in a birth buffer until Commit.
type Line struct {
	grid    *world.Grid
	cells   map[world.HexCoord]*Cell
	pending map[world.HexCoord]*Cell
}

// NewLine creates an empty cell line on the grid.
func NewLine(grid *world.Grid) *Line {
	return &Line{
		grid:    grid,
		cells:   make(map[world.HexCoord]*Cell),
		pending: make(map[world.HexCoord]*Cell),
	}
}

// Inoculate places min(NumberCells, tiles) cells with Gaussian bias toward the center.
func (l *Line) Inoculate(p config.Params, src entropy.Source) error {
	for _, coord := range PlaceInoculum(l.grid, p.NumberCells, src) {
		if err := l.Insert(NewCell(coord, p, src)); err != nil {
			return fmt.Errorf("inoculate: %w", err)
		}
	}
	return nil
}

// Insert adds a cell, rejecting coordinates outside the grid or already taken.
func (l *Line) Insert(c *Cell) error {
	if !l.grid.Has(c.Coord) {
		return fmt.Errorf("insert cell at %v: %w", c.Coord, ErrNoTile)
	}
	if l.Occupied(c.Coord) {
		return fmt.Errorf("insert cell at %v: %w", c.Coord, ErrOccupied)
	}
	l.cells[c.Coord] = c
	return nil
}

// Occupied reports whether a live or just-born cell sits on the coordinate.
func (l *Line) Occupied(coord world.HexCoord) bool {
	if _, ok := l.cells[coord]; ok {
		return true
	}
	_, ok := l.pending[coord]
	return ok
}

// Get returns the committed cell at coord, or nil.
func (l *Line) Get(coord world.HexCoord) *Cell {
	return l.cells[coord]
}

// Len returns the number of committed cells.
func (l *Line) Len() int {
	return len(l.cells)
}

// Coords returns a sorted snapshot of the committed cell coordinates.
func (l *Line) Coords() []world.HexCoord {
	return sortedCoords(l.cells)
}

// Cells returns the committed cells in coordinate order.
func (l *Line) Cells() []*Cell {
	coords := l.Coords()
	out := make([]*Cell, len(coords))
	for i, c := range coords {
		out[i] = l.cells[c]
	}
	return out
}

func sortedCoords(m map[world.HexCoord]*Cell) []world.HexCoord {
	coords := make([]world.HexCoord, 0, len(m))
	for c := range m {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, world.CompareCoords)
	return coords
}

// FreeNeighbors returns the neighbors of coord that are grid tiles with no cell on them.
func (l *Line) FreeNeighbors(coord world.HexCoord) []world.HexCoord {
	free := make([]world.HexCoord, 0, 6)
	for _, n := range coord.Neighbors() {
		if l.grid.Has(n) && !l.Occupied(n) {
			free = append(free, n)
		}
	}
	return free
}

// Replicate divides the cell at coord into a uniformly chosen free neighbor.
// The mother's energy is halved and the daughter receives the same half.
// With no free neighbor the mother stops growing and ok is false.
func (l *Line) Replicate(coord world.HexCoord, src entropy.Source) (daughter world.HexCoord, ok bool) {
	mother := l.cells[coord]
	if mother == nil {
		return daughter, false
	}

	free := l.FreeNeighbors(coord)
	if len(free) == 0 {
		mother.Growth = false
		return daughter, false
	}

	daughter = entropy.Choice(src, free)
	d := mother.daughter(daughter)
	mother.Energy /= 2
	d.Energy = mother.Energy
	l.pending[daughter] = d

	l.grid.Get(daughter).SetHighlight(world.HighlightDaughter)
	return daughter, true
}

// Commit merges the cells born since the last commit into the line and returns how many.
func (l *Line) Commit() int {
	n := len(l.pending)
	for coord, c := range l.pending {
		l.cells[coord] = c
	}
	clear(l.pending)
	return n
}

// Biomass is the total energy of every cell, including ones not yet committed.
// Summed in coordinate order so equal rounds give bit-identical totals.
func (l *Line) Biomass() float64 {
	total := 0.0
	for _, c := range sortedCoords(l.cells) {
		total += l.cells[c].Energy
	}
	for _, c := range sortedCoords(l.pending) {
		total += l.pending[c].Energy
	}
	return total
}

// Growing counts committed cells still able to grow.
func (l *Line) Growing() int {
	n := 0
	for _, c := range l.cells {
		if c.Growth {
			n++
		}
	}
	return n
}
