package engine

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/cytogenesis/internal/colony"
	"github.com/talgya/cytogenesis/internal/kinetics"
	"github.com/talgya/cytogenesis/internal/world"
)

// exchange runs the nutrient exchange for each cell on its own tile, in order.
func exchange(grid *world.Grid, cells []*colony.Cell) error {
	for _, c := range cells {
		tile := grid.Get(c.Coord)
		next := kinetics.Step(c.Kinetics(), stateOf(tile, c))
		if err := checkState(c, next); err != nil {
			return err
		}
		apply(tile, c, next)
	}
	return nil
}

// exchangeParallel computes every update from the tick-start state on a bounded
// worker pool, and writes them back only after all of them are computed.
func exchangeParallel(grid *world.Grid, cells []*colony.Cell, workers int) error {
	tiles := make([]*world.Tile, len(cells))
	next := make([]kinetics.State, len(cells))
	for i, c := range cells {
		tiles[i] = grid.Get(c.Coord)
	}

	chunk := (len(cells) + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < len(cells); lo += chunk {
		hi := min(lo+chunk, len(cells))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				next[i] = kinetics.Step(cells[i].Kinetics(), stateOf(tiles[i], cells[i]))
				if err := checkState(cells[i], next[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range cells {
		apply(tiles[i], c, next[i])
	}
	return nil
}

func stateOf(t *world.Tile, c *colony.Cell) kinetics.State {
	return kinetics.State{Nutrient: t.Nutrient, Energy: c.Energy, Growth: c.Growth}
}

func apply(t *world.Tile, c *colony.Cell, s kinetics.State) {
	t.Nutrient = s.Nutrient
	c.Energy = s.Energy
	c.Growth = s.Growth
}

func checkState(c *colony.Cell, s kinetics.State) error {
	if !finite(s.Nutrient) || !finite(s.Energy) {
		return fmt.Errorf("cell %v: nutrient=%v energy=%v: %w", c.Coord, s.Nutrient, s.Energy, ErrNonFinite)
	}
	return nil
}
