package world

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/talgya/cytogenesis/internal/entropy"
)

func TestBuildTileSet(t *testing.T) {
	g, err := Build(GenConfig{Radius: 3, Variation: 0.35, Richness: 0.1}, entropy.NewSeeded(7))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.Len() != TileCount(3) {
		t.Fatalf("grid has %d tiles, want %d", g.Len(), TileCount(3))
	}
	if len(g.Coords()) != g.Len() {
		t.Fatalf("Coords() has %d entries, want %d", len(g.Coords()), g.Len())
	}
	if !slices.IsSortedFunc(g.Coords(), CompareCoords) {
		t.Fatal("Coords() must be sorted")
	}
	for _, c := range g.Coords() {
		tile := g.Get(c)
		if tile == nil || tile.Coord != c {
			t.Fatalf("tile at %v missing or mislabeled", c)
		}
		if tile.Nutrient < 0 || tile.Nutrient > 1 {
			t.Fatalf("tile %v nutrient %v outside [0, 1]", c, tile.Nutrient)
		}
	}
	if g.Has(HexCoord{R: 4, Q: 0}) {
		t.Fatal("coordinate outside the radius must not be a tile")
	}
}

func TestBuildRejectsNegativeRadius(t *testing.T) {
	_, err := Build(GenConfig{Radius: -1}, entropy.NewSeeded(1))
	if !errors.Is(err, ErrNegativeRadius) {
		t.Fatalf("expected ErrNegativeRadius, got %v", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	for _, field := range []JitterField{FieldUniform, FieldSimplex} {
		cfg := GenConfig{Radius: 4, Variation: 0.2, Richness: 0.3, Field: field}
		a, err := Build(cfg, entropy.NewSeeded(42))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		b, err := Build(cfg, entropy.NewSeeded(42))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		for _, c := range a.Coords() {
			if a.Get(c).Nutrient != b.Get(c).Nutrient {
				t.Fatalf("field %d: tile %v differs between equal seeds", field, c)
			}
		}
	}
}

func TestNutrientProfile(t *testing.T) {
	g, err := Build(GenConfig{Radius: 5, Variation: 0.5, Richness: 0}, entropy.NewSeeded(3))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, c := range g.Coords() {
		want := math.Exp(-0.5 * float64(Distance(Origin, c)))
		if got := g.Get(c).Nutrient; math.Abs(got-want) > 1e-12 {
			t.Fatalf("tile %v nutrient %v, want %v", c, got, want)
		}
	}
	if NutrientAt(Origin, 0, 0.5) != 1 {
		t.Fatal("nutrient must be capped at 1")
	}
}

func TestTotalNutrientAndHighlights(t *testing.T) {
	g, err := Build(GenConfig{Radius: 1, Variation: 0, Richness: 0}, entropy.NewSeeded(1))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := g.TotalNutrient(); got != 7 {
		t.Fatalf("TotalNutrient = %v, want 7", got)
	}

	tile := g.Get(Origin)
	tile.SetHighlight(2)
	g.DecayHighlights()
	if !tile.Highlighted() {
		t.Fatal("highlight should still be active after one decay")
	}
	g.DecayHighlights()
	g.DecayHighlights()
	if tile.Highlighted() || tile.HighlightTicks != 0 {
		t.Fatalf("highlight should have expired, ticks=%d", tile.HighlightTicks)
	}
}

func TestGreenChannel(t *testing.T) {
	if got := NewTile(Origin, 1).GreenChannel(); got != 255 {
		t.Fatalf("full tile green = %d, want 255", got)
	}
	if got := NewTile(Origin, 0).GreenChannel(); got != 0 {
		t.Fatalf("empty tile green = %d, want 0", got)
	}
	if got := NewTile(Origin, 0.5).GreenChannel(); got != 128 {
		t.Fatalf("half tile green = %d, want 128", got)
	}
}
