package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	p := Default()
	p.NumberCells = 0
	p.CellDivisionThreshold = -1
	p.CellEnergyAffinity = math.NaN()

	err := p.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	fields := map[string]bool{}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("expected joined errors, got %T", err)
	}
	for _, e := range joined.Unwrap() {
		var fe *FieldError
		if errors.As(e, &fe) {
			fields[fe.Field] = true
		}
	}
	for _, want := range []string{"number_cells", "cell_division_threshold", "cell_energy_affinity"} {
		if !fields[want] {
			t.Fatalf("missing error for %s in %v", want, err)
		}
	}
}

func TestValidateRanges(t *testing.T) {
	cases := map[string]func(*Params){
		"richness above one":       func(p *Params) { p.HexagonNutrientRichness = 1.5 },
		"negative variation":       func(p *Params) { p.HexagonNutrientVariation = -0.1 },
		"initial above threshold":  func(p *Params) { p.CellEnergyInitial = 2 },
		"zero rate":                func(p *Params) { p.CellEnergyConsumptionRateMaximum = 0 },
		"infinite price":           func(p *Params) { p.BiomassPrice = math.Inf(1) },
		"negative level":           func(p *Params) { p.CurrentLevel = -1 },
		"no levels":                func(p *Params) { p.NumberLevels = 0 },
		"negative energy variance": func(p *Params) { p.CellEnergyVariation = -1 },
	}
	for name, mutate := range cases {
		p := Default()
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestLevelScaling(t *testing.T) {
	p := Default()
	if p.LevelScale() != 0.5 {
		t.Fatalf("level 0 scale %v, want 0.5", p.LevelScale())
	}
	p.CurrentLevel = 1
	if p.LevelScale() != 0.75 {
		t.Fatalf("level 1 scale %v, want 0.75", p.LevelScale())
	}
	if p.RingRadius() != 1 {
		t.Fatalf("ring radius %d, want 1", p.RingRadius())
	}
	if got, want := p.ScaledConsumptionRate(), p.CellEnergyConsumptionRateMaximum*0.75; got != want {
		t.Fatalf("scaled rate %v, want %v", got, want)
	}
}

func TestNextLevel(t *testing.T) {
	p := Default()
	p.NumberLevels = 2
	n := p.NextLevel()
	if n.Version != p.Version+1 || n.CurrentLevel != 1 {
		t.Fatalf("NextLevel = version %d level %d", n.Version, n.CurrentLevel)
	}
	if p.CurrentLevel != 0 {
		t.Fatal("NextLevel must not modify the receiver")
	}
	if n.Finished() {
		t.Fatal("level 1 of 2 is not finished")
	}
	if !n.NextLevel().Finished() {
		t.Fatal("level 2 of 2 is finished")
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	data := []byte("number_levels: 3\nnumber_cells: 4\nsimplex_jitter: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.NumberLevels != 3 || p.NumberCells != 4 || !p.SimplexJitter {
		t.Fatalf("overlay not applied: %+v", p)
	}
	if p.CellDivisionThreshold != Default().CellDivisionThreshold {
		t.Fatal("unset fields must keep their defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("number_cells: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFieldAccess(t *testing.T) {
	p := Default()
	v, err := p.Value("cell_energy_affinity")
	if err != nil || v != p.CellEnergyAffinity {
		t.Fatalf("Value = (%v, %v)", v, err)
	}

	n, err := p.With("number_cells", 2.6)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if n.NumberCells != 3 || n.Version != p.Version {
		t.Fatalf("With number_cells: cells %d version %d", n.NumberCells, n.Version)
	}
	if p.NumberCells != 1 {
		t.Fatal("With must not modify the receiver")
	}

	if _, err := p.Value("current_level"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := p.With("credits", 1); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}
