// Package config holds the versioned parameter set a colonization round is built from.
// A Params value is never mutated across rounds; Next returns the following version.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// FieldError describes one rejected parameter.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// Params is the game-state record read by the core at round setup.
type Params struct {
	Version int `yaml:"-" json:"version"`

	NumberLevels int     `yaml:"number_levels" json:"number_levels"`
	CurrentLevel int     `yaml:"current_level" json:"current_level"`
	BiomassPrice float64 `yaml:"biomass_price" json:"biomass_price"`

	// Reactor.
	HexagonNutrientVariation float64 `yaml:"hexagon_nutrient_variation" json:"hexagon_nutrient_variation"`
	HexagonNutrientRichness  float64 `yaml:"hexagon_nutrient_richness" json:"hexagon_nutrient_richness"`
	SimplexJitter            bool    `yaml:"simplex_jitter" json:"simplex_jitter"`

	// Cells.
	NumberCells                      int     `yaml:"number_cells" json:"number_cells"`
	CellDivisionThreshold            float64 `yaml:"cell_division_threshold" json:"cell_division_threshold"`
	CellEnergyConsumptionRateMaximum float64 `yaml:"cell_energy_consumption_rate_maximum" json:"cell_energy_consumption_rate_maximum"`
	CellEnergyAffinity               float64 `yaml:"cell_energy_affinity" json:"cell_energy_affinity"`
	CellEnergyInitial                float64 `yaml:"cell_energy_initial" json:"cell_energy_initial"`
	CellEnergyVariation              float64 `yaml:"cell_energy_variation" json:"cell_energy_variation"`
}

// Default returns the starting parameters of a new game.
func Default() Params {
	return Params{
		Version:                          1,
		NumberLevels:                     5,
		CurrentLevel:                     0,
		BiomassPrice:                     100,
		HexagonNutrientVariation:         0.35,
		HexagonNutrientRichness:          0.1,
		NumberCells:                      1,
		CellDivisionThreshold:            1,
		CellEnergyConsumptionRateMaximum: 0.025,
		CellEnergyAffinity:               0.3,
		CellEnergyInitial:                0.5,
		CellEnergyVariation:              0.2,
	}
}

// Load reads a YAML overlay on top of Default and validates the result.
func Load(path string) (Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects parameter sets the round could not run safely.
// All failures are reported together.
func (p Params) Validate() error {
	var errs []error
	reject := func(field string, value any, reason string) {
		errs = append(errs, &FieldError{Field: field, Value: value, Reason: reason})
	}
	finite := func(field string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			reject(field, v, "must be finite")
			return false
		}
		return true
	}

	if p.NumberCells < 1 {
		reject("number_cells", p.NumberCells, "must be >= 1")
	}
	if p.CurrentLevel < 0 {
		reject("current_level", p.CurrentLevel, "must be >= 0")
	}
	if p.NumberLevels < 1 {
		reject("number_levels", p.NumberLevels, "must be >= 1")
	}
	if finite("cell_division_threshold", p.CellDivisionThreshold) && p.CellDivisionThreshold <= 0 {
		reject("cell_division_threshold", p.CellDivisionThreshold, "must be > 0")
	}
	if finite("cell_energy_consumption_rate_maximum", p.CellEnergyConsumptionRateMaximum) && p.CellEnergyConsumptionRateMaximum <= 0 {
		reject("cell_energy_consumption_rate_maximum", p.CellEnergyConsumptionRateMaximum, "must be > 0")
	}
	if finite("cell_energy_affinity", p.CellEnergyAffinity) && p.CellEnergyAffinity <= 0 {
		reject("cell_energy_affinity", p.CellEnergyAffinity, "must be > 0")
	}
	if finite("cell_energy_initial", p.CellEnergyInitial) &&
		(p.CellEnergyInitial <= 0 || p.CellEnergyInitial > p.CellDivisionThreshold) {
		reject("cell_energy_initial", p.CellEnergyInitial, "must be in (0, cell_division_threshold]")
	}
	if finite("cell_energy_variation", p.CellEnergyVariation) && p.CellEnergyVariation < 0 {
		reject("cell_energy_variation", p.CellEnergyVariation, "must be >= 0")
	}
	if finite("hexagon_nutrient_variation", p.HexagonNutrientVariation) && p.HexagonNutrientVariation < 0 {
		reject("hexagon_nutrient_variation", p.HexagonNutrientVariation, "must be >= 0")
	}
	if finite("hexagon_nutrient_richness", p.HexagonNutrientRichness) &&
		(p.HexagonNutrientRichness < 0 || p.HexagonNutrientRichness > 1) {
		reject("hexagon_nutrient_richness", p.HexagonNutrientRichness, "must be in [0, 1]")
	}
	if finite("biomass_price", p.BiomassPrice) && p.BiomassPrice < 0 {
		reject("biomass_price", p.BiomassPrice, "must be >= 0")
	}

	return errors.Join(errs...)
}

// RingRadius is the number of hex rings around the origin for the current level.
func (p Params) RingRadius() int {
	return p.CurrentLevel
}

// LevelScale is the consumption-rate factor for the current level: 0.5 at level 0, tending to 1.
func (p Params) LevelScale() float64 {
	l := float64(p.CurrentLevel)
	return 0.5 + 0.5*(l/(1+l))
}

// ScaledConsumptionRate is the per-cell Vmax for the current level.
func (p Params) ScaledConsumptionRate() float64 {
	return p.CellEnergyConsumptionRateMaximum * p.LevelScale()
}

// Next returns a copy for the following round with the version bumped.
func (p Params) Next() Params {
	p.Version++
	return p
}

// NextLevel returns the parameters for the next level.
func (p Params) NextLevel() Params {
	n := p.Next()
	n.CurrentLevel++
	return n
}

// Finished reports whether every level of the game has been played.
func (p Params) Finished() bool {
	return p.CurrentLevel >= p.NumberLevels
}
