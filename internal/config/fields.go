package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownField is returned for a parameter name that cannot be read or set by name.
var ErrUnknownField = errors.New("config: unknown field")

// Value returns the named tunable parameter. Names are the yaml keys.
func (p Params) Value(field string) (float64, error) {
	switch field {
	case "biomass_price":
		return p.BiomassPrice, nil
	case "number_cells":
		return float64(p.NumberCells), nil
	case "hexagon_nutrient_variation":
		return p.HexagonNutrientVariation, nil
	case "hexagon_nutrient_richness":
		return p.HexagonNutrientRichness, nil
	case "cell_division_threshold":
		return p.CellDivisionThreshold, nil
	case "cell_energy_consumption_rate_maximum":
		return p.CellEnergyConsumptionRateMaximum, nil
	case "cell_energy_affinity":
		return p.CellEnergyAffinity, nil
	case "cell_energy_initial":
		return p.CellEnergyInitial, nil
	case "cell_energy_variation":
		return p.CellEnergyVariation, nil
	}
	return 0, fmt.Errorf("%q: %w", field, ErrUnknownField)
}

// With returns a copy with the named parameter set to v. Integer parameters are rounded.
// The version is left alone.
func (p Params) With(field string, v float64) (Params, error) {
	switch field {
	case "biomass_price":
		p.BiomassPrice = v
	case "number_cells":
		p.NumberCells = int(math.Round(v))
	case "hexagon_nutrient_variation":
		p.HexagonNutrientVariation = v
	case "hexagon_nutrient_richness":
		p.HexagonNutrientRichness = v
	case "cell_division_threshold":
		p.CellDivisionThreshold = v
	case "cell_energy_consumption_rate_maximum":
		p.CellEnergyConsumptionRateMaximum = v
	case "cell_energy_affinity":
		p.CellEnergyAffinity = v
	case "cell_energy_initial":
		p.CellEnergyInitial = v
	case "cell_energy_variation":
		p.CellEnergyVariation = v
	default:
		return p, fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return p, nil
}
