// Package shop sells parameter upgrades between rounds. Each visit draws a few offers
// from an item catalogue; rarer offers change more and cost more, and rarity odds
// improve with the level.
package shop

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/cytogenesis/internal/config"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// ErrInvalidItem is wrapped by every catalogue validation failure.
var ErrInvalidItem = errors.New("shop: invalid item")

// Modification is the direction an item moves its parameter.
type Modification string

const (
	Increase Modification = "increase"
	Decrease Modification = "decrease"
)

// Item is one catalogue entry, before rarity is applied.
type Item struct {
	Name                     string       `yaml:"name" json:"name"`
	Field                    string       `yaml:"field" json:"field"`
	Modification             Modification `yaml:"modification" json:"modification"`
	DefaultModificationValue float64      `yaml:"default_modification_value" json:"default_modification_value"`
	DefaultPrice             float64      `yaml:"default_price" json:"default_price"`
	MinimumValue             float64      `yaml:"minimum_value" json:"minimum_value"`
	MaximumValue             float64      `yaml:"maximum_value" json:"maximum_value"`
}

// Validate checks the item against the tunable parameter set.
func (it Item) Validate() error {
	fail := func(reason string) error {
		return fmt.Errorf("item %q: %s: %w", it.Name, reason, ErrInvalidItem)
	}
	if _, err := config.Default().Value(it.Field); err != nil {
		return fail(err.Error())
	}
	if it.Modification != Increase && it.Modification != Decrease {
		return fail(fmt.Sprintf("modification %q", it.Modification))
	}
	if !(it.DefaultModificationValue > 0) || math.IsInf(it.DefaultModificationValue, 0) {
		return fail("default_modification_value must be > 0")
	}
	if !(it.DefaultPrice >= 0) || math.IsInf(it.DefaultPrice, 0) {
		return fail("default_price must be >= 0")
	}
	if !(it.MinimumValue <= it.MaximumValue) {
		return fail("minimum_value above maximum_value")
	}
	return nil
}

// DefaultCatalogue returns the built-in item list.
func DefaultCatalogue() []Item {
	items, err := parseCatalogue(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("built-in shop catalogue: %v", err))
	}
	return items
}

// LoadCatalogue reads and validates a YAML item list.
func LoadCatalogue(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	items, err := parseCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return items, nil
}

func parseCatalogue(data []byte) ([]Item, error) {
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty catalogue: %w", ErrInvalidItem)
	}
	var errs []error
	for _, it := range items {
		if err := it.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return items, nil
}
