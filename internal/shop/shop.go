package shop

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/economy"
	"github.com/talgya/cytogenesis/internal/entropy"
)

// ErrInsufficientCredits is returned when an offer costs more than the player holds.
var ErrInsufficientCredits = errors.New("shop: insufficient credits")

const (
	// Rarities are 0 (common) through Rarities-1.
	Rarities = 5
	// DefaultOffers is how many items one shop visit shows.
	DefaultOffers = 3
	// priceFactor multiplies an item's default price at rarity 0.
	priceFactor = 3
)

// Offer is an item with a drawn rarity and the resulting strength and price.
type Offer struct {
	Item              Item    `json:"item"`
	Rarity            int     `json:"rarity"`
	ModificationValue float64 `json:"modification_value"`
	Price             float64 `json:"price"`
}

// RarityWeights returns the unnormalized draw weight of each rarity at a level:
// (1+level)/(1+rarity³).
func RarityWeights(level int) []float64 {
	weights := make([]float64, Rarities)
	for r := range weights {
		weights[r] = float64(1+level) / float64(1+r*r*r)
	}
	return weights
}

// NewOffer prices an item at a rarity.
func NewOffer(it Item, rarity int) Offer {
	return Offer{
		Item:              it,
		Rarity:            rarity,
		ModificationValue: it.DefaultModificationValue * float64(rarity+1),
		Price:             math.RoundToEven(it.DefaultPrice * priceFactor * float64(rarity+1)),
	}
}

// Draw picks n offers for a level. Items are drawn uniformly with replacement,
// rarities by RarityWeights.
func Draw(catalogue []Item, n, level int, src entropy.Source) []Offer {
	if len(catalogue) == 0 || n <= 0 {
		return nil
	}
	weights := RarityWeights(level)
	offers := make([]Offer, n)
	for i := range offers {
		it := entropy.Choice(src, catalogue)
		offers[i] = NewOffer(it, entropy.WeightedIndex(src, weights))
	}
	return offers
}

// Apply returns the parameters for the next round with the offer's field moved by its
// modification value and clamped to the item's bounds. The result must still validate.
func Apply(p config.Params, o Offer) (config.Params, error) {
	current, err := p.Value(o.Item.Field)
	if err != nil {
		return p, err
	}

	next := current
	switch o.Item.Modification {
	case Increase:
		next = math.Min(current+o.ModificationValue, o.Item.MaximumValue)
	case Decrease:
		next = math.Max(current-o.ModificationValue, o.Item.MinimumValue)
	}

	updated, err := p.Next().With(o.Item.Field, next)
	if err != nil {
		return p, err
	}
	if err := updated.Validate(); err != nil {
		return p, fmt.Errorf("apply %q: %w", o.Item.Name, err)
	}
	return updated, nil
}

// Buy charges the offer against credits and applies it. On any error nothing changes.
func Buy(p config.Params, credits float64, o Offer) (config.Params, float64, error) {
	if o.Price > credits {
		return p, credits, fmt.Errorf("%q costs %.2f, have %.2f: %w", o.Item.Name, o.Price, credits, ErrInsufficientCredits)
	}
	updated, err := Apply(p, o)
	if err != nil {
		return p, credits, err
	}
	return updated, economy.RoundCents(credits - o.Price), nil
}
