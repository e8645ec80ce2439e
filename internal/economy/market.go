// Package economy converts harvested biomass into credits.
// A sale runs over several frames so the presentation layer can animate it.
package economy

import "math"

const (
	// Each frame sells a fixed base amount plus a share of the starting harvest.
	saleBase     = 0.05
	saleFraction = 0.5 * 0.02
)

// Value is the credit value of an amount of biomass.
func Value(biomass, price float64) float64 {
	return biomass * price
}

// Sale is an in-progress harvest sale.
type Sale struct {
	price     float64
	perFrame  float64
	remaining float64
	credits   float64
	frames    int
}

// NewSale starts selling a harvest at the given price per unit of biomass.
func NewSale(biomass, price float64) *Sale {
	biomass = math.Max(biomass, 0)
	return &Sale{
		price:     price,
		perFrame:  saleBase + saleFraction*biomass,
		remaining: biomass,
	}
}

// Step sells one frame's worth of biomass and reports whether the sale is complete.
func (s *Sale) Step() (sold float64, done bool) {
	if s.remaining <= 0 {
		return 0, true
	}
	sold = math.Min(s.perFrame, s.remaining)
	s.remaining -= sold
	s.credits += Value(sold, s.price)
	s.frames++
	if s.remaining <= 0 {
		s.remaining = 0
		return sold, true
	}
	return sold, false
}

// Done reports whether all biomass has been sold.
func (s *Sale) Done() bool { return s.remaining <= 0 }

// Remaining is the unsold biomass.
func (s *Sale) Remaining() float64 { return s.remaining }

// Frames is the number of frames the sale has taken so far.
func (s *Sale) Frames() int { return s.frames }

// Credits is the amount earned so far, rounded to cents as it is booked.
func (s *Sale) Credits() float64 {
	return RoundCents(s.credits)
}

// SellAll runs a sale to completion and returns the booked credits.
func SellAll(biomass, price float64) float64 {
	s := NewSale(biomass, price)
	for !s.Done() {
		s.Step()
	}
	return s.Credits()
}

// RoundCents rounds to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
