// Package telemetry records the process parameters of a colonization round:
// total biomass, total substrate, and the specific growth rate estimated from them.
// It only observes the simulation and never feeds back into it.
package telemetry

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	// GrowthWindow is the maximum number of trailing samples the growth rate spans.
	GrowthWindow = 5
	// MaxGrowthRate bounds the estimator in both directions.
	MaxGrowthRate = 5.0
)

// Sample is one telemetry point.
type Sample struct {
	Time       float64 `json:"t"`
	Biomass    float64 `json:"biomass"`
	GrowthRate float64 `json:"growth_rate"`
	Substrate  float64 `json:"substrate"`
}

// Series is the tracker history as parallel slices, the shape plotters consume.
type Series struct {
	Timestamps     []float64 `json:"timestamps"`
	TotalBiomass   []float64 `json:"total_biomass"`
	GrowthRate     []float64 `json:"growth_rate"`
	TotalSubstrate []float64 `json:"total_substrate"`
}

// Tracker is an append-only sample history.
type Tracker struct {
	samples []Sample
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset drops all samples.
func (t *Tracker) Reset() {
	t.samples = t.samples[:0]
}

// Initialize resets the tracker and records the round's starting state at time 0.
func (t *Tracker) Initialize(biomass, substrate float64) {
	t.Reset()
	t.samples = append(t.samples, Sample{Time: 0, Biomass: biomass, Substrate: substrate})
}

// Record appends a sample and returns it with its growth rate filled in.
func (t *Tracker) Record(at, biomass, substrate float64) Sample {
	s := Sample{Time: at, Biomass: biomass, Substrate: substrate}
	t.samples = append(t.samples, s)
	s.GrowthRate = GrowthRate(t.samples)
	t.samples[len(t.samples)-1] = s
	return s
}

// GrowthRate estimates the specific growth rate at the last sample as
// ln(b_end/b_start)/(t_end-t_start) over the trailing window, clamped to ±MaxGrowthRate.
// It is 0 when there is no usable interval or either biomass is not positive.
func GrowthRate(samples []Sample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	start := samples[n-min(GrowthWindow, n)]
	end := samples[n-1]

	dt := end.Time - start.Time
	if dt <= 0 || start.Biomass <= 0 || end.Biomass <= 0 {
		return 0
	}
	rate := math.Log(end.Biomass/start.Biomass) / dt
	if math.IsNaN(rate) {
		return 0
	}
	return clamp(rate, -MaxGrowthRate, MaxGrowthRate)
}

// Len returns the number of samples.
func (t *Tracker) Len() int {
	return len(t.samples)
}

// Latest returns the most recent sample.
func (t *Tracker) Latest() (Sample, bool) {
	if len(t.samples) == 0 {
		return Sample{}, false
	}
	return t.samples[len(t.samples)-1], true
}

// Samples returns a copy of the history.
func (t *Tracker) Samples() []Sample {
	return append([]Sample(nil), t.samples...)
}

// Series returns the history as parallel slices.
func (t *Tracker) Series() Series {
	s := Series{
		Timestamps:     make([]float64, len(t.samples)),
		TotalBiomass:   make([]float64, len(t.samples)),
		GrowthRate:     make([]float64, len(t.samples)),
		TotalSubstrate: make([]float64, len(t.samples)),
	}
	for i, smp := range t.samples {
		s.Timestamps[i] = smp.Time
		s.TotalBiomass[i] = smp.Biomass
		s.GrowthRate[i] = smp.GrowthRate
		s.TotalSubstrate[i] = smp.Substrate
	}
	return s
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
