package telemetry

import (
	"errors"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewSamples is returned when a chart is requested for fewer than two samples.
var ErrTooFewSamples = errors.New("telemetry: need at least two samples to chart")

// RenderChart writes a PNG line chart of biomass and substrate, with the growth rate
// on the secondary axis.
func RenderChart(w io.Writer, s Series) error {
	if len(s.Timestamps) < 2 {
		return ErrTooFewSamples
	}

	graph := chart.Chart{
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name:  "Time [s]",
			Range: paddedRange(s.Timestamps, 0),
		},
		YAxis: chart.YAxis{
			Name:  "Biomass / Substrate",
			Range: paddedRange(append(append([]float64(nil), s.TotalBiomass...), s.TotalSubstrate...), 0.05),
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Growth rate [1/s]",
			Range: paddedRange(s.GrowthRate, 0.05),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Biomass",
				XValues: s.Timestamps,
				YValues: s.TotalBiomass,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					StrokeWidth: 2,
				},
			},
			chart.ContinuousSeries{
				Name:    "Substrate",
				XValues: s.Timestamps,
				YValues: s.TotalSubstrate,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
			chart.ContinuousSeries{
				Name:    "Growth rate",
				YAxis:   chart.YAxisSecondary,
				XValues: s.Timestamps,
				YValues: s.GrowthRate,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255},
					StrokeWidth: 1,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// paddedRange returns a fixed axis range over values, widened so it is never empty.
func paddedRange(values []float64, pad float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	span := hi - lo
	if span == 0 {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo - pad*span, Max: hi + pad*span}
}
