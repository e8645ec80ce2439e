// Round runs one colonization round to convergence: the grid is built, the inoculum
// placed, and every tick each growing cell divides when ripe and then feeds on its tile.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/talgya/cytogenesis/internal/colony"
	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/telemetry"
	"github.com/talgya/cytogenesis/internal/world"
)

var (
	// ErrNonFinite marks a tick that produced NaN or Inf; the round is unusable.
	ErrNonFinite = errors.New("engine: non-finite simulation value")
	// ErrTickLimit is returned by a bounded Run that has not converged.
	ErrTickLimit = errors.New("engine: tick limit reached before convergence")
	// ErrRoundDone is returned when stepping a finished round.
	ErrRoundDone = errors.New("engine: round already done")
)

// DefaultFrameInterval is the simulated seconds per tick used for telemetry (50 frames per second).
const DefaultFrameInterval = 1.0 / FramesPerSecond

// Option customizes a round.
type Option func(*Round)

// WithWorkers computes the nutrient exchange on up to n goroutines. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(r *Round) { r.workers = n }
}

// WithFrameInterval sets the simulated seconds per tick for telemetry timestamps.
func WithFrameInterval(seconds float64) Option {
	return func(r *Round) { r.frameInterval = seconds }
}

// Round is one colonization round. Step is not safe for concurrent use with itself;
// Snapshot may be called from other goroutines.
type Round struct {
	Params  config.Params
	Grid    *world.Grid
	Line    *colony.Line
	Tracker *telemetry.Tracker

	rng           entropy.Source
	workers       int
	frameInterval float64

	mu   sync.RWMutex
	tick uint64
	done bool
}

// Result is what a finished round reports to the economic layer.
type Result struct {
	Level         int     `json:"level"`
	ConfigVersion int     `json:"config_version"`
	Ticks         uint64  `json:"ticks"`
	Biomass       float64 `json:"biomass"`
	Substrate     float64 `json:"substrate"`
	Cells         int     `json:"cells"`
	Tiles         int     `json:"tiles"`
}

// NewRound validates the parameters, builds the grid and places the inoculum.
func NewRound(p config.Params, src entropy.Source, opts ...Option) (*Round, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("round setup: %w", err)
	}

	grid, err := world.Build(world.GenConfig{
		Radius:    p.RingRadius(),
		Variation: p.HexagonNutrientVariation,
		Richness:  p.HexagonNutrientRichness,
		Field:     jitterField(p),
	}, src)
	if err != nil {
		return nil, fmt.Errorf("round setup: %w", err)
	}

	line := colony.NewLine(grid)
	if err := line.Inoculate(p, src); err != nil {
		return nil, fmt.Errorf("round setup: %w", err)
	}

	r := &Round{
		Params:        p,
		Grid:          grid,
		Line:          line,
		Tracker:       telemetry.NewTracker(),
		rng:           src,
		frameInterval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Tracker.Initialize(line.Biomass(), grid.TotalNutrient())
	return r, nil
}

func jitterField(p config.Params) world.JitterField {
	if p.SimplexJitter {
		return world.FieldSimplex
	}
	return world.FieldUniform
}

// Step advances the round by one tick and reports whether any cell was still growing.
// The round is done after the first tick in which none was.
func (r *Round) Step() (running bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return false, ErrRoundDone
	}
	r.tick++

	// Every cell alive at tick start is visited exactly once; daughters wait for Commit.
	var active []*colony.Cell
	for _, coord := range r.Line.Coords() {
		c := r.Line.Get(coord)
		if !c.Growth {
			continue
		}
		running = true
		if c.ReadyToDivide() {
			r.Line.Replicate(coord, r.rng)
		}
		active = append(active, c)
	}

	if r.workers > 1 {
		err = exchangeParallel(r.Grid, active, r.workers)
	} else {
		err = exchange(r.Grid, active)
	}
	if err != nil {
		r.done = true
		return false, fmt.Errorf("tick %d: %w", r.tick, err)
	}

	r.Line.Commit()
	r.Grid.DecayHighlights()

	biomass, substrate := r.Line.Biomass(), r.Grid.TotalNutrient()
	if !finite(biomass) || !finite(substrate) {
		r.done = true
		return false, fmt.Errorf("tick %d: biomass=%v substrate=%v: %w", r.tick, biomass, substrate, ErrNonFinite)
	}
	r.Tracker.Record(float64(r.tick)*r.frameInterval, biomass, substrate)

	if !running {
		r.done = true
	}
	return running, nil
}

// Run steps the round until it is done. maxTicks <= 0 means no bound.
func (r *Round) Run(maxTicks uint64) (Result, error) {
	for {
		running, err := r.Step()
		if err != nil {
			return r.Result(), err
		}
		if !running {
			return r.Result(), nil
		}
		if maxTicks > 0 && r.Tick() >= maxTicks {
			return r.Result(), fmt.Errorf("after %d ticks: %w", maxTicks, ErrTickLimit)
		}
	}
}

// Tick returns the number of ticks run so far.
func (r *Round) Tick() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tick
}

// Done reports whether the round has converged.
func (r *Round) Done() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// Result summarizes the round's current state.
func (r *Round) Result() Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Result{
		Level:         r.Params.CurrentLevel,
		ConfigVersion: r.Params.Version,
		Ticks:         r.tick,
		Biomass:       r.Line.Biomass(),
		Substrate:     r.Grid.TotalNutrient(),
		Cells:         r.Line.Len(),
		Tiles:         r.Grid.Len(),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
