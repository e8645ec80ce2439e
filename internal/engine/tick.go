// Package engine runs colonization rounds and the frame loop that drives them.
package engine

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// FramesPerSecond is the nominal frame rate of the host loop; one tick per frame.
const FramesPerSecond = 50

// Engine drives frame callbacks forward at a throttled rate.
type Engine struct {
	Frame    uint64        // Current frame counter (monotonic, never resets)
	Interval time.Duration // Base frame interval; 0 runs unthrottled

	// OnFrame runs every frame; returning false stops the loop.
	OnFrame func(frame uint64) bool
	// OnSecond runs every FramesPerSecond frames.
	OnSecond func(frame uint64)

	speed   atomic.Uint64 // float64 bits
	running atomic.Bool
}

// NewEngine creates a frame driver at real-time speed.
func NewEngine() *Engine {
	e := &Engine{
		Interval: time.Second / FramesPerSecond,
	}
	e.SetSpeed(1)
	return e
}

// Speed returns the speed multiplier: 1.0 = real time, 0 = paused.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the speed multiplier. Negative values are treated as paused.
func (e *Engine) SetSpeed(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	e.speed.Store(math.Float64bits(v))
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the frame loop. Blocks until Stop is called or OnFrame returns false.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("frame engine started", "frame", e.Frame, "speed", e.Speed())

	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if !e.step() {
			e.Stop()
			break
		}

		// Sleep for the remainder of the frame interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("frame engine stopped", "frame", e.Frame)
}

// Stop halts the frame loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// step advances by one frame.
func (e *Engine) step() bool {
	e.Frame++

	if e.OnFrame != nil && !e.OnFrame(e.Frame) {
		return false
	}
	if e.Frame%FramesPerSecond == 0 && e.OnSecond != nil {
		e.OnSecond(e.Frame)
	}
	return true
}
