// SPDX-License-Identifier: EPL-2.0

// Package param provides per-block parameter smoothing for the real-time path.
package param

import (
	"math"
	"time"

	"github.com/ik5/timeline/block"
)

// Status describes where a Ramp is in its transition.
type Status uint8

const (
	// Inactive means the ramp rests at its target.
	Inactive Status = iota
	// Active means the ramp is moving towards its target.
	Active
	// Deactivating means the target was reached during the last processed
	// block. The output of that block still carries the tail of the ramp.
	Deactivating
)

// Ramp linearly interpolates a value towards a target over a fixed number of
// samples, producing one output value per processed sample.
type Ramp struct {
	value  float32
	target float32
	step   float32

	duration  int // samples for a full transition
	remaining int // samples left in the current transition

	status Status

	out [block.MaxBlockSize]float32
	n   int
}

// NewRamp returns a ramp resting at v with a one sample duration.
func NewRamp(v float32) *Ramp {
	r := &Ramp{duration: 1}
	r.Reset(v)
	return r
}

// SetSpeed configures the transition length as d at sampleRate.
// The duration is rounded up to whole samples and is at least one sample.
// A transition already in progress keeps its original length.
func (r *Ramp) SetSpeed(sampleRate int, d time.Duration) {
	samples := int(math.Ceil(d.Seconds() * float64(sampleRate)))
	r.duration = max(samples, 1)
}

// Duration returns the configured transition length in samples.
func (r *Ramp) Duration() int { return r.duration }

// Set starts a transition from the current value to target.
func (r *Ramp) Set(target float32) {
	if target == r.target && (r.status != Inactive || r.value == target) {
		return
	}
	r.target = target
	r.remaining = r.duration
	r.step = (target - r.value) / float32(r.duration)
	r.status = Active
}

// Reset jumps straight to v, abandoning any transition in progress.
func (r *Ramp) Reset(v float32) {
	r.value = v
	r.target = v
	r.step = 0
	r.remaining = 0
	r.status = Inactive
	for i := range r.n {
		r.out[i] = v
	}
}

// Restart begins a transition from from to target. Unlike Reset followed by
// Set, the values already recorded for the current block are kept, so a
// following Append continues the same Output.
func (r *Ramp) Restart(from, target float32) {
	r.value = from
	r.target = target
	r.remaining = r.duration
	r.step = (target - from) / float32(r.duration)
	r.status = Active
}

// Process advances the ramp by n samples (at most block.MaxBlockSize) and
// records the value of every sample. The result is read through Output.
func (r *Ramp) Process(n int) {
	r.n = 0
	r.Append(n)
}

// Append advances the ramp by n more samples and records them after the
// values of the current block. Output never grows past block.MaxBlockSize.
func (r *Ramp) Append(n int) {
	n = min(block.Clamp(n), block.MaxBlockSize-r.n)
	out := r.out[r.n : r.n+n]
	r.n += n

	if r.remaining == 0 {
		v := r.value
		for i := range out {
			out[i] = v
		}
		return
	}

	for i := range out {
		if r.remaining > 0 {
			r.remaining--
			if r.remaining == 0 {
				r.value = r.target
			} else {
				r.value += r.step
				// Float accumulation must never carry the value past the target.
				if (r.step > 0 && r.value > r.target) || (r.step < 0 && r.value < r.target) {
					r.value = r.target
				}
			}
		}
		out[i] = r.value
	}
}

// UpdateStatus recomputes the status after Process.
func (r *Ramp) UpdateStatus() Status {
	switch r.status {
	case Active:
		if r.remaining == 0 {
			r.status = Deactivating
		}
	case Deactivating:
		r.status = Inactive
	}
	return r.status
}

// Status returns the current status.
func (r *Ramp) Status() Status { return r.status }

// IsActive reports whether the ramp is still transitioning, including the
// block in which it reached its target.
func (r *Ramp) IsActive() bool { return r.status != Inactive }

// Value returns the value after the last processed sample.
func (r *Ramp) Value() float32 { return r.value }

// Target returns the value the ramp is heading to.
func (r *Ramp) Target() float32 { return r.target }

// Output returns a view of the last processed block. The view is only valid
// until the next call to Process or Reset.
func (r *Ramp) Output() Output {
	return Output{Values: r.out[:r.n], smoothing: r.status != Inactive}
}

// Output is a read-only view of one block of ramp values.
type Output struct {
	Values    []float32
	smoothing bool
}

// IsSmoothing reports whether Values differ from a constant resting value,
// so callers can skip applying the curve.
func (o Output) IsSmoothing() bool { return o.smoothing }
