// SPDX-License-Identifier: EPL-2.0

// Package tempo converts between musical time and sample time.
package tempo

import (
	"math"
	"time"
)

// Beats is a position or length in musical time, measured in quarter notes.
type Beats float64

// Map is a constant-tempo map for one sample rate. It is a value type; a tempo
// change produces a new Map that is handed to the tracks with Retune.
type Map struct {
	BPM        float64
	SampleRate int
}

// New returns a map for bpm at sampleRate.
func New(bpm float64, sampleRate int) (Map, error) {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return Map{}, ErrInvalidBPM
	}
	if sampleRate <= 0 {
		return Map{}, ErrInvalidSampleRate
	}
	return Map{BPM: bpm, SampleRate: sampleRate}, nil
}

// SamplesPerBeat returns the length of one beat in samples.
func (m Map) SamplesPerBeat() float64 {
	return 60 / m.BPM * float64(m.SampleRate)
}

// Samples converts a musical position to the nearest sample.
func (m Map) Samples(b Beats) int64 {
	return int64(math.Round(float64(b) * m.SamplesPerBeat()))
}

// Beats converts a sample position to musical time.
func (m Map) Beats(samples int64) Beats {
	return Beats(float64(samples) / m.SamplesPerBeat())
}

// Duration converts a wall clock length to samples, rounding to nearest.
func (m Map) Duration(d time.Duration) int64 {
	return int64(math.Round(d.Seconds() * float64(m.SampleRate)))
}
