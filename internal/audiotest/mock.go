// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: generated
// sources, in-memory decoders and a scripted clip loader.
package audiotest

import (
	"io"
	"math"
)

// Wave returns the value of channel ch at frame i.
type Wave func(i, ch int) float32

// MockSource is a synthetic audio.Source of a fixed number of frames.
type MockSource struct {
	rate   int
	chans  int
	frames int
	pos    int
	wave   Wave
	closed bool
}

// NewMockSource returns a source producing frames frames of wave.
func NewMockSource(sampleRate, channels, frames int, wave func(i, ch int) float32) *MockSource {
	return &MockSource{rate: sampleRate, chans: channels, frames: frames, wave: wave}
}

// NewSineSource returns a full scale sine at hz, identical on every channel.
func NewSineSource(sampleRate, channels, frames int, hz float64) *MockSource {
	w := 2 * math.Pi * hz / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(w * float64(i)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, v float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return v })
}

// NewIndexSource writes i/scale into frame i, so tests can tell which source
// frame ended up where.
func NewIndexSource(sampleRate, channels, frames int, scale float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(i) / scale
	})
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.chans }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

func (m *MockSource) Closed() bool { return m.closed }

// ReadSamples fills whole frames of dst. The read that reaches the end
// returns io.EOF together with its samples.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	left := m.frames - m.pos
	if left <= 0 {
		return 0, io.EOF
	}

	n := min(len(dst)/m.chans, left)
	out := dst[:n*m.chans]
	for i := range out {
		out[i] = m.wave(m.pos+i/m.chans, i%m.chans)
	}
	m.pos += n

	if m.pos == m.frames {
		return len(out), io.EOF
	}
	return len(out), nil
}
