// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/timeline/utils"
)

// maxEmptyReads bounds how often a source may return (0, nil) in a row before
// it is treated as exhausted.
const maxEmptyReads = 64

// Resampler streams from src to a target sample rate using cubic
// interpolation. Samples stay interleaved and the channel count is preserved.
// When downsampling, a one-pole low-pass filter is applied to the input.
type Resampler struct {
	src      Source
	rate     int
	channels int
	step     float64 // source frames per output frame

	// Four frame window: t-1, t0, t+1, t+2. Output lies between t0 and t+1.
	window []float32
	real   [4]bool // false for frames padded after the end of the source
	frac   float64
	primed bool

	in      []float32
	inPos   int // frames consumed from in
	inLen   int // frames available in in
	srcDone bool

	lowpass bool
	alpha   float32
	state   []float32
	seeded  bool // state starts from the first input frame, avoiding a warm-up transient
}

// NewResampler wraps src so that it produces samples at dstRate.
func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	step := float64(src.SampleRate()) / float64(dstRate)

	return &Resampler{
		src:      src,
		rate:     dstRate,
		channels: channels,
		step:     step,
		window:   make([]float32, 4*channels),
		in:       make([]float32, 1024*channels),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// ReadSamples produces samples at the target rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.real[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.at(0, c), r.at(1, c), r.at(2, c), r.at(3, c), x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}

func (r *Resampler) at(frame, channel int) float32 {
	return r.window[frame*r.channels+channel]
}

// prime fills the window. The frame before the first one repeats it.
func (r *Resampler) prime() error {
	if err := r.pull(1); err != nil {
		return err
	}
	if !r.real[1] {
		return io.EOF
	}
	copy(r.window[:r.channels], r.window[r.channels:2*r.channels])
	r.real[0] = true

	for slot := 2; slot < 4; slot++ {
		if err := r.pull(slot); err != nil {
			return err
		}
	}
	r.primed = true
	return nil
}

// shift drops the oldest frame and pulls a new one into the last slot.
func (r *Resampler) shift() error {
	copy(r.window, r.window[r.channels:])
	copy(r.real[:], r.real[1:])
	return r.pull(3)
}

// pull reads the next source frame into slot, or repeats the previous slot
// once the source is exhausted.
func (r *Resampler) pull(slot int) error {
	dst := r.window[slot*r.channels : (slot+1)*r.channels]

	ok, err := r.next(dst)
	if err != nil {
		return err
	}
	if !ok {
		if slot > 0 {
			copy(dst, r.window[(slot-1)*r.channels:slot*r.channels])
		}
		r.real[slot] = false
		return nil
	}

	if r.lowpass {
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}
	r.real[slot] = true
	return nil
}

// next copies one frame from the input buffer, refilling it from the source.
func (r *Resampler) next(dst []float32) (bool, error) {
	for empty := 0; r.inPos >= r.inLen; empty++ {
		if r.srcDone || empty >= maxEmptyReads {
			r.srcDone = true
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n/r.channels
		if err == io.EOF {
			r.srcDone = true
		} else if err != nil {
			return false, fmt.Errorf("reading resampler source: %w", err)
		}
		if r.inLen > 0 && !r.seeded {
			copy(r.state, r.in[:r.channels])
			r.seeded = true
		}
	}

	copy(dst, r.in[r.inPos*r.channels:(r.inPos+1)*r.channels])
	r.inPos++
	return true, nil
}
