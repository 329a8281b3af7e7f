// SPDX-License-Identifier: EPL-2.0

// Package block holds the fixed-capacity buffers exchanged on the real-time
// path. A Stereo value is sized for the largest block the engine accepts, so
// it can be embedded in long-lived structs and reused without allocation.
package block

// MaxBlockSize is the largest number of frames processed in one block.
const MaxBlockSize = 1024

// Stereo is a deinterleaved two channel block of samples.
type Stereo struct {
	Left  [MaxBlockSize]float32
	Right [MaxBlockSize]float32
}

// Clamp limits frames to [0, MaxBlockSize].
func Clamp(frames int) int {
	if frames < 0 {
		return 0
	}
	if frames > MaxBlockSize {
		return MaxBlockSize
	}
	return frames
}

// Clear zeroes the first frames samples of both channels.
func (s *Stereo) Clear(frames int) {
	frames = Clamp(frames)
	clear(s.Left[:frames])
	clear(s.Right[:frames])
}

// Scale multiplies samples [offset, offset+len(gain)) by gain, sample by sample.
// The range is clipped to the block.
func (s *Stereo) Scale(offset int, gain []float32) {
	n := span(offset, len(gain))
	if n == 0 {
		return
	}
	l := s.Left[offset : offset+n]
	r := s.Right[offset : offset+n]
	for i, g := range gain[:n] {
		l[i] *= g
		r[i] *= g
	}
}

// Add sums src[offset:offset+frames] into s at the same positions.
func (s *Stereo) Add(src *Stereo, offset, frames int) {
	n := span(offset, frames)
	if n == 0 {
		return
	}
	l, r := s.Left[offset:offset+n], s.Right[offset:offset+n]
	sl, sr := src.Left[offset:offset+n], src.Right[offset:offset+n]
	for i := range n {
		l[i] += sl[i]
		r[i] += sr[i]
	}
}

// AddScaled sums src[offset+i]*gain[i] into s for every i in gain.
func (s *Stereo) AddScaled(src *Stereo, offset int, gain []float32) {
	n := span(offset, len(gain))
	if n == 0 {
		return
	}
	l, r := s.Left[offset:offset+n], s.Right[offset:offset+n]
	sl, sr := src.Left[offset:offset+n], src.Right[offset:offset+n]
	for i, g := range gain[:n] {
		l[i] += sl[i] * g
		r[i] += sr[i] * g
	}
}

// span returns how many of n frames starting at offset fit in a block.
func span(offset, n int) int {
	if offset < 0 || offset >= MaxBlockSize || n <= 0 {
		return 0
	}
	return min(n, MaxBlockSize-offset)
}
