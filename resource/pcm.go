// SPDX-License-Identifier: EPL-2.0

package resource

// PCM is decoded, deinterleaved stereo material at the session sample rate.
// It is shared read-only between renderers once loaded.
type PCM struct {
	SampleRate int
	Left       []float32
	Right      []float32
}

// Frames returns the number of stereo frames held.
func (p *PCM) Frames() int {
	if p == nil {
		return 0
	}
	return min(len(p.Left), len(p.Right))
}

// deinterleave splits interleaved stereo samples into a PCM.
func deinterleave(samples []float32, sampleRate int) *PCM {
	frames := len(samples) / 2
	pcm := &PCM{
		SampleRate: sampleRate,
		Left:       make([]float32, frames),
		Right:      make([]float32, frames),
	}
	for i := range frames {
		pcm.Left[i] = samples[2*i]
		pcm.Right[i] = samples[2*i+1]
	}
	return pcm
}
