// SPDX-License-Identifier: EPL-2.0

package track

import (
	"sync/atomic"

	"github.com/ik5/timeline/block"
	"github.com/ik5/timeline/declick"
	"github.com/ik5/timeline/param"
	"github.com/ik5/timeline/transport"
)

// Mixer renders a track on the audio thread. Process never allocates, blocks
// or locks; it loads the published snapshot once per block.
type Mixer struct {
	snapshot *atomic.Pointer[Snapshot]

	// scratch holds the ghost streams that fade out after a discontinuity.
	scratch block.Stereo
}

func newMixer(snapshot *atomic.Pointer[Snapshot]) *Mixer {
	return &Mixer{snapshot: snapshot}
}

// Process renders frames of the track into out and applies the declick
// curves of d, which must already have been advanced for this block.
//
// When the transport is stopped and d is idle, out is left untouched and
// Process returns false. Otherwise out[0:frames) is overwritten and Process
// returns true.
func (m *Mixer) Process(out *block.Stereo, frames, sampleRate int, t transport.State, d *declick.Engine) bool {
	if !t.IsPlaying() && !d.IsActive() {
		return false
	}

	frames = block.Clamp(frames)
	snap := m.snapshot.Load()
	playhead := t.Playhead()

	out.Clear(frames)

	if lb, ok := t.LoopBack(); ok {
		first := lb.FirstFrames(playhead, frames)
		second := frames - first

		render(snap, playhead, first, sampleRate, out, 0)
		render(snap, lb.LoopStart, second, sampleRate, out, first)
		// Covers the whole block: an earlier crossfade still scales the head.
		out.Scale(0, curve(d.LoopCrossfadeIn(), frames))

		if second > 0 {
			// The pre-jump stream keeps playing under the tail, fading out.
			m.scratch.Clear(frames)
			render(snap, playhead+int64(first), second, sampleRate, &m.scratch, first)
			out.AddScaled(&m.scratch, first, curve(d.LoopCrossfadeOut(), second))
		}
	} else {
		render(snap, playhead, frames, sampleRate, out, 0)

		if in := d.LoopCrossfadeIn(); in.IsSmoothing() {
			out.Scale(0, curve(in, frames))
		}
		if fadeOut := d.LoopCrossfadeOut(); fadeOut.IsSmoothing() {
			m.ghost(snap, d.LoopOutPlayhead(), frames, sampleRate, out, fadeOut)
		}
	}

	tails := d.LoopTails()
	for i := range tails {
		if g := &tails[i]; g.IsActive() {
			m.ghost(snap, g.Playhead(), frames, sampleRate, out, g.Fade())
		}
	}

	if in := d.SeekCrossfadeIn(); in.IsSmoothing() {
		out.Scale(0, curve(in, frames))
	}
	if fadeOut := d.SeekCrossfadeOut(); fadeOut.IsSmoothing() {
		m.ghost(snap, d.SeekOutPlayhead(), frames, sampleRate, out, fadeOut)
	}

	if fade := d.StartStopFade(); fade.IsSmoothing() {
		out.Scale(0, curve(fade, frames))
	}

	return true
}

// ghost renders the abandoned stream starting at from into scratch and mixes
// it into out scaled by fade.
func (m *Mixer) ghost(snap *Snapshot, from int64, frames, sampleRate int, out *block.Stereo, fade param.Output) {
	m.scratch.Clear(frames)
	render(snap, from, frames, sampleRate, &m.scratch, 0)
	out.AddScaled(&m.scratch, 0, curve(fade, frames))
}

// render adds every clip intersecting [at, at+frames) into buf at offset.
func render(snap *Snapshot, at int64, frames, sampleRate int, buf *block.Stereo, offset int) {
	if frames <= 0 {
		return
	}
	end := at + int64(frames)
	for _, c := range snap.clips {
		if c.Intersects(at, end) {
			c.Render(at, frames, sampleRate, buf, offset)
		}
	}
}

// curve returns at most n values of o.
func curve(o param.Output, n int) []float32 {
	if len(o.Values) > n {
		return o.Values[:n]
	}
	return o.Values
}
