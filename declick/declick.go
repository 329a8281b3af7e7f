// SPDX-License-Identifier: EPL-2.0

// Package declick produces the fade curves that keep transport
// discontinuities free of clicks.
//
// One Engine exists per transport and is shared by every track it drives, so
// all tracks fade against the same playhead reference. The engine is advanced
// once per block, before any track renders, and the curves it exposes stay
// valid until the next call to Process.
//
// Five independent curves are maintained:
//   - start/stop: fades the whole mix in on play and out on stop
//   - seek in/out: crossfades a seek, the out curve scales a "ghost" stream
//     that keeps playing from the abandoned position
//   - loop in/out: crossfades a loop jump the same way
//
// A loop jump that arrives while the previous loop crossfade is still running
// restarts it without a cut: the ghost of the earlier jump keeps fading as a
// tail, and the new ghost starts at the level the main stream had. Once a
// stop fade is over every pending crossfade ends with it.
package declick

import (
	"time"

	"github.com/ik5/timeline/param"
	"github.com/ik5/timeline/transport"
)

// DefaultFade is the crossfade length used by most hosts.
const DefaultFade = 10 * time.Millisecond

// MaxLoopTails is how many earlier loop ghosts may keep fading out while a
// newer loop crossfade runs. Loops shorter than the fade need one per jump
// that happens within a fade length; past that the quietest one is dropped.
const MaxLoopTails = 3

// Ghost is a stream abandoned by a loop jump that is still fading out.
type Ghost struct {
	fade     *param.Ramp
	playhead int64
	next     int64
}

// IsActive reports whether the ghost still has to be rendered.
func (g *Ghost) IsActive() bool { return g.fade.IsActive() }

// Playhead is where the ghost stream plays during the current block.
func (g *Ghost) Playhead() int64 { return g.playhead }

// Fade is the gain curve of the ghost for the current block.
func (g *Ghost) Fade() param.Output { return g.fade.Output() }

// advance moves the ghost by one block of frames.
func (g *Ghost) advance(frames int) {
	if !g.fade.IsActive() {
		return
	}
	g.playhead = g.next
	g.next += int64(frames)
	process(g.fade, frames, 1)
}

// Engine is the shared declick state machine. It is not safe for concurrent
// use; only the real-time thread touches it.
type Engine struct {
	startStop *param.Ramp

	seekIn  *param.Ramp
	seekOut *param.Ramp
	loopIn  *param.Ramp

	seekOutPlayhead     int64
	seekOutNextPlayhead int64

	loopOut   Ghost
	loopTails [MaxLoopTails]Ghost

	playing bool
	active  bool
}

// New returns an engine whose fades last fade at sampleRate.
func New(fade time.Duration, sampleRate int) *Engine {
	ramp := func(v float32) *param.Ramp {
		r := param.NewRamp(v)
		r.SetSpeed(sampleRate, fade)
		return r
	}

	e := &Engine{
		startStop: ramp(0),
		seekIn:    ramp(0),
		seekOut:   ramp(1),
		loopIn:    ramp(0),
		loopOut:   Ghost{fade: ramp(1)},
	}
	for i := range e.loopTails {
		e.loopTails[i].fade = ramp(1)
	}
	return e
}

// Process advances every curve by one block of frames.
func (e *Engine) Process(frames int, t transport.State) {
	if playing := t.IsPlaying(); playing != e.playing {
		e.playing = playing
		if playing {
			e.startStop.Set(1)
		} else {
			e.startStop.Set(0)
		}
	}

	e.startStop.Process(frames)
	e.startStop.UpdateStatus()

	// A stop fade still renders material, so seeks during it crossfade too.
	if from, ok := t.Seek(); ok && (e.playing || e.startStop.IsActive()) {
		e.seekIn.Reset(0)
		e.seekIn.Set(1)
		e.seekOut.Reset(1)
		e.seekOut.Set(0)
		e.seekOutNextPlayhead = from
	}

	advance(e.seekIn, frames, 0)
	if e.seekOut.IsActive() {
		e.seekOutPlayhead = e.seekOutNextPlayhead
		e.seekOutNextPlayhead += int64(frames)
		advance(e.seekOut, frames, 1)
	}

	e.loopOut.advance(frames)
	for i := range e.loopTails {
		e.loopTails[i].advance(frames)
	}

	if lb, ok := t.LoopBack(); ok {
		e.jump(lb, t.Playhead(), frames)
	} else {
		advance(e.loopIn, frames, 0)
	}

	// Nothing is audible once a stop fade is over, so pending crossfades end.
	if !e.playing && !e.startStop.IsActive() {
		e.silence()
	}

	e.active = e.startStop.IsActive() ||
		e.seekIn.IsActive() ||
		e.seekOut.IsActive() ||
		e.loopIn.IsActive() ||
		e.loopOut.IsActive()
	for i := range e.loopTails {
		e.active = e.active || e.loopTails[i].IsActive()
	}
}

// jump restarts the loop crossfade for a jump inside the block. The loop-in
// curve keeps its previous level up to the jump point and fades in from zero
// after it. The new ghost starts at the level the main stream had at the jump,
// and a ghost still fading from an earlier jump moves to the tails.
func (e *Engine) jump(lb transport.LoopBack, playhead int64, frames int) {
	first := lb.FirstFrames(playhead, frames)
	second := frames - first

	if !e.loopIn.IsActive() {
		e.loopIn.Reset(1)
	}
	e.loopIn.Process(first)
	level := e.loopIn.Value()
	e.loopIn.Restart(0, 1)
	e.loopIn.Append(second)
	e.loopIn.UpdateStatus()

	if e.loopOut.IsActive() {
		e.retire()
	}
	e.loopOut.fade.Restart(level, 0)
	process(e.loopOut.fade, second, 1)
	e.loopOut.playhead = playhead
	e.loopOut.next = playhead + int64(frames)
}

// retire moves the current loop ghost into a free tail slot, replacing the
// quietest tail when all are busy. Ramps are swapped, never copied.
func (e *Engine) retire() {
	slot := 0
	for i := range e.loopTails {
		if !e.loopTails[i].IsActive() {
			slot = i
			break
		}
		if e.loopTails[i].fade.Value() < e.loopTails[slot].fade.Value() {
			slot = i
		}
	}

	tail := &e.loopTails[slot]
	tail.fade, e.loopOut.fade = e.loopOut.fade, tail.fade
	tail.playhead, tail.next = e.loopOut.playhead, e.loopOut.next
	e.loopOut.fade.Reset(1)
}

// silence puts every crossfade back to rest.
func (e *Engine) silence() {
	rest(e.seekIn, 0)
	rest(e.seekOut, 1)
	rest(e.loopIn, 0)
	rest(e.loopOut.fade, 1)
	for i := range e.loopTails {
		rest(e.loopTails[i].fade, 1)
	}
}

func rest(r *param.Ramp, v float32) {
	if r.IsActive() {
		r.Reset(v)
	}
}

// advance processes r if it is still active.
func advance(r *param.Ramp, frames int, rest float32) {
	if r.IsActive() {
		process(r, frames, rest)
	}
}

// process runs r for frames and puts it back to rest once it finishes, so the
// following blocks are no-ops.
func process(r *param.Ramp, frames int, rest float32) {
	r.Process(frames)
	r.UpdateStatus()
	if !r.IsActive() {
		r.Reset(rest)
	}
}

// IsActive reports whether any curve is still moving. Tracks skip rendering
// entirely when the transport is stopped and the engine is inactive.
func (e *Engine) IsActive() bool { return e.active }

// Playing returns the transport state seen by the last Process.
func (e *Engine) Playing() bool { return e.playing }

// StartStopFade is the gain applied to the whole mix while playback starts
// or stops.
func (e *Engine) StartStopFade() param.Output { return e.startStop.Output() }

// SeekCrossfadeIn is the gain of the stream at the new position after a seek.
func (e *Engine) SeekCrossfadeIn() param.Output { return e.seekIn.Output() }

// SeekCrossfadeOut is the gain of the stream abandoned by a seek.
func (e *Engine) SeekCrossfadeOut() param.Output { return e.seekOut.Output() }

// LoopCrossfadeIn is the gain of the main stream during a loop crossfade. It
// always covers the whole block: in the block of a jump, the values before
// the jump point carry the level of any earlier crossfade (1 when there was
// none) and the values after it fade in from zero.
func (e *Engine) LoopCrossfadeIn() param.Output { return e.loopIn.Output() }

// LoopCrossfadeOut is the gain of the newest loop ghost. In the block of a
// jump it only covers the frames after the jump point.
func (e *Engine) LoopCrossfadeOut() param.Output { return e.loopOut.Fade() }

// SeekOutPlayhead is where the stream abandoned by a seek continues during
// the current block.
func (e *Engine) SeekOutPlayhead() int64 { return e.seekOutPlayhead }

// LoopOutPlayhead is where the stream abandoned by a loop jump continues
// during the current block. In the block of the jump itself it is the
// pre-jump playhead.
func (e *Engine) LoopOutPlayhead() int64 { return e.loopOut.playhead }

// LoopTails returns the ghosts of earlier loop jumps. Only entries reporting
// IsActive have to be rendered, over the whole block. The slice aliases the
// engine and is valid until the next call to Process.
func (e *Engine) LoopTails() []Ghost { return e.loopTails[:] }
