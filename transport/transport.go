// SPDX-License-Identifier: EPL-2.0

// Package transport describes the playback position the timeline core reads
// every block, and provides a small lock-free transport to drive it.
//
// The core never decides when to start, stop, seek or loop. It only consumes
// the State interface. Transport is one implementation of it: control threads
// post commands, and the real-time thread latches them once per block.
package transport

import "sync/atomic"

// State is the read interface of a transport, as seen by the real-time thread
// during one block.
type State interface {
	// Playhead is the sample position of the first frame of the block.
	Playhead() int64
	// IsPlaying reports whether the transport is rolling.
	IsPlaying() bool
	// LoopBack reports the loop jump that happens inside this block, if any.
	LoopBack() (LoopBack, bool)
	// Seek reports a discontinuous jump that happened right before this
	// block, returning the position playback was abandoned at. It is
	// reported even while stopped, since a stop fade still renders.
	Seek() (from int64, ok bool)
}

// LoopBack describes a jump from LoopEnd back to LoopStart inside one block.
// PlayheadEnd is where the block ends after the jump.
type LoopBack struct {
	LoopStart   int64
	LoopEnd     int64
	PlayheadEnd int64
}

// FirstFrames returns how many frames of a block starting at playhead are
// played before the jump, clamped to [0, frames].
func (l LoopBack) FirstFrames(playhead int64, frames int) int {
	first := l.LoopEnd - playhead
	if first < 0 {
		return 0
	}
	if first > int64(frames) {
		return frames
	}
	return int(first)
}

// LoopState is the loop region of a transport.
type LoopState struct {
	Active bool
	Start  int64
	End    int64
}

// Transport is a minimal transport. Play, Stop, SeekTo, SetLoop, ClearLoop and
// Position may be called from any goroutine. Begin, Advance and the State
// methods belong to the real-time thread.
type Transport struct {
	playing atomic.Bool
	seek    atomic.Pointer[int64]
	loop    atomic.Pointer[LoopState]
	pos     atomic.Int64

	// Real-time side, latched by Begin.
	playhead    int64
	frames      int
	rolling     bool
	loopBack    LoopBack
	hasLoopBack bool
	seekFrom    int64
	seeked      bool
}

// New returns a stopped transport at position 0 with no loop.
func New() *Transport {
	return &Transport{}
}

// Play starts playback at the next block.
func (t *Transport) Play() { t.playing.Store(true) }

// Stop stops playback at the next block.
func (t *Transport) Stop() { t.playing.Store(false) }

// SeekTo moves the playhead to pos at the next block.
func (t *Transport) SeekTo(pos int64) {
	if pos < 0 {
		pos = 0
	}
	t.seek.Store(&pos)
}

// SetLoop activates a loop over [start, end). Regions with end <= start are
// stored but never trigger a jump.
func (t *Transport) SetLoop(start, end int64) {
	t.loop.Store(&LoopState{Active: true, Start: start, End: end})
}

// ClearLoop disables looping.
func (t *Transport) ClearLoop() {
	t.loop.Store(&LoopState{})
}

// Loop returns the current loop region.
func (t *Transport) Loop() LoopState {
	if l := t.loop.Load(); l != nil {
		return *l
	}
	return LoopState{}
}

// Position returns the playhead as last published by the real-time thread.
func (t *Transport) Position() int64 { return t.pos.Load() }

// Begin latches pending commands for a block of frames and computes the
// discontinuities that happen in it.
func (t *Transport) Begin(frames int) {
	t.frames = frames
	t.rolling = t.playing.Load()

	t.seeked = false
	if p := t.seek.Swap(nil); p != nil && *p != t.playhead {
		t.seeked = true
		t.seekFrom = t.playhead
		t.playhead = *p
		t.pos.Store(t.playhead)
	}

	// Loop jumps only happen while rolling.
	t.hasLoopBack = false
	l := t.loop.Load()
	if !t.rolling || l == nil || !l.Active || l.End <= l.Start {
		return
	}
	end := t.playhead + int64(frames)
	if t.playhead <= l.End && l.End < end {
		t.hasLoopBack = true
		t.loopBack = LoopBack{
			LoopStart:   l.Start,
			LoopEnd:     l.End,
			PlayheadEnd: l.Start + (end - l.End),
		}
	}
}

// Advance moves the playhead past the block latched by Begin.
func (t *Transport) Advance() {
	if t.hasLoopBack {
		t.playhead = t.loopBack.PlayheadEnd
	} else {
		t.playhead += int64(t.frames)
	}
	t.pos.Store(t.playhead)
}

func (t *Transport) Playhead() int64 { return t.playhead }

func (t *Transport) IsPlaying() bool { return t.rolling }

func (t *Transport) LoopBack() (LoopBack, bool) { return t.loopBack, t.hasLoopBack }

func (t *Transport) Seek() (int64, bool) { return t.seekFrom, t.seeked }

var _ State = (*Transport)(nil)
