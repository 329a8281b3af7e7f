// SPDX-License-Identifier: EPL-2.0

package transport

// Fixed is a State with explicit values. Hosts that run their own transport
// fill one per block; tests use it to pin down a block exactly.
type Fixed struct {
	Position int64
	Playing  bool

	Jump    LoopBack
	HasJump bool

	SeekFrom int64
	HasSeek  bool
}

func (f *Fixed) Playhead() int64 { return f.Position }

func (f *Fixed) IsPlaying() bool { return f.Playing }

func (f *Fixed) LoopBack() (LoopBack, bool) { return f.Jump, f.HasJump }

func (f *Fixed) Seek() (int64, bool) { return f.SeekFrom, f.HasSeek }

var _ State = (*Fixed)(nil)
