// SPDX-License-Identifier: EPL-2.0

package clip

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ik5/timeline/block"
	"github.com/ik5/timeline/resource"
	"github.com/ik5/timeline/tempo"
	"github.com/ik5/timeline/utils"
)

// interval is the resolved sample-time placement of a clip.
type interval struct {
	start  int64 // first timeline sample, inclusive
	end    int64 // last timeline sample, exclusive
	offset int64 // source frame rendered at start
}

// Renderer plays one clip. Render runs on the audio thread and only touches
// the atomically published fields; every other method is for the control
// thread, which must serialize its calls.
type Renderer struct {
	info atomic.Pointer[interval]
	pcm  atomic.Pointer[resource.PCM]
	gain atomic.Uint32 // math.Float32bits of the linear gain

	desc  Descriptor
	tempo tempo.Map
}

// New builds a renderer for d and loads its material. A renderer is always
// returned; a non-nil error means the material failed to load and the clip
// renders silence until SetPCM is called.
func New(d Descriptor, loader Loader, m tempo.Map) (*Renderer, error) {
	r := &Renderer{desc: d, tempo: m}
	r.gain.Store(math.Float32bits(utils.DBToGain(d.GainDB)))

	var err error
	if loader == nil {
		err = ErrNoLoader
	} else {
		var pcm *resource.PCM
		pcm, err = loader.Load(d.Source)
		if err != nil {
			err = fmt.Errorf("loading %q: %w", d.Source, err)
		} else {
			r.pcm.Store(pcm)
		}
	}

	r.resolve()
	return r, err
}

// resolve recomputes the sample-time interval from the descriptor, the tempo
// map and the loaded material.
func (r *Renderer) resolve() {
	start := r.tempo.Samples(r.desc.TimelineStart)
	offset := max(r.tempo.Duration(r.desc.SourceOffset), 0)

	length := r.tempo.Duration(r.desc.Duration)
	if r.desc.Duration <= 0 {
		length = 0
		if pcm := r.pcm.Load(); pcm != nil {
			length = max(r.materialFrames(pcm)-offset, 0)
		}
	}

	r.info.Store(&interval{start: start, end: start + length, offset: offset})
}

// materialFrames is the material length expressed at the tempo map's rate.
func (r *Renderer) materialFrames(pcm *resource.PCM) int64 {
	frames := int64(pcm.Frames())
	if pcm.SampleRate <= 0 || pcm.SampleRate == r.tempo.SampleRate {
		return frames
	}
	return frames * int64(r.tempo.SampleRate) / int64(pcm.SampleRate)
}

// Interval returns the clip's [start, end) range in timeline samples.
func (r *Renderer) Interval() (start, end int64) {
	info := r.info.Load()
	return info.start, info.end
}

// Intersects reports whether the clip overlaps [from, to).
func (r *Renderer) Intersects(from, to int64) bool {
	info := r.info.Load()
	return info.start < to && from < info.end
}

// Loaded reports whether material is present.
func (r *Renderer) Loaded() bool { return r.pcm.Load() != nil }

// Gain returns the current linear gain.
func (r *Renderer) Gain() float32 { return math.Float32frombits(r.gain.Load()) }

// Retune re-resolves the interval against m.
func (r *Renderer) Retune(m tempo.Map) {
	r.tempo = m
	r.resolve()
}

// SetPCM installs material, typically after a failed load was fixed.
func (r *Renderer) SetPCM(pcm *resource.PCM) {
	r.pcm.Store(pcm)
	r.resolve()
}

// SetGain updates the clip level.
func (r *Renderer) SetGain(db float64) {
	r.desc.GainDB = db
	r.gain.Store(math.Float32bits(utils.DBToGain(db)))
}

// Render adds the clip's material for timeline samples [at, at+frames) into
// into, starting at block position offset. Frames outside the clip or past
// the end of the material are left untouched. The range is clipped to the
// block. sampleRate is the rate of the timeline; material stored at another
// rate is read with linear interpolation.
func (r *Renderer) Render(at int64, frames, sampleRate int, into *block.Stereo, offset int) {
	if offset < 0 || offset >= block.MaxBlockSize || frames <= 0 {
		return
	}
	frames = min(frames, block.MaxBlockSize-offset)

	pcm := r.pcm.Load()
	if pcm == nil {
		return
	}
	info := r.info.Load()

	from := max(at, info.start)
	to := min(at+int64(frames), info.end)
	if from >= to {
		return
	}

	gain := math.Float32frombits(r.gain.Load())
	dst := offset + int(from-at)
	n := int(to - from)
	total := pcm.Frames()

	if pcm.SampleRate == sampleRate || pcm.SampleRate <= 0 || sampleRate <= 0 {
		src := from - info.start + info.offset
		if src >= int64(total) {
			return
		}
		n = min(n, total-int(src))
		l, rr := into.Left[dst:dst+n], into.Right[dst:dst+n]
		pl, pr := pcm.Left[src:int(src)+n], pcm.Right[src:int(src)+n]
		for i := range n {
			l[i] += pl[i] * gain
			rr[i] += pr[i] * gain
		}
		return
	}

	ratio := float64(pcm.SampleRate) / float64(sampleRate)
	base := float64(from-info.start+info.offset) * ratio
	last := total - 1
	for i := range n {
		pos := base + float64(i)*ratio
		idx := int(pos)
		if idx >= last {
			if idx == last {
				into.Left[dst+i] += pcm.Left[last] * gain
				into.Right[dst+i] += pcm.Right[last] * gain
			}
			return
		}
		frac := float32(pos - float64(idx))
		l := pcm.Left[idx] + (pcm.Left[idx+1]-pcm.Left[idx])*frac
		rr := pcm.Right[idx] + (pcm.Right[idx+1]-pcm.Right[idx])*frac
		into.Left[dst+i] += l * gain
		into.Right[dst+i] += rr * gain
	}
}
