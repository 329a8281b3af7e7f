// SPDX-License-Identifier: EPL-2.0

package track

import (
	"slices"

	"github.com/ik5/timeline/clip"
)

// Descriptor is the persisted state of a track. Clips is index aligned with
// the track's published Snapshot.
type Descriptor struct {
	ID    string            `json:"id"`
	Clips []clip.Descriptor `json:"clips"`
}

// Snapshot is an immutable, ordered list of clip renderers. A new snapshot is
// built for every structural change and published atomically; readers keep
// using the one they loaded for the whole block.
type Snapshot struct {
	clips []*clip.Renderer
}

// Len returns the number of clips.
func (s *Snapshot) Len() int { return len(s.clips) }

// At returns the renderer at index i. It panics when i is out of range.
func (s *Snapshot) At(i int) *clip.Renderer { return s.clips[i] }

// Clips returns a copy of the renderer list.
func (s *Snapshot) Clips() []*clip.Renderer { return slices.Clone(s.clips) }

// with returns a new snapshot with r appended.
func (s *Snapshot) with(r *clip.Renderer) *Snapshot {
	clips := make([]*clip.Renderer, len(s.clips), len(s.clips)+1)
	copy(clips, s.clips)
	return &Snapshot{clips: append(clips, r)}
}

// without returns a new snapshot lacking index i.
func (s *Snapshot) without(i int) *Snapshot {
	return &Snapshot{clips: slices.Delete(slices.Clone(s.clips), i, i+1)}
}

// replaced returns a new snapshot with index i set to r.
func (s *Snapshot) replaced(i int, r *clip.Renderer) *Snapshot {
	clips := slices.Clone(s.clips)
	clips[i] = r
	return &Snapshot{clips: clips}
}
