// SPDX-License-Identifier: EPL-2.0

package track

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ik5/timeline/clip"
	"github.com/ik5/timeline/tempo"
)

// Mutator is the control-thread API of a track. Its methods may be called from
// any goroutine; they are serialized internally and never block the audio
// thread, which only sees the published snapshots.
//
// After every call the id index, the descriptor list and the published
// snapshot have the same length and agree slot by slot.
type Mutator struct {
	mtx sync.Mutex

	id       string
	snapshot *atomic.Pointer[Snapshot]
	index    map[string]int
	descs    []clip.Descriptor

	loader clip.Loader
	tempo  tempo.Map
	logger *slog.Logger
}

// New builds a track from desc. Every clip is constructed; clips whose
// material failed to load are reported in the returned slice and render
// silence. The error is non-nil only for structural problems in desc, such as
// duplicate clip ids.
func New(desc Descriptor, loader clip.Loader, m tempo.Map, logger *slog.Logger) (*Mixer, *Mutator, []ClipLoadError, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mut := &Mutator{
		id:       desc.ID,
		snapshot: new(atomic.Pointer[Snapshot]),
		index:    make(map[string]int, len(desc.Clips)),
		descs:    make([]clip.Descriptor, 0, len(desc.Clips)),
		loader:   loader,
		tempo:    m,
		logger:   logger.With("track", desc.ID),
	}

	clips := make([]*clip.Renderer, 0, len(desc.Clips))
	var loadErrs []ClipLoadError
	for _, d := range desc.Clips {
		if err := d.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("track %q: %w", desc.ID, err)
		}
		if _, ok := mut.index[d.ID]; ok {
			return nil, nil, nil, fmt.Errorf("track %q: %w: %s", desc.ID, ErrDuplicateID, d.ID)
		}

		r, err := clip.New(d, loader, m)
		if err != nil {
			mut.logger.Warn("clip material unavailable", "clip", d.ID, "source", d.Source, "error", err)
			loadErrs = append(loadErrs, ClipLoadError{ClipID: d.ID, Err: err})
		}
		mut.index[d.ID] = len(clips)
		mut.descs = append(mut.descs, d)
		clips = append(clips, r)
	}
	mut.snapshot.Store(&Snapshot{clips: clips})

	mut.logger.Debug("track built", "clips", len(clips), "load_errors", len(loadErrs))
	return newMixer(mut.snapshot), mut, loadErrs, nil
}

// ID returns the track id.
func (m *Mutator) ID() string { return m.id }

// Snapshot returns the currently published snapshot.
func (m *Mutator) Snapshot() *Snapshot { return m.snapshot.Load() }

// Len returns the number of clips.
func (m *Mutator) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return len(m.descs)
}

// Descriptor returns a copy of the track's persisted state.
func (m *Mutator) Descriptor() Descriptor {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return Descriptor{ID: m.id, Clips: slices.Clone(m.descs)}
}

// Clip returns the descriptor of clip id.
func (m *Mutator) Clip(id string) (clip.Descriptor, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	i, ok := m.index[id]
	if !ok {
		return clip.Descriptor{}, false
	}
	return m.descs[i], true
}

// AddClip appends a clip. A load failure does not prevent the insertion and
// is returned as data.
func (m *Mutator) AddClip(d clip.Descriptor) (*ClipLoadError, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.index[d.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
	}

	r, err := clip.New(d, m.loader, m.tempo)
	m.snapshot.Store(m.snapshot.Load().with(r))
	m.index[d.ID] = len(m.descs)
	m.descs = append(m.descs, d)

	m.logger.Info("clip added", "clip", d.ID, "source", d.Source, "index", len(m.descs)-1)
	return m.loadError(d, err), nil
}

// RemoveClip drops clip id. Every clip after it moves down one slot.
func (m *Mutator) RemoveClip(id string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	k, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.snapshot.Store(m.snapshot.Load().without(k))
	m.descs = slices.Delete(m.descs, k, k+1)
	delete(m.index, id)
	for other, i := range m.index {
		if i > k {
			m.index[other] = i - 1
		}
	}

	m.logger.Info("clip removed", "clip", id, "index", k)
	return nil
}

// RenameClip changes a clip id. The published snapshot is left alone.
func (m *Mutator) RenameClip(oldID, newID string) error {
	if newID == "" {
		return clip.ErrEmptyID
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.index[newID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, newID)
	}
	k, ok := m.index[oldID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, oldID)
	}

	delete(m.index, oldID)
	m.index[newID] = k
	m.descs[k].ID = newID

	m.logger.Info("clip renamed", "from", oldID, "to", newID)
	return nil
}

// Retune re-resolves every clip interval against tm. The snapshot identity
// does not change.
func (m *Mutator) Retune(tm tempo.Map) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.tempo = tm
	snap := m.snapshot.Load()
	for i := range snap.Len() {
		snap.At(i).Retune(tm)
	}

	m.logger.Debug("retuned", "bpm", tm.BPM, "sample_rate", tm.SampleRate)
}

// SetClipGain changes the level of clip id in place.
func (m *Mutator) SetClipGain(id string, db float64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	k, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.descs[k].GainDB = db
	m.snapshot.Load().At(k).SetGain(db)
	return nil
}

// MoveClip places clip id at start. The clip gets a new renderer, published
// through a new snapshot.
func (m *Mutator) MoveClip(id string, start tempo.Beats) (*ClipLoadError, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	k, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	d := m.descs[k]
	d.TimelineStart = start
	if err := d.Validate(); err != nil {
		return nil, err
	}

	r, err := clip.New(d, m.loader, m.tempo)
	m.snapshot.Store(m.snapshot.Load().replaced(k, r))
	m.descs[k] = d

	m.logger.Info("clip moved", "clip", id, "start", float64(start))
	return m.loadError(d, err), nil
}

// ReloadClip asks the loader for clip id's material again and installs it on
// success.
func (m *Mutator) ReloadClip(id string) (*ClipLoadError, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	k, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if m.loader == nil {
		return m.loadError(m.descs[k], clip.ErrNoLoader), nil
	}

	pcm, err := m.loader.Load(m.descs[k].Source)
	if err != nil {
		return m.loadError(m.descs[k], err), nil
	}
	m.snapshot.Load().At(k).SetPCM(pcm)

	m.logger.Info("clip reloaded", "clip", id)
	return nil, nil
}

func (m *Mutator) loadError(d clip.Descriptor, err error) *ClipLoadError {
	if err == nil {
		return nil
	}
	m.logger.Warn("clip material unavailable", "clip", d.ID, "source", d.Source, "error", err)
	return &ClipLoadError{ClipID: d.ID, Err: err}
}
