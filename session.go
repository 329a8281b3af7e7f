// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ik5/timeline/block"
	"github.com/ik5/timeline/clip"
	"github.com/ik5/timeline/config"
	"github.com/ik5/timeline/declick"
	"github.com/ik5/timeline/tempo"
	"github.com/ik5/timeline/track"
	"github.com/ik5/timeline/transport"
)

type sessionTrack struct {
	id      string
	mixer   *track.Mixer
	mutator *track.Mutator
}

// trackList is published copy-on-write like a track snapshot.
type trackList struct {
	tracks []sessionTrack
}

func (l *trackList) find(id string) int {
	return slices.IndexFunc(l.tracks, func(t sessionTrack) bool { return t.id == id })
}

// Session binds one transport and one declick engine to a set of tracks.
//
// Process belongs to the audio thread. Every other method may be called from
// any goroutine.
type Session struct {
	cfg    config.Config
	loader clip.Loader
	logger *slog.Logger

	transport *transport.Transport
	declick   *declick.Engine

	mtx    sync.Mutex
	tempo  tempo.Map
	tracks atomic.Pointer[trackList]

	// scratch receives each track before it is summed into the output.
	scratch block.Stereo
}

// NewSession creates a stopped session at position zero. A nil logger uses
// slog.Default.
func NewSession(cfg config.Config, loader clip.Loader, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	tm, err := cfg.Tempo()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:       cfg,
		loader:    loader,
		logger:    logger.With("component", "session"),
		transport: transport.New(),
		declick:   declick.New(cfg.DeclickFade, cfg.SampleRate),
		tempo:     tm,
	}
	s.tracks.Store(&trackList{})

	s.logger.Debug("session created",
		"sample_rate", cfg.SampleRate,
		"block_size", cfg.BlockSize,
		"bpm", cfg.BPM,
		"fade", cfg.DeclickFade)
	return s, nil
}

// Config returns the settings the session was created with.
func (s *Session) Config() config.Config { return s.cfg }

// Transport returns the session transport. Its commands take effect at the
// next block.
func (s *Session) Transport() *transport.Transport { return s.transport }

// Declick returns the shared declick engine. It must only be read from the
// audio thread.
func (s *Session) Declick() *declick.Engine { return s.declick }

// Tempo returns the current tempo map.
func (s *Session) Tempo() tempo.Map {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.tempo
}

// AddTrack builds a track from desc and adds it to the mix. Clips whose
// material failed to load are reported but do not fail the call.
func (s *Session) AddTrack(desc track.Descriptor) (*track.Mutator, []track.ClipLoadError, error) {
	if desc.ID == "" {
		return nil, nil, ErrEmptyTrackID
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	old := s.tracks.Load()
	if old.find(desc.ID) >= 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateTrack, desc.ID)
	}

	mix, mut, loadErrs, err := track.New(desc, s.loader, s.tempo, s.logger)
	if err != nil {
		return nil, nil, err
	}

	tracks := make([]sessionTrack, len(old.tracks), len(old.tracks)+1)
	copy(tracks, old.tracks)
	tracks = append(tracks, sessionTrack{id: desc.ID, mixer: mix, mutator: mut})
	s.tracks.Store(&trackList{tracks: tracks})

	s.logger.Info("track added", "track", desc.ID, "clips", len(desc.Clips), "load_errors", len(loadErrs))
	return mut, loadErrs, nil
}

// RemoveTrack drops track id from the mix.
func (s *Session) RemoveTrack(id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	old := s.tracks.Load()
	i := old.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	s.tracks.Store(&trackList{tracks: slices.Delete(slices.Clone(old.tracks), i, i+1)})

	s.logger.Info("track removed", "track", id)
	return nil
}

// Track returns the mutator of track id.
func (s *Session) Track(id string) (*track.Mutator, bool) {
	l := s.tracks.Load()
	i := l.find(id)
	if i < 0 {
		return nil, false
	}
	return l.tracks[i].mutator, true
}

// Tracks returns the track ids in mix order.
func (s *Session) Tracks() []string {
	l := s.tracks.Load()
	ids := make([]string, len(l.tracks))
	for i, t := range l.tracks {
		ids[i] = t.id
	}
	return ids
}

// Length returns the end of the last clip on any track, in samples.
func (s *Session) Length() int64 {
	var end int64
	for _, t := range s.tracks.Load().tracks {
		snap := t.mutator.Snapshot()
		for i := range snap.Len() {
			_, e := snap.At(i).Interval()
			end = max(end, e)
		}
	}
	return end
}

// Retune applies m to the session and every track. m must use the session
// sample rate.
func (s *Session) Retune(m tempo.Map) error {
	if m.SampleRate != s.cfg.SampleRate {
		return fmt.Errorf("%w: %d != %d", ErrSampleRateMismatch, m.SampleRate, s.cfg.SampleRate)
	}
	if _, err := tempo.New(m.BPM, m.SampleRate); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tempo = m
	for _, t := range s.tracks.Load().tracks {
		t.mutator.Retune(m)
	}

	s.logger.Info("tempo changed", "bpm", m.BPM)
	return nil
}

// Process renders one block of the whole session into out[0:frames). It
// returns false when nothing was rendered, in which case out holds silence.
//
// The transport latches pending commands, the declick engine advances once,
// every track mixes into out, and the transport moves on while it is playing
// or a fade is still running.
func (s *Session) Process(out *block.Stereo, frames int) bool {
	frames = block.Clamp(frames)
	out.Clear(frames)

	s.transport.Begin(frames)
	s.declick.Process(frames, s.transport)

	audible := false
	for _, t := range s.tracks.Load().tracks {
		if t.mixer.Process(&s.scratch, frames, s.cfg.SampleRate, s.transport, s.declick) {
			out.Add(&s.scratch, 0, frames)
			audible = true
		}
	}

	if s.transport.IsPlaying() || s.declick.IsActive() {
		s.transport.Advance()
	}
	return audible
}
