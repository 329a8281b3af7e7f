// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/timeline/tempo"
	"github.com/ik5/timeline/track"
)

// Project is the persisted form of a session's tracks.
type Project struct {
	BPM    float64            `json:"bpm"`
	Tracks []track.Descriptor `json:"tracks"`
}

// LoadProject decodes a JSON project. Unknown fields are rejected.
func LoadProject(r io.Reader) (Project, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var p Project
	if err := dec.Decode(&p); err != nil {
		return Project{}, fmt.Errorf("decoding project: %w", err)
	}
	return p, nil
}

// Save writes p as indented JSON.
func (p Project) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	return nil
}

// Open retunes the session to p.BPM, when set, and adds every track of p.
// A track that fails structurally is skipped and its error joined into the
// returned error; clip load errors of the added tracks are returned as data.
func (s *Session) Open(p Project) ([]track.ClipLoadError, error) {
	if p.BPM != 0 {
		m, err := tempo.New(p.BPM, s.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("project tempo: %w", err)
		}
		if err := s.Retune(m); err != nil {
			return nil, err
		}
	}

	var loadErrs []track.ClipLoadError
	var errs []error
	for _, desc := range p.Tracks {
		_, trackErrs, err := s.AddTrack(desc)
		if err != nil {
			errs = append(errs, fmt.Errorf("track %q: %w", desc.ID, err))
			continue
		}
		loadErrs = append(loadErrs, trackErrs...)
	}
	return loadErrs, errors.Join(errs...)
}

// Project returns the current state of the session.
func (s *Session) Project() Project {
	p := Project{BPM: s.Tempo().BPM}
	for _, t := range s.tracks.Load().tracks {
		p.Tracks = append(p.Tracks, t.mutator.Descriptor())
	}
	return p
}
