// SPDX-License-Identifier: EPL-2.0

package clip

import (
	"time"

	"github.com/ik5/timeline/resource"
	"github.com/ik5/timeline/tempo"
)

// Descriptor is the persisted state of one clip.
type Descriptor struct {
	ID     string `json:"id"`
	Source string `json:"source"`

	// TimelineStart is where the clip begins, in beats.
	TimelineStart tempo.Beats `json:"start"`
	// Duration is the clip length. Zero plays the material to its end.
	Duration time.Duration `json:"duration,omitempty"`
	// SourceOffset skips into the material before the first rendered frame.
	SourceOffset time.Duration `json:"offset,omitempty"`
	GainDB       float64       `json:"gain_db,omitempty"`
}

// Validate reports structural problems that make d unusable.
func (d Descriptor) Validate() error {
	switch {
	case d.ID == "":
		return ErrEmptyID
	case d.TimelineStart < 0:
		return ErrNegativeStart
	case d.SourceOffset < 0:
		return ErrInvalidOffset
	}
	return nil
}

// Loader resolves a source reference to decoded material.
type Loader interface {
	Load(source string) (*resource.PCM, error)
}
