// SPDX-License-Identifier: EPL-2.0

package track

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID = errors.New("clip id already exists")
	ErrNotFound    = errors.New("clip not found")
)

// ClipLoadError reports a clip whose material could not be loaded. The clip
// is still part of the track and renders silence until it is reloaded.
type ClipLoadError struct {
	ClipID string
	Err    error
}

func (e *ClipLoadError) Error() string {
	return fmt.Sprintf("clip %q: %v", e.ClipID, e.Err)
}

func (e *ClipLoadError) Unwrap() error { return e.Err }
