// SPDX-License-Identifier: EPL-2.0

package timeline

import "errors"

var (
	ErrDuplicateTrack     = errors.New("track id already exists")
	ErrTrackNotFound      = errors.New("track not found")
	ErrEmptyTrackID       = errors.New("track id is empty")
	ErrSampleRateMismatch = errors.New("tempo map sample rate differs from the session")
)
