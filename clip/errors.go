// SPDX-License-Identifier: EPL-2.0

package clip

import "errors"

var (
	ErrEmptyID       = errors.New("clip id is empty")
	ErrNegativeStart = errors.New("clip starts before the timeline origin")
	ErrInvalidOffset = errors.New("clip source offset is negative")
	ErrNoLoader      = errors.New("clip has no resource loader")
)
