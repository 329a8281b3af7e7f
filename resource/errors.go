// SPDX-License-Identifier: EPL-2.0

package resource

import "errors"

var (
	// ErrUnsupportedFormat is returned when no decoder is registered for the
	// source's extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrEmptySource is returned when a source decodes to zero frames.
	ErrEmptySource = errors.New("audio source contains no frames")
)
