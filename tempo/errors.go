// SPDX-License-Identifier: EPL-2.0

package tempo

import "errors"

var (
	ErrInvalidBPM        = errors.New("tempo must be a positive number of beats per minute")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)
