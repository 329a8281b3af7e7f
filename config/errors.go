// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidBlockSize  = errors.New("invalid block size")
	ErrInvalidFade       = errors.New("invalid declick fade")
)
