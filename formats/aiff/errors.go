// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the data has no FORM/AIFF header.
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedAiffLayout covers missing COMM data and bit depths other
	// than 8, 16, 24 or 32.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
