// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrBadTestData is returned by TextDecoder for malformed input.
var ErrBadTestData = errors.New("malformed test audio data")

// TextDecoder decodes a tiny text format used to fake audio files in an
// fstest.MapFS: "rate channels" on the first line, then one sample per
// whitespace separated field, interleaved.
//
//	48000 2
//	0.5 -0.5 0.25 -0.25
type TextDecoder struct{}

// Decode returns a *MockSource holding the parsed samples. The return type is
// kept concrete; callers adapt it to their Decoder interface.
func (TextDecoder) Decode(r io.Reader) (*MockSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	header, body, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, ErrBadTestData
	}
	rate, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, ErrBadTestData
	}
	channels, err := strconv.Atoi(fields[1])
	if err != nil || channels <= 0 {
		return nil, ErrBadTestData
	}

	var samples []float32
	for _, f := range strings.Fields(body) {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, ErrBadTestData
		}
		samples = append(samples, float32(v))
	}

	frames := len(samples) / channels
	return NewMockSource(rate, channels, frames, func(sample, channel int) float32 {
		return samples[sample*channels+channel]
	}), nil
}
