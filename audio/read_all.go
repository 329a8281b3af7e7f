// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains src and returns every interleaved sample it produced.
// bufferSize is the chunk size used per read and is rounded down to a whole
// number of frames.
func ReadAll(src Source, bufferSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = 4096 * channels
	}

	out := make([]float32, 0, bufferSize*4)
	buf := make([]float32, bufferSize)
	for empty := 0; empty < maxEmptyReads; {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			empty = 0
		} else {
			empty++
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
	}

	return out, nil
}
