// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ik5/timeline/audio"
	"github.com/ik5/timeline/formats/internal/intpcm"
)

// wavePCM is the WAVE_FORMAT_PCM tag.
const wavePCM = 1

type Decoder struct{}

// Decode parses the RIFF headers and returns a source positioned at the first
// PCM frame. Readers that cannot seek are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavePCM {
		return nil, ErrOnlyPCMSupported
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	src, err := intpcm.New(dec, dec.Format(), int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	return src, nil
}
