// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio integer PCM readers to float sources. It is
// shared by the WAV and AIFF decoders.
package intpcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the part of the go-audio decoders used here.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer frames read from a Reader into float32 samples.
type Source struct {
	dec        Reader
	format     *goaudio.Format
	sampleRate int
	channels   int
	scale      float32
	buf        *goaudio.IntBuffer
	done       bool
}

// New wraps dec. bitDepth must be 8, 16, 24 or 32.
func New(dec Reader, format *goaudio.Format, bitDepth int) (*Source, error) {
	scale, err := Scale(bitDepth)
	if err != nil {
		return nil, err
	}
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid PCM format %+v", format)
	}

	return &Source{
		dec:        dec,
		format:     format,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      scale,
		buf:        &goaudio.IntBuffer{Format: format, Data: make([]int, 4096)},
	}, nil
}

// Scale returns the factor mapping a signed integer sample of bitDepth bits to
// [-1, 1).
func Scale(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return 1 / float32(int64(1)<<(bitDepth-1)), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return cap(s.buf.Data) }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("reading PCM: %w", err)
	}
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}

	// go-audio signals the end with a short or empty read.
	if n < len(dst) || err != nil {
		s.done = true
		return n, io.EOF
	}
	return n, nil
}
