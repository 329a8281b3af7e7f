// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/timeline/utils"
)

// Writer streams deinterleaved stereo blocks into a 16-bit PCM WAV file.
// The RIFF sizes are patched on Close, which is why w must be seekable.
type Writer struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWriter returns a Writer emitting 16-bit stereo at sampleRate into w.
func NewWriter(w io.WriteSeeker, sampleRate int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, 16, 2, wavePCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			Data:           make([]int, 0, 4096),
			SourceBitDepth: 16,
		},
	}
}

// Write appends one block. left and right must have the same length.
func (w *Writer) Write(left, right []float32) error {
	if len(left) != len(right) {
		return ErrChannelMismatch
	}

	w.buf.Data = w.buf.Data[:0]
	for i := range left {
		w.buf.Data = append(w.buf.Data,
			int(utils.Float32ToInt16(left[i])),
			int(utils.Float32ToInt16(right[i])))
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("writing wav frames: %w", err)
	}
	return nil
}

// Close finalizes the headers. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteStereo16 writes a complete stereo 16-bit PCM WAV file.
func WriteStereo16(w io.WriteSeeker, sampleRate int, left, right []float32) error {
	wr := NewWriter(w, sampleRate)
	if err := wr.Write(left, right); err != nil {
		return err
	}
	return wr.Close()
}
