// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/timeline/block"
	"github.com/ik5/timeline/formats/wav"
)

// Bounce renders frames of the session from its current transport state and
// writes them to w as a 16-bit stereo WAV file. It drives Process itself, so it
// must not run while an audio thread is processing the same session.
func (s *Session) Bounce(w io.WriteSeeker, frames int64) error {
	start := time.Now()
	wr := wav.NewWriter(w, s.cfg.SampleRate)

	var buf block.Stereo
	for done := int64(0); done < frames; {
		n := int(min(int64(s.cfg.BlockSize), frames-done))
		s.Process(&buf, n)
		if err := wr.Write(buf.Left[:n], buf.Right[:n]); err != nil {
			return fmt.Errorf("bounce at frame %d: %w", done, err)
		}
		done += int64(n)
	}

	if err := wr.Close(); err != nil {
		return fmt.Errorf("bounce: %w", err)
	}

	s.logger.Info("bounced",
		"frames", frames,
		"seconds", float64(frames)/float64(s.cfg.SampleRate),
		"elapsed", time.Since(start))
	return nil
}
