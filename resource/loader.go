// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/timeline/audio"
	"github.com/ik5/timeline/formats/aiff"
	"github.com/ik5/timeline/formats/mp3"
	"github.com/ik5/timeline/formats/vorbis"
	"github.com/ik5/timeline/formats/wav"
)

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(wav.Decoder{}, "wav", "wave")
	reg.Register(mp3.Decoder{}, "mp3")
	reg.Register(vorbis.Decoder{}, "ogg", "oga")
	reg.Register(aiff.Decoder{}, "aif", "aiff")
	return reg
}

// Loader decodes sources from a file system into stereo PCM at a fixed sample
// rate and caches the result by source name. It runs on control threads only.
type Loader struct {
	fsys       fs.FS
	reg        *audio.Registry
	sampleRate int
	logger     *slog.Logger

	mtx   sync.Mutex
	cache map[string]*PCM
}

// NewLoader creates a loader. A nil reg uses DefaultRegistry and a nil logger
// uses slog.Default.
func NewLoader(fsys fs.FS, reg *audio.Registry, sampleRate int, logger *slog.Logger) *Loader {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		fsys:       fsys,
		reg:        reg,
		sampleRate: sampleRate,
		logger:     logger.With("component", "resource"),
		cache:      make(map[string]*PCM),
	}
}

// Load returns the PCM for source, decoding it on first use.
func (l *Loader) Load(source string) (*PCM, error) {
	l.mtx.Lock()
	pcm, ok := l.cache[source]
	l.mtx.Unlock()
	if ok {
		return pcm, nil
	}

	start := time.Now()
	pcm, err := l.decode(source)
	if err != nil {
		l.logger.Warn("load failed", "source", source, "error", err)
		return nil, err
	}

	l.mtx.Lock()
	if cached, ok := l.cache[source]; ok {
		pcm = cached
	} else {
		l.cache[source] = pcm
	}
	l.mtx.Unlock()

	l.logger.Debug("loaded",
		"source", source,
		"frames", pcm.Frames(),
		"elapsed", time.Since(start))
	return pcm, nil
}

// Evict drops source from the cache so the next Load decodes it again.
func (l *Loader) Evict(source string) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	delete(l.cache, source)
}

func (l *Loader) decode(source string) (*PCM, error) {
	dec, ok := l.reg.Lookup(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}

	f, err := l.fsys.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", source, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}

	if src.SampleRate() != l.sampleRate {
		l.logger.Debug("resampling",
			"source", source,
			"from", src.SampleRate(),
			"to", l.sampleRate)
		src = audio.NewResampler(src, l.sampleRate)
	}
	src = audio.NewStereoMixer(src)
	defer src.Close()

	samples, err := audio.ReadAll(src, src.BufSize())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, source)
	}

	return deinterleave(samples, l.sampleRate), nil
}
