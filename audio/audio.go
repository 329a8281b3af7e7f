// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	BufSize() int
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps file extensions (without the dot, case-insensitive) to
// decoders. It is safe for concurrent use.
type Registry struct {
	codecs map[string]Decoder
	mtx    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

// Register binds d to every extension given.
func (r *Registry) Register(d Decoder, exts ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range exts {
		r.codecs[normalizeExt(ext)] = d
	}
}

// Get returns the decoder for an extension such as "wav" or ".WAV".
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]
	return d, ok
}

// Lookup returns the decoder for the extension of a file name.
func (r *Registry) Lookup(name string) (Decoder, bool) {
	return r.Get(path.Ext(name))
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
