// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/ik5/timeline/resource"
)

// ErrMissing is returned by Loader for sources it does not hold.
var ErrMissing = errors.New("test source not found")

// Loader is an in-memory clip loader keyed by source name.
type Loader struct {
	mtx   sync.Mutex
	pcm   map[string]*resource.PCM
	calls map[string]int
}

func NewLoader() *Loader {
	return &Loader{
		pcm:   make(map[string]*resource.PCM),
		calls: make(map[string]int),
	}
}

// Put makes source resolvable. A nil pcm removes it again.
func (l *Loader) Put(source string, pcm *resource.PCM) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if pcm == nil {
		delete(l.pcm, source)
		return
	}
	l.pcm[source] = pcm
}

func (l *Loader) Load(source string) (*resource.PCM, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.calls[source]++
	pcm, ok := l.pcm[source]
	if !ok {
		return nil, ErrMissing
	}
	return pcm, nil
}

// Calls returns how often source was requested.
func (l *Loader) Calls(source string) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.calls[source]
}

// CountPCM returns frames of material where frame i holds i+1 on the left
// channel and -(i+1) on the right, which makes every rendered sample
// traceable to its source frame.
func CountPCM(sampleRate, frames int) *resource.PCM {
	pcm := &resource.PCM{
		SampleRate: sampleRate,
		Left:       make([]float32, frames),
		Right:      make([]float32, frames),
	}
	for i := range frames {
		pcm.Left[i] = float32(i + 1)
		pcm.Right[i] = -float32(i + 1)
	}
	return pcm
}

// ConstPCM returns frames of material holding v on both channels.
func ConstPCM(sampleRate, frames int, v float32) *resource.PCM {
	pcm := &resource.PCM{
		SampleRate: sampleRate,
		Left:       make([]float32, frames),
		Right:      make([]float32, frames),
	}
	for i := range frames {
		pcm.Left[i] = v
		pcm.Right[i] = v
	}
	return pcm
}
