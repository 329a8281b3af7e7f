// SPDX-License-Identifier: EPL-2.0

// Package audio is the decode pipeline that turns clip source files into
// material the timeline can render.
//
// It contains:
//   - Source, the streaming interface every decoder returns
//   - Registry, decoders keyed by file extension
//   - Resampler, cubic sample rate conversion to the session rate
//   - StereoMixer, folding any channel count to two channels
//   - ReadAll, draining a Source into memory
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1.0, 1.0]. ReadSamples returns the
// number of float32 values written, and io.EOF once the stream is finished.
//
// # Pipeline
//
// The resource loader chains the pieces like this:
//
//	dec, ok := registry.Lookup("clips/kick.ogg")
//	src, _ := dec.Decode(file)
//	stereo := audio.NewStereoMixer(audio.NewResampler(src, 48000))
//	samples, err := audio.ReadAll(stereo, 4096)
//
// None of this runs on the real-time thread. Decoding, resampling and channel
// folding happen when a clip is added, and the result is shared read-only.
package audio
