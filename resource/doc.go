// SPDX-License-Identifier: EPL-2.0

// Package resource turns clip source references into stereo PCM.
//
// A Loader opens the source from an fs.FS, picks a decoder by file extension,
// converts the stream to the session sample rate and folds it to stereo:
//
//	loader := resource.NewLoader(os.DirFS("media"), nil, 48000, logger)
//	pcm, err := loader.Load("drums.wav")
//
// Decoded material is cached until Evict is called. Loading never happens on
// the audio thread.
package resource
