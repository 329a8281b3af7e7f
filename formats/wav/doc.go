// SPDX-License-Identifier: EPL-2.0

// Package wav decodes clip material from WAV files and writes rendered
// timelines back out, both through github.com/go-audio/wav.
//
// The decoder accepts integer PCM at 8, 16, 24 or 32 bits with any channel
// count and sample rate:
//
//	src, err := wav.Decoder{}.Decode(file)
//
// Rendered output is always 16-bit stereo:
//
//	w := wav.NewWriter(file, 48000)
//	w.Write(block.Left[:n], block.Right[:n])
//	w.Close()
package wav
