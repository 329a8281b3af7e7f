// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III clip material with
// github.com/hajimehoshi/go-mp3. Output is always stereo; mono files are
// duplicated by the decoder itself.
package mp3
