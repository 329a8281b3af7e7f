// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis clip material with
// github.com/jfreymuth/oggvorbis.
package vorbis
