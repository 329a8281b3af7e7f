// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF clip material through
// github.com/go-audio/aiff. Samples are normalized to [-1, 1) according to
// the file's bit depth.
package aiff
