// SPDX-License-Identifier: EPL-2.0

// Package track mixes the clips of one track and keeps its clip list
// consistent under concurrent edits.
//
// New splits a track into two halves that share one atomically published
// Snapshot:
//
//   - the Mutator is used by control threads to add, remove, rename, move and
//     retune clips. Every structural change builds a new Snapshot and swaps
//     it in; snapshots are never modified after publication.
//   - the Mixer is used by the audio thread. Process loads the current
//     snapshot once, renders the clips that intersect the block and applies
//     the loop, seek and start/stop curves of a shared declick.Engine, in
//     that order.
//
// Structural errors (ErrDuplicateID, ErrNotFound) are returned to the caller.
// Material that fails to load is reported as a ClipLoadError while the clip is
// still inserted and renders silence.
package track
