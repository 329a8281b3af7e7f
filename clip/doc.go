// SPDX-License-Identifier: EPL-2.0

// Package clip describes clips and renders them.
//
// A Descriptor is the persisted form of a clip: its source, its place on the
// timeline in beats, an optional length and source offset, and a gain. A
// Renderer is the runtime counterpart built from a descriptor, a Loader and a
// tempo map. Render is safe to call from the audio thread while the control
// thread retunes, regains or reloads the clip.
package clip
