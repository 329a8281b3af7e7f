// SPDX-License-Identifier: EPL-2.0

// Package timeline renders a multi-track audio timeline block by block, with
// click-free transitions across play/stop, seeks and loop jumps.
//
// # Architecture
//
// A Session owns one transport.Transport, one declick.Engine and any number of
// tracks. Each track is split in two by track.New:
//
//   - a track.Mutator, used by control threads to edit the clip list. Every
//     structural edit publishes a new immutable track.Snapshot through an
//     atomic pointer.
//   - a track.Mixer, used by the audio thread. It loads the snapshot once per
//     block, renders the clips that intersect the block and applies the
//     declick curves.
//
// Session.Process is the audio-thread entry point. It never allocates, blocks
// or takes a lock:
//
//	out := new(block.Stereo)
//	for {
//		s.Process(out, 512)
//		// hand out.Left[:512] and out.Right[:512] to the device
//	}
//
// # Clip material
//
// Clip sources are resolved by a clip.Loader. resource.Loader is the bundled
// one: it decodes WAV, MP3, Ogg Vorbis and AIFF from an fs.FS, converts to the
// session sample rate and caches the result:
//
//	loader := resource.NewLoader(os.DirFS("media"), nil, cfg.SampleRate, logger)
//	s, err := timeline.NewSession(cfg, loader, logger)
//
// A clip whose material fails to load is still added and plays silence; the
// failure is returned to the caller as a track.ClipLoadError.
//
// # Offline rendering
//
// Bounce renders a session to a 16-bit stereo WAV file through the same code
// path used for playback.
package timeline
