// Package diarization splits a waveform into per-speaker segments.
//
// A Segmenter is either Available, backed by a Provider such as the pyannote
// sidecar, or Unavailable. Both variants always return at least one segment:
// an unavailable or failing backend yields a single default_speaker segment
// holding the input unchanged, tagged as a degraded outcome.
//
// # Backends
//
//   - diarization/pyannote: pyannote.audio HTTP sidecar
//
// # Usage
//
//	seg := diarization.Detect(ctx, pyannote.NewProvider(cfg), diarization.WithLogger(log))
//	for _, s := range seg.Segment(ctx, waveform) {
//		fmt.Println(s.Speaker, s.Audio.Duration())
//	}
package diarization
