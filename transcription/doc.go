// Package transcription turns speech into text.
//
// A Transcriber wraps a Provider and never fails: silent input returns ""
// without a backend call, and backend errors return "" with a degraded
// outcome so the pipeline can skip the segment.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
package transcription
