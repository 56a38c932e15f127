// Package synthesis renders text as speech.
//
// A Synthesizer is Available (backed by a Provider such as the SpeechT5
// sidecar) or Unavailable. Blank text, an unavailable capability and backend
// failures all yield an empty waveform; successful output is normalized.
//
// # Backends
//
//   - synthesis/speecht5: SpeechT5 + HiFi-GAN HTTP sidecar
package synthesis
