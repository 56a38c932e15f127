// Package audio holds the Waveform value and the WAV codec used at the edges
// of the pipeline.
//
// Decode accepts RIFF/WAVE buffers with integer PCM (8, 16, 24 or 32 bit) or
// 32-bit IEEE float samples, downmixes to mono and normalizes to [-1, 1].
// Encode always writes mono 32-bit float WAV.
//
//	w, err := audio.DecodeOrEmpty(frame)
//	if err != nil {
//		log.Warn("bad frame", logger.ErrorFields("decode", err))
//	}
//	w = audio.Resample(w, 16000)
//	data, _ := audio.Encode(w)
package audio
