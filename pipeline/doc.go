// Package pipeline runs the speech translation pipeline.
//
// A run segments the input waveform by speaker, then for every segment
// transcribes, translates and synthesizes in sequence. Segments run
// concurrently up to Config.MaxParallel and results keep segmentation
// order. Stage failures degrade the run instead of failing it:
//
//	p, _ := pipeline.New(pipeline.Config{MaxParallel: 4}, pipeline.Stages{
//		Segmenter:   segmenter,
//		Transcriber: transcriber,
//		Translator:  translator,
//		Synthesizer: synthesizer,
//	}, pipeline.WithRecorder(archiver))
//	resp := p.Process(ctx, pipeline.Request{Audio: w, SourceLang: "en", TargetLang: "es"})
//
// Process never returns an error. A run that finds no speech answers with
// the no_speech_detected sentinel, and a run that panics or is cancelled
// answers with the error sentinel.
package pipeline
