// Package logger wraps zerolog with the structured-field API used across
// linguacast: every component logs through a *Logger tagged with its name.
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	log := logger.Get("pipeline")
//	log.Info("segment translated", logger.Fields("speaker", label))
package logger
