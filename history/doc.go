// Package history persists translation results per user.
//
// Archiver is the Recorder the pipeline writes to. For each record it
// uploads the synthesized audio to blob storage at {user_id}/{uuid}.wav,
// inserts the row through a Repository (SQLite via gorm, or Supabase
// PostgREST) and publishes a translation.completed event. Upload and
// publish failures are logged; only the insert can fail a Record call.
package history
