// Package storage stores synthesized audio blobs behind pluggable backends.
//
// # Backends
//
//   - storage/local: filesystem, for development and tests
//   - storage/s3: Amazon S3 and S3-compatible services
//   - storage/supabase: Supabase Storage REST API
//
// Backends register themselves in init, so the application imports the
// ones it may select:
//
//	import _ "github.com/kbukum/linguacast/storage/supabase"
//
//	storage:
//	  enabled: true
//	  provider: supabase
//	  bucket: translations-audio
package storage
