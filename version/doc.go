// Package version exposes build metadata for the /version endpoint and
// startup logs. Values are injected with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/linguacast/version.Version=1.2.0" ./cmd/linguacast
package version
