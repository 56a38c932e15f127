// Package component defines lifecycle-managed infrastructure (database,
// redis, kafka, storage, HTTP server) and a registry that starts them in
// registration order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
package component
