// Package notifications delivers session events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The Service interface covers the session milestones and failure
// events so orchestration code can emit consistent, user-friendly messages
// without duplicating HTTP glue.
//
// Extend this package if you need alternative transports; all orchestration
// code depends only on the simple Service interface.
package notifications
