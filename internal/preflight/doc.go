// Package preflight provides readiness checks for the filesystem paths and
// external services tutorsync depends on.
//
// The CLI "config validate" command runs RunAll to report journal and log
// directory health and, when the llm provider is configured, content API
// reachability. Each check is gated by its config toggle; disabled features
// are skipped.
package preflight
