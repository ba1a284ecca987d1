// Package journal persists a diagnostic record of orchestration sessions in
// SQLite: session lifecycle, every executed command, and every published
// transition. The journal is append-only and write-failures are swallowed by
// callers; it exists so past sessions can be inspected from the CLI, never to
// reconstruct orchestrator state.
package journal
