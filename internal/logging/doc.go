// Package logging builds slog loggers with console and JSON handlers and
// provides standardized attribute helpers and context field propagation
// shared across tutorsync components.
package logging
