package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID is the standardized structured logging key for session identifiers.
	FieldSessionID = "session_id"
	// FieldCommandID is the standardized structured logging key for queued command identifiers.
	FieldCommandID = "command_id"
	// FieldCommandKind is the standardized structured logging key for command kinds.
	FieldCommandKind = "command_kind"
	// FieldAgentType is the standardized structured logging key for agent prompt types.
	FieldAgentType = "agent_type"
	// FieldEventType is the standardized structured logging key for machine-parsable event labels.
	FieldEventType = "event_type"
	// FieldErrorHint suggests an operator action when something fails.
	FieldErrorHint = "error_hint"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
	commandIDKey
	commandKindKey
)

// WithSessionID stamps a session identifier onto the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts a session identifier when present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithCommand stamps a command identifier and kind onto the context.
func WithCommand(ctx context.Context, id, kind string) context.Context {
	if id != "" {
		ctx = context.WithValue(ctx, commandIDKey, id)
	}
	if kind != "" {
		ctx = context.WithValue(ctx, commandKindKey, kind)
	}
	return ctx
}

// CommandFromContext extracts the command identifier and kind when present.
func CommandFromContext(ctx context.Context) (id, kind string, ok bool) {
	id, _ = ctx.Value(commandIDKey).(string)
	kind, _ = ctx.Value(commandKindKey).(string)
	return id, kind, id != "" || kind != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if id, kind, ok := CommandFromContext(ctx); ok {
		if id != "" {
			fields = append(fields, slog.String(FieldCommandID, id))
		}
		if kind != "" {
			fields = append(fields, slog.String(FieldCommandKind, kind))
		}
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
