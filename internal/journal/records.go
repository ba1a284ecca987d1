package journal

import (
	"context"
	"time"
)

// Session is one recorded orchestration run against a lecture video.
type Session struct {
	ID           string
	CourseTitle  string
	LectureTitle string
	StartedAt    time.Time
	EndedAt      time.Time
	Ended        bool
}

// CommandRecord captures one executed command, terminal or retried.
type CommandRecord struct {
	SessionID  string
	CommandID  string
	Kind       string
	Attempts   int
	Status     string
	Error      string
	RecordedAt time.Time
}

// TransitionRecord captures one published context snapshot.
type TransitionRecord struct {
	SessionID     string
	PlaybackState string
	MessageCount  int
	UnactivatedID string
	LastError     string
	RecordedAt    time.Time
}

// Health summarizes journal contents for diagnostics.
type Health struct {
	Path         string
	Sessions     int
	Commands     int
	Transitions  int
	DeadLettered int
}

// Recorder is the write surface the orchestrator depends on. Recording is
// diagnostics only: a write failure must never fail the command that
// triggered it.
type Recorder interface {
	RecordCommand(ctx context.Context, rec CommandRecord) error
	RecordTransition(ctx context.Context, rec TransitionRecord) error
}
