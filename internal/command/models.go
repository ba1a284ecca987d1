package command

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"tutorsync/internal/message"
)

// Kind identifies a queued intent.
type Kind string

const (
	KindRequestPause  Kind = "REQUEST_PAUSE"
	KindRequestResume Kind = "REQUEST_RESUME"
	KindManualPause   Kind = "MANUAL_PAUSE"
	KindShowAgent     Kind = "SHOW_AGENT"
	KindAcceptAgent   Kind = "ACCEPT_AGENT"
	KindRejectAgent   Kind = "REJECT_AGENT"
)

var allKinds = []Kind{
	KindRequestPause,
	KindRequestResume,
	KindManualPause,
	KindShowAgent,
	KindAcceptAgent,
	KindRejectAgent,
}

var kindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(allKinds))
	for _, kind := range allKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// AllKinds returns the ordered list of known command kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(allKinds))
	copy(cp, allKinds)
	return cp
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := kindSet[normalized]
	return normalized, ok
}

// Status represents the lifecycle of a queued command.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Payload carries the kind-specific data of a command.
type Payload struct {
	// AgentType is set for SHOW_AGENT.
	AgentType message.AgentType
	// AtTime is the playback position for MANUAL_PAUSE.
	AtTime float64
	// TargetID is the prompt message id for ACCEPT_AGENT / REJECT_AGENT.
	TargetID string
}

// Command is a single queued intent. It is created on dispatch, mutated only
// by the Queue, and discarded after reaching a terminal status.
type Command struct {
	ID          string
	Kind        Kind
	Payload     Payload
	Attempts    int
	MaxAttempts int
	Status      Status
	EnqueuedAt  time.Time
	LastErr     error
}

// New builds a pending command with a fresh identifier.
func New(kind Kind, payload Payload, maxAttempts int) *Command {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Command{
		ID:          uuid.NewString(),
		Kind:        kind,
		Payload:     payload,
		MaxAttempts: maxAttempts,
		Status:      StatusPending,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Terminal reports whether the command has finished for good.
func (c *Command) Terminal() bool {
	return c.Status == StatusDone || c.Status == StatusFailed
}
