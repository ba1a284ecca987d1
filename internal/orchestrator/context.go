package orchestrator

import (
	"tutorsync/internal/message"
	"tutorsync/internal/playback"
)

// PlaybackState is the playback dimension of the orchestrator state machine.
type PlaybackState string

const (
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	// StateTransitioning is held only while a pause or resume command is
	// running.
	StateTransitioning PlaybackState = "transitioning"
)

// Context is the only externally observable orchestrator state: the cached
// playback snapshot, the agent dimension derived from the message list, the
// ordered messages themselves, and the last recorded error. A Context is
// never mutated after publication; every transition produces a fresh value,
// so observers may compare pointers to detect change.
type Context struct {
	Playback             playback.Snapshot
	State                PlaybackState
	ActiveAgentType      message.AgentType
	CurrentUnactivatedID string
	Messages             []message.Message
	LastErr              error
}
