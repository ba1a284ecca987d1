// Package orchestrator is the video-synchronized interaction state machine.
//
// It owns the playback actuator, the serialized command queue, and the chat
// message list. UI layers interact exclusively through the dispatch methods,
// which enqueue and return immediately, and through Subscribe/GetContext,
// which expose immutable Context snapshots replaced wholesale on every
// transition. Only the queue's drain goroutine initiates transitions; this
// single-writer discipline is what keeps rapid play/pause/button events free
// of duplicate prompts and desynced playback state.
package orchestrator
