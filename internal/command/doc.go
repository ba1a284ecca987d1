// Package command serializes every playback and agent intent into a single
// ordered stream. Exactly one command runs at a time; failures are retried
// with exponential back-off by requeueing at the front of the queue, so a
// struggling pause always resolves before a later intent begins. Commands
// that exhaust their retry budget are dead-lettered and never retried again.
package command
