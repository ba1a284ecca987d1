// Package playback wraps the external video player behind a verified
// actuator. Pause and play requests are driven through an ordered list of
// actuation strategies, each followed by a bounded polling loop that demands
// agreement between the player-reported flag and the expected outcome of the
// issued command. Polling never leaks out of this package: callers only see
// success, or an ActuationError after every strategy is exhausted.
package playback
