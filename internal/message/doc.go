// Package message defines the chat-visible message model and the pure list
// operations that govern message lifecycle.
//
// Three invariants hold across every operation:
//   - at most one message is unactivated at any time
//   - an unactivated agent prompt always has exactly one linked unactivated
//     system notice, and the two transition or get removed together
//   - activated, rejected, and permanent messages are never removed
//
// All operations are pure: they take a message list and return a new one,
// reporting whether anything changed so callers can skip redundant snapshot
// publication.
package message
