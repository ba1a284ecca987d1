// Package textutil provides small text helpers for filename sanitization and
// table rendering: session labels become safe journal file names, and long
// chat messages are truncated for transcript display.
package textutil
