// Package llm wraps an OpenRouter-compatible chat completion API behind a
// small client with bounded retries. Transient failures (timeouts, rate
// limits, server errors) are retried with exponential back-off honoring
// Retry-After; everything else fails fast.
package llm
