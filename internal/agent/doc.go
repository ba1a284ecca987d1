// Package agent defines the content service boundary that produces tutoring
// prompt text and generated responses. The orchestrator only depends on the
// ContentService interface; the template backend serves offline and test use
// while the llm subpackage talks to a remote chat-completion API.
package agent
