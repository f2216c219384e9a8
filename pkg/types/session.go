// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Turn is one conversation exchange recorded in the session.
type Turn struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Session is the explicit session-scoped state threaded through the flows:
// conversation history plus the "knowledge base ready" flag flipped by a
// successful indexing run. It is persisted between invocations and cleared
// by reset together with the artifacts. Per prd007-session R1.1-R1.4.
type Session struct {
	// KBReady reports whether the last indexing run succeeded, so the
	// analysis flow can tell the user to discover first.
	KBReady bool `yaml:"kb_ready"`

	// Turns is the conversation history in chronological order.
	Turns []Turn `yaml:"turns,omitempty"`
}

// Append records one exchange.
func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}
