// Package agent owns the turn-by-turn conversation loop: build a request
// from memory, stream a completion, run any requested tools, and repeat
// until the model stops asking for tools or the iteration budget runs out.
// Restructured into Go's explicit-error-return idiom, the way
// internal/llm/loop.go restructures the equivalent shape.
package agent

import "github.com/xonecas/symb/internal/core"

// Memory is the conversation state owned solely by the loop: an optional
// system prompt plus the append-only message history. No other component
// mutates it.
type Memory struct {
	SystemPrompt string
	Messages     []core.Message
}

// NewMemory returns an empty Memory carrying systemPrompt.
func NewMemory(systemPrompt string) *Memory {
	return &Memory{SystemPrompt: systemPrompt}
}

// Append adds msg to the end of the conversation.
func (m *Memory) Append(msg core.Message) {
	m.Messages = append(m.Messages, msg)
}

// AppendAll adds every message in msgs, in order.
func (m *Memory) AppendAll(msgs []core.Message) {
	m.Messages = append(m.Messages, msgs...)
}

// Snapshot returns a copy of the current message slice, safe for a caller
// to hold onto after further Appends.
func (m *Memory) Snapshot() []core.Message {
	out := make([]core.Message, len(m.Messages))
	copy(out, m.Messages)
	return out
}
