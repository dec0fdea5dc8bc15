package core

import "encoding/json"

// Usage tracks token accounting for a turn. Fields merge additively across
// every MessageStart/MessageDelta event the provider sends during a single
// streamed turn.
type Usage struct {
	InputTokens              int
	OutputTokens             int
	CacheCreationInputTokens int
	CacheReadInputTokens     int
}

// Add merges another Usage into this one additively.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// StopReason explains why the model stopped generating.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopToolUse      StopReason = "tool_use"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
)

// CompletionRequest is the canonical request shape every provider adapter
// consumes, built fresh each iteration of the agent loop from the running
// conversation plus the registered tool definitions.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature *float64
	Stream      bool
}

// StreamEventType discriminates StreamEvent's tagged union.
type StreamEventType string

const (
	EventMessageStart      StreamEventType = "message_start"
	EventContentBlockStart StreamEventType = "content_block_start"
	EventContentBlockDelta StreamEventType = "content_block_delta"
	EventContentBlockStop  StreamEventType = "content_block_stop"
	EventMessageDelta      StreamEventType = "message_delta"
	EventMessageStop       StreamEventType = "message_stop"
)

// DeltaType discriminates ContentDelta's tagged union.
type DeltaType string

const (
	DeltaText        DeltaType = "text_delta"
	DeltaThinking    DeltaType = "thinking_delta"
	DeltaSignature   DeltaType = "signature_delta"
	DeltaInputJSON   DeltaType = "input_json_delta"
)

// ContentDelta is an incremental update to one in-progress content block.
type ContentDelta struct {
	Type DeltaType

	Text            string
	Thinking        string
	Signature       string
	PartialJSON     string
}

// StreamEvent is one item in the raw streaming sequence a provider adapter
// emits. The accumulator consumes these to build finished Messages; the
// agent loop also forwards every raw event to the UI bus unchanged so the
// front end can render token-by-token.
type StreamEvent struct {
	Type StreamEventType

	// EventMessageStart
	Message *Message
	Usage   *Usage

	// EventContentBlockStart / EventContentBlockDelta / EventContentBlockStop
	Index        int
	ContentBlock *ContentBlock
	Delta        *ContentDelta

	// EventMessageDelta
	StopReason *StopReason

	// Raw carries the untouched wire payload for adapters/tests that want
	// to inspect it without re-deriving it from the typed fields.
	Raw json.RawMessage
}
