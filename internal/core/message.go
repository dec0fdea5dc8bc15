// Package core holds the canonical, provider-agnostic message and
// streaming model the rest of the agent is built on. Provider adapters
// translate to and from this shape; nothing outside internal/provider
// should ever see a wire-specific type.
package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleTool carries ToolResult blocks back to the model. Some wire
	// families synthesize this as a user message (Gemini, Messages); that
	// reshaping happens in the adapter, not here.
	RoleTool Role = "tool"
)

// BlockType discriminates ContentBlock's tagged union.
type BlockType string

const (
	BlockText              BlockType = "text"
	BlockThinking          BlockType = "thinking"
	BlockRedactedThinking   BlockType = "redacted_thinking"
	BlockToolUse           BlockType = "tool_use"
	BlockToolResult        BlockType = "tool_result"
	BlockImage             BlockType = "image"
)

// ImageSource describes inline image bytes carried in an Image block.
type ImageSource struct {
	MediaType string `json:"media_type"`
	Data      []byte `json:"-"`
}

// Base64 returns the image data base64-encoded, as most wire formats want it.
func (s ImageSource) Base64() string { return base64.StdEncoding.EncodeToString(s.Data) }

// ContentBlock is a closed sum type over the kinds of content a Message can
// carry. Exactly one of the typed fields is meaningful, selected by Type.
// Marshaling follows the discriminated-union shape
// (`{"type": "...", ...fields}`) that every wire family expects after
// conversion.
type ContentBlock struct {
	Type BlockType

	// BlockText
	Text string

	// BlockThinking
	Thinking string
	// Signature is an opaque provider-issued token that must be echoed
	// back verbatim on the next turn for providers that verify it.
	Signature string

	// BlockRedactedThinking
	RedactedData string

	// BlockToolUse
	ToolUseID string
	ToolName  string
	ToolInput json.RawMessage

	// BlockToolResult
	ToolResultID      string
	ToolResultContent string
	IsError           bool

	// BlockImage
	Image ImageSource
}

// NewText builds a text block.
func NewText(text string) ContentBlock { return ContentBlock{Type: BlockText, Text: text} }

// NewToolUse builds a tool_use block.
func NewToolUse(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ToolUseID: id, ToolName: name, ToolInput: input}
}

// NewToolResult builds a tool_result block.
func NewToolResult(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{
		Type:              BlockToolResult,
		ToolResultID:      toolUseID,
		ToolResultContent: content,
		IsError:           isError,
	}
}

// IsToolUse reports whether this block carries a tool invocation request.
func (b ContentBlock) IsToolUse() bool { return b.Type == BlockToolUse }

type wireBlock struct {
	Type         BlockType       `json:"type"`
	Text         string          `json:"text,omitempty"`
	Thinking     string          `json:"thinking,omitempty"`
	Signature    string          `json:"signature,omitempty"`
	RedactedData string          `json:"data,omitempty"`
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Input        json.RawMessage `json:"input,omitempty"`
	ToolUseID    string          `json:"tool_use_id,omitempty"`
	Content      string          `json:"content,omitempty"`
	IsError      bool            `json:"is_error,omitempty"`
	Source       *ImageSource    `json:"source,omitempty"`
}

// MarshalJSON implements the tagged-union encoding.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	w := wireBlock{Type: b.Type}
	switch b.Type {
	case BlockText:
		w.Text = b.Text
	case BlockThinking:
		w.Thinking = b.Thinking
		w.Signature = b.Signature
	case BlockRedactedThinking:
		w.RedactedData = b.RedactedData
	case BlockToolUse:
		w.ID = b.ToolUseID
		w.Name = b.ToolName
		w.Input = b.ToolInput
	case BlockToolResult:
		w.ToolUseID = b.ToolResultID
		w.Content = b.ToolResultContent
		w.IsError = b.IsError
	case BlockImage:
		src := b.Image
		w.Source = &src
	default:
		return nil, fmt.Errorf("core: unknown block type %q", b.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements the tagged-union decoding.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Type = w.Type
	switch w.Type {
	case BlockText:
		b.Text = w.Text
	case BlockThinking:
		b.Thinking = w.Thinking
		b.Signature = w.Signature
	case BlockRedactedThinking:
		b.RedactedData = w.RedactedData
	case BlockToolUse:
		b.ToolUseID = w.ID
		b.ToolName = w.Name
		b.ToolInput = w.Input
	case BlockToolResult:
		b.ToolResultID = w.ToolUseID
		b.ToolResultContent = w.Content
		b.IsError = w.IsError
	case BlockImage:
		if w.Source != nil {
			b.Image = *w.Source
		}
	default:
		return fmt.Errorf("core: unknown block type %q", w.Type)
	}
	return nil
}

// Message is one turn in a conversation: a role plus an ordered list of
// content blocks. Assistant messages may mix text and tool_use blocks;
// tool-result messages carry one or more tool_result blocks in the order
// the corresponding tool_use blocks appeared.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// NewUserMessage builds a plain-text user message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{NewText(text)}}
}

// ToolUseBlocks returns every tool_use block in this message, in order.
func (m Message) ToolUseBlocks() []ContentBlock {
	var out []ContentBlock
	for _, b := range m.Content {
		if b.IsToolUse() {
			out = append(out, b)
		}
	}
	return out
}

// HasToolUse reports whether this message requests any tool invocation.
func (m Message) HasToolUse() bool { return len(m.ToolUseBlocks()) > 0 }

// Text concatenates every text block in this message.
func (m Message) Text() string {
	var out string
	for _, b := range m.Content {
		if b.Type == BlockText {
			out += b.Text
		}
	}
	return out
}

// ToolDefinition describes one callable tool to the model: its name, a
// natural-language description, and a JSON Schema for its input.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}
