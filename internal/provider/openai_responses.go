package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/provider/transport"
)

// responsesProvider implements OpenAI's Responses API: structured input
// items, function_call_output items for tool results, and an
// event-type-string-driven SSE shape (response.output_text.delta,
// response.function_call_arguments.delta, response.output_item.added,
// response.completed/response.done).
type responsesProvider struct {
	opts   Options
	client *transport.Client
	log    zerolog.Logger
}

// NewResponsesProvider builds a Responses-family provider.
func NewResponsesProvider(opts Options, log zerolog.Logger) Provider {
	return &responsesProvider{
		opts:   opts,
		client: transport.NewClient(transport.DefaultConfig()),
		log:    log.With().Str("provider", "openai-responses").Logger(),
	}
}

func (p *responsesProvider) Name() string { return "openai-responses" }

func (p *responsesProvider) Model() string { return p.opts.Model }

type respInputItem struct {
	Type   string          `json:"type"`
	Role   string          `json:"role,omitempty"`
	Content any             `json:"content,omitempty"`

	// function_call item (assistant requested a tool)
	CallID string          `json:"call_id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Arguments string       `json:"arguments,omitempty"`

	// function_call_output item (tool result fed back)
	Output string          `json:"output,omitempty"`
}

type respTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type respToolSchema struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type respRequest struct {
	Model       string          `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input       []respInputItem `json:"input"`
	Tools       []respToolSchema `json:"tools,omitempty"`
	Stream      bool            `json:"stream"`
}

func toResponsesInput(messages []core.Message) []respInputItem {
	var out []respInputItem
	for _, m := range messages {
		switch m.Role {
		case core.RoleTool:
			for _, b := range m.Content {
				if b.Type == core.BlockToolResult {
					out = append(out, respInputItem{Type: "function_call_output", CallID: b.ToolResultID, Output: b.ToolResultContent})
				}
			}
		case core.RoleAssistant:
			if text := m.Text(); text != "" {
				out = append(out, respInputItem{Type: "message", Role: "assistant", Content: []respTextContent{{Type: "output_text", Text: text}}})
			}
			for _, b := range m.ToolUseBlocks() {
				input := b.ToolInput
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				out = append(out, respInputItem{Type: "function_call", CallID: b.ToolUseID, Name: b.ToolName, Arguments: string(input)})
			}
		default:
			out = append(out, respInputItem{Type: "message", Role: "user", Content: []respTextContent{{Type: "input_text", Text: m.Text()}}})
		}
	}
	return out
}

func toResponsesTools(tools []core.ToolDefinition) []respToolSchema {
	if len(tools) == 0 {
		return nil
	}
	out := make([]respToolSchema, len(tools))
	for i, t := range tools {
		schema := t.InputSchema
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out[i] = respToolSchema{Type: "function", Name: t.Name, Description: t.Description, Parameters: schema}
	}
	return out
}

func (p *responsesProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	payload := respRequest{
		Model:        req.Model,
		Instructions: req.System,
		Input:        toResponsesInput(req.Messages),
		Tools:        toResponsesTools(req.Tools),
		Stream:       true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai-responses: marshal request: %w", err)
	}

	base := NewBaseURL(p.opts.BaseURL)
	if base == "" {
		base = "https://api.openai.com"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base.Join("/v1/responses"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+p.opts.APIKey)
	for k, v := range p.opts.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("openai-responses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return httpStatusToProviderError(resp.StatusCode, string(b))
	}

	tracker := newResponsesTracker()
	return transport.ReadSSE(ctx, resp.Body, func(ev transport.SSEEvent) error {
		return tracker.handle(ev, onEvent)
	})
}

// responsesTracker holds the item-id → block-index cursor across a single
// streamed turn. Kept as its own type, rather than inlined closure state,
// so the zen adapter can drive the same decode logic chunk-by-chunk.
type responsesTracker struct {
	toolCallIndex map[string]int
	nextIndex     int
}

func newResponsesTracker() *responsesTracker {
	return &responsesTracker{toolCallIndex: map[string]int{}}
}

func (t *responsesTracker) handle(ev transport.SSEEvent, onEvent func(core.StreamEvent) error) error {
	switch ev.Type {
	case "response.output_item.added":
		var payload struct {
			Item struct {
				Type   string `json:"type"`
				ID     string `json:"id"`
				Name   string `json:"name"`
				CallID string `json:"call_id"`
			} `json:"item"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		if payload.Item.Type != "function_call" {
			return nil
		}
		idx := t.nextIndex
		t.nextIndex++
		t.toolCallIndex[payload.Item.ID] = idx
		block := core.NewToolUse(payload.Item.CallID, payload.Item.Name, nil)
		return onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: idx, ContentBlock: &block})

	case "response.output_text.delta":
		var payload struct {
			Delta string `json:"delta"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		delta := core.ContentDelta{Type: core.DeltaText, Text: payload.Delta}
		return onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: 0, Delta: &delta})

	case "response.function_call_arguments.delta":
		var payload struct {
			ItemID string `json:"item_id"`
			Delta  string `json:"delta"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		idx, ok := t.toolCallIndex[payload.ItemID]
		if !ok {
			return nil
		}
		delta := core.ContentDelta{Type: core.DeltaInputJSON, PartialJSON: payload.Delta}
		return onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: idx, Delta: &delta})

	case "response.completed", "response.done":
		var payload struct {
			Response struct {
				Usage struct {
					InputTokens  int `json:"input_tokens"`
					OutputTokens int `json:"output_tokens"`
				} `json:"usage"`
			} `json:"response"`
		}
		_ = json.Unmarshal([]byte(ev.Data), &payload)
		reason := core.StopEndTurn
		if len(t.toolCallIndex) > 0 {
			reason = core.StopToolUse
		}
		usage := core.Usage{
			InputTokens:  payload.Response.Usage.InputTokens,
			OutputTokens: payload.Response.Usage.OutputTokens,
		}
		if err := onEvent(core.StreamEvent{Type: core.EventMessageDelta, StopReason: &reason, Usage: &usage}); err != nil {
			return err
		}
		return onEvent(core.StreamEvent{Type: core.EventMessageStop})

	default:
		return nil
	}
}
