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

// anthropicProvider implements the Messages-family wire protocol: direct
// 1:1 block mapping, x-api-key/anthropic-version auth, and the
// message_start/content_block_*/message_delta/message_stop SSE shape.
// Regrounded on the canonical core.Message model instead of a flat one.
type anthropicProvider struct {
	opts   Options
	client *transport.Client
	log    zerolog.Logger
}

// NewAnthropicProvider builds a Messages-family provider.
func NewAnthropicProvider(opts Options, log zerolog.Logger) Provider {
	return &anthropicProvider{
		opts:   opts,
		client: transport.NewClient(transport.DefaultConfig()),
		log:    log.With().Str("provider", "anthropic").Logger(),
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Model() string { return p.opts.Model }

type anthropicCacheControl struct {
	Type string `json:"type"`
}

type anthropicSystemBlock struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text"`
	CacheControl *anthropicCacheControl `json:"cache_control,omitempty"`
}

type anthropicRequest struct {
	Model       string                 `json:"model"`
	Messages    []json.RawMessage      `json:"messages"`
	System      []anthropicSystemBlock `json:"system,omitempty"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature *float64               `json:"temperature,omitempty"`
	Stream      bool                   `json:"stream"`
	Tools       []anthropicTool        `json:"tools,omitempty"`
}

type anthropicTool struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	InputSchema  json.RawMessage        `json:"input_schema"`
	CacheControl *anthropicCacheControl `json:"cache_control,omitempty"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []core.ContentBlock `json:"content"`
}

// toAnthropicRequest hoists core.RoleTool messages into user messages with
// a tool_result block.
func toAnthropicRequest(req core.CompletionRequest) anthropicRequest {
	var messages []json.RawMessage
	for _, m := range req.Messages {
		role := string(m.Role)
		if m.Role == core.RoleTool {
			role = "user"
		}
		wire, err := json.Marshal(anthropicMessage{Role: role, Content: m.Content})
		if err != nil {
			continue
		}
		messages = append(messages, wire)
	}

	var system []anthropicSystemBlock
	if req.System != "" {
		system = []anthropicSystemBlock{{
			Type:         "text",
			Text:         req.System,
			CacheControl: &anthropicCacheControl{Type: "ephemeral"},
		}}
	}

	var tools []anthropicTool
	if len(req.Tools) > 0 {
		tools = make([]anthropicTool, len(req.Tools))
		for i, t := range req.Tools {
			schema := t.InputSchema
			if len(schema) == 0 {
				schema = json.RawMessage(`{"type":"object","properties":{}}`)
			}
			tools[i] = anthropicTool{Name: t.Name, Description: t.Description, InputSchema: schema}
		}
		tools[len(tools)-1].CacheControl = &anthropicCacheControl{Type: "ephemeral"}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      true,
		Tools:       tools,
	}
}

func (p *anthropicProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	body, err := json.Marshal(toAnthropicRequest(req))
	if err != nil {
		return fmt.Errorf("anthropic: marshal request: %w", err)
	}

	base := NewBaseURL(p.opts.BaseURL)
	if base == "" {
		base = "https://api.anthropic.com"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base.Join("/v1/messages"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", p.opts.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	for k, v := range p.opts.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyAnthropicError(resp)
	}

	tracker := newAnthropicTracker()
	return transport.ReadSSE(ctx, resp.Body, func(ev transport.SSEEvent) error {
		return tracker.handle(ev, onEvent)
	})
}

type anthropicTracker struct{}

func newAnthropicTracker() *anthropicTracker { return &anthropicTracker{} }

func (t *anthropicTracker) handle(ev transport.SSEEvent, onEvent func(core.StreamEvent) error) error {
	switch ev.Type {
	case "message_start":
		var payload struct {
			Message struct {
				Usage struct {
					InputTokens              int `json:"input_tokens"`
					CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
					CacheReadInputTokens     int `json:"cache_read_input_tokens"`
				} `json:"usage"`
			} `json:"message"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		return onEvent(core.StreamEvent{
			Type: core.EventMessageStart,
			Usage: &core.Usage{
				InputTokens:              payload.Message.Usage.InputTokens,
				CacheCreationInputTokens: payload.Message.Usage.CacheCreationInputTokens,
				CacheReadInputTokens:     payload.Message.Usage.CacheReadInputTokens,
			},
		})
	case "content_block_start":
		var payload struct {
			Index        int              `json:"index"`
			ContentBlock core.ContentBlock `json:"content_block"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		return onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: payload.Index, ContentBlock: &payload.ContentBlock})
	case "content_block_delta":
		var payload struct {
			Index int `json:"index"`
			Delta struct {
				Type        string `json:"type"`
				Text        string `json:"text,omitempty"`
				Thinking    string `json:"thinking,omitempty"`
				Signature   string `json:"signature,omitempty"`
				PartialJSON string `json:"partial_json,omitempty"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		var delta core.ContentDelta
		switch payload.Delta.Type {
		case "text_delta":
			delta = core.ContentDelta{Type: core.DeltaText, Text: payload.Delta.Text}
		case "thinking_delta":
			delta = core.ContentDelta{Type: core.DeltaThinking, Thinking: payload.Delta.Thinking}
		case "signature_delta":
			delta = core.ContentDelta{Type: core.DeltaSignature, Signature: payload.Delta.Signature}
		case "input_json_delta":
			delta = core.ContentDelta{Type: core.DeltaInputJSON, PartialJSON: payload.Delta.PartialJSON}
		default:
			return nil
		}
		return onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: payload.Index, Delta: &delta})
	case "message_delta":
		var payload struct {
			Delta struct {
				StopReason string `json:"stop_reason"`
			} `json:"delta"`
			Usage struct {
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			return nil
		}
		reason := mapAnthropicStopReason(payload.Delta.StopReason)
		return onEvent(core.StreamEvent{
			Type:       core.EventMessageDelta,
			StopReason: &reason,
			Usage:      &core.Usage{OutputTokens: payload.Usage.OutputTokens},
		})
	case "message_stop":
		return onEvent(core.StreamEvent{Type: core.EventMessageStop})
	default:
		// "ping", "content_block_stop", unknown — ignored.
		return nil
	}
}

func mapAnthropicStopReason(s string) core.StopReason {
	switch s {
	case "tool_use":
		return core.StopToolUse
	case "max_tokens":
		return core.StopMaxTokens
	case "stop_sequence":
		return core.StopStopSequence
	default:
		return core.StopEndTurn
	}
}

func classifyAnthropicError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return httpStatusToProviderError(resp.StatusCode, string(body))
}
