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

// OpenAICompatAuth selects how an openai-compatible endpoint authenticates.
type OpenAICompatAuth int

const (
	AuthBearer OpenAICompatAuth = iota
	AuthCustomHeader
	AuthNone
)

// OpenAICompatConfig configures one chat-completion-compatible endpoint
// (vLLM, Ollama's OpenAI-shim, OpenRouter, etc).
type OpenAICompatConfig struct {
	Name           string
	Auth           OpenAICompatAuth
	CustomHeader   string
	ModelAliases   map[string]string
	Capabilities   Capabilities
}

func NewOpenAICompatConfig(name string) *OpenAICompatConfig {
	return &OpenAICompatConfig{Name: name, Auth: AuthBearer, ModelAliases: map[string]string{}}
}

func (c *OpenAICompatConfig) WithBearerAuth() *OpenAICompatConfig { c.Auth = AuthBearer; return c }
func (c *OpenAICompatConfig) WithCustomHeaderAuth(header string) *OpenAICompatConfig {
	c.Auth = AuthCustomHeader
	c.CustomHeader = header
	return c
}
func (c *OpenAICompatConfig) WithNoAuth() *OpenAICompatConfig { c.Auth = AuthNone; return c }
func (c *OpenAICompatConfig) WithModelAlias(alias, real string) *OpenAICompatConfig {
	c.ModelAliases[alias] = real
	return c
}
func (c *OpenAICompatConfig) WithCapabilities(caps Capabilities) *OpenAICompatConfig {
	c.Capabilities = caps
	return c
}

// ResolveModel maps a requested model name through any configured alias.
func (c *OpenAICompatConfig) ResolveModel(requested string) string {
	if real, ok := c.ModelAliases[requested]; ok {
		return real
	}
	return requested
}

// openaiCompatProvider implements the broad chat-completions wire shape:
// streaming tool-call accumulation keyed by index, POST /v1/chat/completions,
// plus a capability/alias model for the many OpenAI-compatible backends
// that diverge in small ways (model aliasing, missing usage deltas).
type openaiCompatProvider struct {
	opts   Options
	cfg    *OpenAICompatConfig
	client *transport.Client
	log    zerolog.Logger
}

// NewOpenAICompatProvider builds a chat-completion-compatible provider.
func NewOpenAICompatProvider(opts Options, cfg *OpenAICompatConfig, log zerolog.Logger) Provider {
	return &openaiCompatProvider{
		opts:   opts,
		cfg:    cfg,
		client: transport.NewClient(transport.DefaultConfig()),
		log:    log.With().Str("provider", cfg.Name).Logger(),
	}
}

func (p *openaiCompatProvider) Name() string { return p.cfg.Name }

func (p *openaiCompatProvider) Model() string { return p.cfg.ResolveModel(p.opts.Model) }

type ccMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []ccToolCall   `json:"tool_calls,omitempty"`
}

type ccToolCall struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Function ccFunction  `json:"function"`
}

type ccFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ccTool struct {
	Type     string       `json:"type"`
	Function ccToolSchema `json:"function"`
}

type ccToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type ccStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type ccRequest struct {
	Model          string          `json:"model"`
	Messages       []ccMessage     `json:"messages"`
	Tools          []ccTool        `json:"tools,omitempty"`
	Stream         bool            `json:"stream"`
	StreamOptions  ccStreamOptions `json:"stream_options"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

func toCompatMessages(req core.CompletionRequest) []ccMessage {
	var out []ccMessage
	if req.System != "" {
		out = append(out, ccMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleTool:
			for _, b := range m.Content {
				if b.Type == core.BlockToolResult {
					out = append(out, ccMessage{Role: "tool", Content: b.ToolResultContent, ToolCallID: b.ToolResultID})
				}
			}
		case core.RoleAssistant:
			msg := ccMessage{Role: "assistant", Content: m.Text()}
			for _, b := range m.ToolUseBlocks() {
				input := b.ToolInput
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				msg.ToolCalls = append(msg.ToolCalls, ccToolCall{
					ID: b.ToolUseID, Type: "function",
					Function: ccFunction{Name: b.ToolName, Arguments: string(input)},
				})
			}
			out = append(out, msg)
		default:
			out = append(out, ccMessage{Role: "user", Content: m.Text()})
		}
	}
	return out
}

func toCompatTools(tools []core.ToolDefinition) []ccTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]ccTool, len(tools))
	for i, t := range tools {
		schema := t.InputSchema
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out[i] = ccTool{Type: "function", Function: ccToolSchema{Name: t.Name, Description: t.Description, Parameters: schema}}
	}
	return out
}

type ccStreamChoice struct {
	Delta struct {
		Content   string `json:"content"`
		ToolCalls []struct {
			Index    int    `json:"index"`
			ID       string `json:"id"`
			Function struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

type ccStreamResponse struct {
	Choices []ccStreamChoice `json:"choices"`
	Usage   *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *openaiCompatProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	req.Model = p.cfg.ResolveModel(req.Model)
	payload := ccRequest{
		Model:         req.Model,
		Messages:      toCompatMessages(req),
		Tools:         toCompatTools(req.Tools),
		Stream:        true,
		StreamOptions: ccStreamOptions{IncludeUsage: true},
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", p.cfg.Name, err)
	}

	base := NewBaseURL(p.opts.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base.Join("/v1/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
	httpReq.Header.Set("content-type", "application/json")
	switch p.cfg.Auth {
	case AuthBearer:
		httpReq.Header.Set("authorization", "Bearer "+p.opts.APIKey)
	case AuthCustomHeader:
		httpReq.Header.Set(p.cfg.CustomHeader, p.opts.APIKey)
	}
	for k, v := range p.opts.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return httpStatusToProviderError(resp.StatusCode, string(b))
	}

	tracker := newCompatTracker()
	return transport.ReadSSE(ctx, resp.Body, func(ev transport.SSEEvent) error {
		return tracker.handle(ev, onEvent)
	})
}

// compatTracker holds the per-stream cursor state chat-completion-style
// deltas need (tool-call-index → block-index mapping, whether the single
// text block has started, whether MessageStart has already been emitted).
// Kept as its own type, rather than inlined closure state, so the zen
// adapter can drive the same decode logic chunk-by-chunk.
type compatTracker struct {
	toolBlockIndex   map[int]int
	nextIndex        int
	startedText      bool
	messageStartSent bool
}

func newCompatTracker() *compatTracker {
	return &compatTracker{toolBlockIndex: map[int]int{}}
}

func (t *compatTracker) handle(ev transport.SSEEvent, onEvent func(core.StreamEvent) error) error {
	var r ccStreamResponse
	if err := json.Unmarshal([]byte(ev.Data), &r); err != nil {
		return nil
	}

	if !t.messageStartSent {
		t.messageStartSent = true
		if err := onEvent(core.StreamEvent{Type: core.EventMessageStart, Usage: &core.Usage{}}); err != nil {
			return err
		}
	}

	if r.Usage != nil {
		if err := onEvent(core.StreamEvent{
			Type:  core.EventMessageDelta,
			Usage: &core.Usage{InputTokens: r.Usage.PromptTokens, OutputTokens: r.Usage.CompletionTokens},
		}); err != nil {
			return err
		}
	}

	if len(r.Choices) == 0 {
		return nil
	}
	choice := r.Choices[0]

	if choice.Delta.Content != "" {
		if !t.startedText {
			t.startedText = true
			block := core.NewText("")
			if err := onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: t.nextIndex, ContentBlock: &block}); err != nil {
				return err
			}
			t.nextIndex++
		}
		delta := core.ContentDelta{Type: core.DeltaText, Text: choice.Delta.Content}
		if err := onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: 0, Delta: &delta}); err != nil {
			return err
		}
	}

	for _, tc := range choice.Delta.ToolCalls {
		idx, ok := t.toolBlockIndex[tc.Index]
		if !ok {
			idx = t.nextIndex
			t.nextIndex++
			t.toolBlockIndex[tc.Index] = idx
			block := core.NewToolUse(tc.ID, tc.Function.Name, nil)
			if err := onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: idx, ContentBlock: &block}); err != nil {
				return err
			}
		}
		if tc.Function.Arguments != "" {
			delta := core.ContentDelta{Type: core.DeltaInputJSON, PartialJSON: tc.Function.Arguments}
			if err := onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: idx, Delta: &delta}); err != nil {
				return err
			}
		}
	}

	if choice.FinishReason != nil {
		reason := mapCompatFinishReason(*choice.FinishReason)
		if err := onEvent(core.StreamEvent{Type: core.EventMessageDelta, StopReason: &reason}); err != nil {
			return err
		}
		return onEvent(core.StreamEvent{Type: core.EventMessageStop})
	}
	return nil
}

func mapCompatFinishReason(reason string) core.StopReason {
	switch reason {
	case "tool_calls":
		return core.StopToolUse
	case "length":
		return core.StopMaxTokens
	case "stop":
		return core.StopEndTurn
	default:
		return core.StopEndTurn
	}
}
