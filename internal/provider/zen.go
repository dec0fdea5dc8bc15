package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	zen "github.com/sacenox/go-opencode-ai-zen-sdk"
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/provider/transport"
)

// zenProvider wraps the opencode.ai Zen gateway SDK as a fifth Provider
// family. The gateway fans a single model id out to whichever upstream wire
// shape that model actually speaks (Anthropic messages, Gemini, OpenAI
// responses, or plain chat-completions); the SDK surfaces every shape as an
// (endpoint, event-type, raw-json) tuple rather than committing to one wire
// format itself, so this adapter dispatches each tuple to the matching
// family tracker already built for that shape and lets it drive the same
// canonical core.StreamEvent decode the dedicated family provider uses.
type zenProvider struct {
	name    string
	client  *zen.Client
	opts    Options
	log     zerolog.Logger
}

// NewZenProvider builds a Zen-gateway-backed provider under name.
func NewZenProvider(name string, opts Options, log zerolog.Logger) (Provider, error) {
	base := string(NewBaseURL(opts.BaseURL))
	if base == "" {
		base = "https://opencode.ai/zen/v1"
	}
	client, err := zen.NewClient(zen.Config{APIKey: opts.APIKey, BaseURL: base})
	if err != nil {
		return nil, fmt.Errorf("zen: new client: %w", err)
	}
	return &zenProvider{
		name:   name,
		client: client,
		opts:   opts,
		log:    log.With().Str("provider", name).Logger(),
	}, nil
}

func (p *zenProvider) Name() string { return p.name }

func (p *zenProvider) Model() string { return p.opts.Model }

func (p *zenProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	zreq := zen.NormalizedRequest{
		Model:    req.Model,
		System:   req.System,
		Messages: toZenMessages(req),
		Tools:    toZenTools(req.Tools),
		Stream:   true,
	}
	if req.Temperature != nil {
		t := *req.Temperature
		zreq.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		zreq.MaxTokens = &mt
	}

	events, errs, err := p.client.UnifiedStreamNormalized(ctx, zreq)
	if err != nil {
		return fmt.Errorf("zen: %w", err)
	}

	dispatch := newZenDispatcher()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := dispatch.handle(ev, onEvent); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok || err == nil {
				continue
			}
			var apiErr *zen.APIError
			if errors.As(err, &apiErr) {
				p.log.Error().Int("status", apiErr.StatusCode).Str("body", string(apiErr.Body)).Msg("zen: stream API error")
				return httpStatusToProviderError(apiErr.StatusCode, string(apiErr.Body))
			}
			return fmt.Errorf("zen: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// zenDispatcher routes each unified SDK event to the family tracker that
// matches its wire endpoint, keeping one tracker instance per family alive
// for the whole stream so index/usage bookkeeping stays correct across
// chunks, exactly as a direct call to that family's own provider would.
type zenDispatcher struct {
	anthropic *anthropicTracker
	gemini    *geminiTracker
	responses *responsesTracker
	compat    *compatTracker
}

func newZenDispatcher() *zenDispatcher {
	return &zenDispatcher{
		anthropic: newAnthropicTracker(),
		gemini:    newGeminiTracker(),
		responses: newResponsesTracker(),
		compat:    newCompatTracker(),
	}
}

func (d *zenDispatcher) handle(ev zen.UnifiedEvent, onEvent func(core.StreamEvent) error) error {
	data := ev.Data
	if len(data) == 0 || string(data) == "[DONE]" {
		return onEvent(core.StreamEvent{Type: core.EventMessageStop})
	}

	sse := transport.SSEEvent{Type: ev.Event, Data: string(data)}
	switch ev.Endpoint {
	case zen.EndpointMessages:
		return d.anthropic.handle(sse, onEvent)
	case zen.EndpointModels:
		return d.gemini.handle(sse, onEvent)
	case zen.EndpointResponses:
		return d.responses.handle(sse, onEvent)
	default:
		return d.compat.handle(sse, onEvent)
	}
}

func toZenMessages(req core.CompletionRequest) []zen.NormalizedMessage {
	compat := toCompatMessages(req)
	out := make([]zen.NormalizedMessage, 0, len(compat))
	for _, m := range compat {
		if m.Role == "system" {
			continue // carried separately via zen.NormalizedRequest.System
		}
		nm := zen.NormalizedMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			nm.ToolCalls = append(nm.ToolCalls, zen.NormalizedToolCall{
				ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments,
			})
		}
		out = append(out, nm)
	}
	return out
}

func toZenTools(tools []core.ToolDefinition) []zen.NormalizedTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]zen.NormalizedTool, len(tools))
	for i, t := range tools {
		params := t.InputSchema
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out[i] = zen.NormalizedTool{Name: t.Name, Description: t.Description, Parameters: params}
	}
	return out
}

// ListModels exposes the gateway's catalog through the ModelLister
// capability so internal/ui's model-switch flow (spec.md §4.8) can offer
// zen-routed models alongside every other provider's.
func (p *zenProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("zen: list models: %w", err)
	}
	out := make([]string, len(resp.Data))
	for i, m := range resp.Data {
		out[i] = m.ID
	}
	return out, nil
}
