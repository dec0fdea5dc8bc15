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

// geminiProvider implements the function-call family: role-split
// contents/system_instruction, tool results synthesized as user messages
// with a functionResponse part (name = tool_use_id, not the tool name),
// and schema reshaping through a strict allowlist.
type geminiProvider struct {
	opts   Options
	client *transport.Client
	log    zerolog.Logger
}

// NewGeminiProvider builds a function-call-family provider.
func NewGeminiProvider(opts Options, log zerolog.Logger) Provider {
	return &geminiProvider{
		opts:   opts,
		client: transport.NewClient(transport.DefaultConfig()),
		log:    log.With().Str("provider", "gemini").Logger(),
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Model() string { return p.opts.Model }

type geminiPart struct {
	Text             string          `json:"text,omitempty"`
	FunctionCall     *geminiFuncCall `json:"functionCall,omitempty"`
	FunctionResponse *geminiFuncResp `json:"functionResponse,omitempty"`
	InlineData       *geminiInline   `json:"inlineData,omitempty"`
}

type geminiFuncCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type geminiFuncResp struct {
	Name     string         `json:"name"`
	Response geminiRespBody `json:"response"`
}

type geminiRespBody struct {
	Content json.RawMessage `json:"content"`
}

type geminiInline struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"system_instruction,omitempty"`
	Tools             []geminiTool     `json:"tools,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

// supportedSchemaFields is the exact field allowlist Gemini's schema
// validation accepts; anything else must be stripped before sending.
var supportedSchemaFields = map[string]bool{
	"type": true, "nullable": true, "required": true, "format": true,
	"description": true, "properties": true, "items": true, "enum": true,
}

// convertToGeminiSchema reshapes a JSON Schema to Gemini's constrained
// subset. isPropertiesMap skips the allowlist filter for keys that are
// themselves property names inside a "properties" object.
func convertToGeminiSchema(value any, isPropertiesMap bool) any {
	switch v := value.(type) {
	case map[string]any:
		result := map[string]any{}
		for key, val := range v {
			if isPropertiesMap {
				result[key] = convertToGeminiSchema(val, false)
				continue
			}
			if !supportedSchemaFields[key] {
				continue
			}
			switch key {
			case "type":
				if arr, ok := val.([]any); ok {
					var actualType string
					nullable := false
					for _, t := range arr {
						if s, ok := t.(string); ok {
							if s == "null" {
								nullable = true
							} else {
								actualType = s
							}
						}
					}
					if actualType != "" {
						result["type"] = actualType
					}
					if nullable {
						result["nullable"] = true
					}
				} else {
					result[key] = val
				}
			case "properties":
				result[key] = convertToGeminiSchema(val, true)
			case "items":
				result[key] = convertToGeminiSchema(val, false)
			default:
				result[key] = val
			}
		}
		return result
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = convertToGeminiSchema(e, false)
		}
		return out
	default:
		return value
	}
}

func reshapeSchema(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	reshaped := convertToGeminiSchema(v, false)
	out, err := json.Marshal(reshaped)
	if err != nil {
		return raw
	}
	return out
}

func toGeminiRequest(req core.CompletionRequest) geminiRequest {
	var contents []geminiContent
	for _, m := range req.Messages {
		if m.Role == core.RoleTool {
			contents = append(contents, toGeminiToolResponse(m))
			continue
		}
		role := "user"
		if m.Role == core.RoleAssistant {
			role = "model"
		}
		parts := toGeminiParts(m.Content)
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}

	var sys *geminiContent
	if req.System != "" {
		sys = &geminiContent{Role: "user", Parts: []geminiPart{{Text: req.System}}}
	}

	var tools []geminiTool
	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDecl, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = geminiFunctionDecl{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  reshapeSchema(t.InputSchema),
			}
		}
		tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	return geminiRequest{
		Contents:          contents,
		SystemInstruction: sys,
		Tools:             tools,
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: req.MaxTokens, Temperature: req.Temperature},
	}
}

func toGeminiParts(blocks []core.ContentBlock) []geminiPart {
	var parts []geminiPart
	for _, b := range blocks {
		switch b.Type {
		case core.BlockText:
			if b.Text != "" {
				parts = append(parts, geminiPart{Text: b.Text})
			}
		case core.BlockToolUse:
			input := b.ToolInput
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			parts = append(parts, geminiPart{FunctionCall: &geminiFuncCall{Name: b.ToolName, Args: input}})
		case core.BlockImage:
			parts = append(parts, geminiPart{InlineData: &geminiInline{MimeType: b.Image.MediaType, Data: b.Image.Base64()}})
		}
	}
	return parts
}

// toGeminiToolResponse synthesizes a user Content with functionResponse
// parts. The response's "name" field is the tool_use_id, not the tool
// name; Gemini matches function responses back to calls by that id.
func toGeminiToolResponse(m core.Message) geminiContent {
	var parts []geminiPart
	for _, b := range m.Content {
		if b.Type != core.BlockToolResult {
			continue
		}
		key := "result"
		if b.IsError {
			key = "error"
		}
		content, _ := json.Marshal(map[string]string{key: b.ToolResultContent})
		parts = append(parts, geminiPart{
			FunctionResponse: &geminiFuncResp{
				Name:     b.ToolResultID,
				Response: geminiRespBody{Content: content},
			},
		})
	}
	return geminiContent{Role: "user", Parts: parts}
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func mapGeminiFinishReason(reason string) core.StopReason {
	switch reason {
	case "MAX_TOKENS":
		return core.StopMaxTokens
	case "STOP_SEQUENCE":
		return core.StopStopSequence
	default:
		return core.StopEndTurn
	}
}

func (p *geminiProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	body, err := json.Marshal(toGeminiRequest(req))
	if err != nil {
		return fmt.Errorf("gemini: marshal request: %w", err)
	}

	base := NewBaseURL(p.opts.BaseURL)
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	url := fmt.Sprintf("%s?alt=sse&key=%s", base.Join("/v1beta/models/"+req.Model+":streamGenerateContent"), p.opts.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
	httpReq.Header.Set("content-type", "application/json")
	for k, v := range p.opts.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return httpStatusToProviderError(resp.StatusCode, string(b))
	}

	tracker := newGeminiTracker()
	return transport.ReadSSE(ctx, resp.Body, func(ev transport.SSEEvent) error {
		return tracker.handle(ev, onEvent)
	})
}

// geminiTracker holds the block-index cursor across a single streamed turn.
// Exposed as its own type (rather than inlined closure state) so the zen
// adapter can drive the same decode logic chunk-by-chunk.
type geminiTracker struct {
	blockIndex  int
	sawToolCall bool
}

func newGeminiTracker() *geminiTracker { return &geminiTracker{} }

func (t *geminiTracker) handle(ev transport.SSEEvent, onEvent func(core.StreamEvent) error) error {
	var r geminiResponse
	if err := json.Unmarshal([]byte(ev.Data), &r); err != nil || len(r.Candidates) == 0 {
		return nil
	}
	candidate := r.Candidates[0]

	if candidate.FinishReason != "" {
		reason := mapGeminiFinishReason(candidate.FinishReason)
		if t.sawToolCall {
			reason = core.StopToolUse
		}
		var usage *core.Usage
		if r.UsageMetadata != nil {
			usage = &core.Usage{InputTokens: r.UsageMetadata.PromptTokenCount, OutputTokens: r.UsageMetadata.CandidatesTokenCount}
		}
		if err := onEvent(core.StreamEvent{Type: core.EventMessageDelta, StopReason: &reason, Usage: usage}); err != nil {
			return err
		}
		return onEvent(core.StreamEvent{Type: core.EventMessageStop})
	}

	if candidate.Content == nil {
		return nil
	}
	// The reference implementation emits only the first actionable
	// part per chunk; each subsequent chunk carries the next part.
	for _, part := range candidate.Content.Parts {
		switch {
		case part.Text != "":
			delta := core.ContentDelta{Type: core.DeltaText, Text: part.Text}
			return onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: t.blockIndex, Delta: &delta})
		case part.FunctionCall != nil:
			block := core.NewToolUse(core.NewToolUseID(), part.FunctionCall.Name, part.FunctionCall.Args)
			idx := t.blockIndex
			t.blockIndex++
			t.sawToolCall = true
			return onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: idx, ContentBlock: &block})
		}
	}
	return nil
}
