package provider

import (
	"testing"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/provider/transport"
)

func TestOpenAICompatConfigResolveModel(t *testing.T) {
	cfg := NewOpenAICompatConfig("local").WithModelAlias("fast", "llama3-8b")
	if got := cfg.ResolveModel("fast"); got != "llama3-8b" {
		t.Errorf("ResolveModel(fast) = %q, want llama3-8b", got)
	}
	if got := cfg.ResolveModel("llama3-70b"); got != "llama3-70b" {
		t.Errorf("ResolveModel(unaliased) = %q, want passthrough", got)
	}
}

func TestOpenAICompatConfigAuthBuilders(t *testing.T) {
	cfg := NewOpenAICompatConfig("x")
	if cfg.Auth != AuthBearer {
		t.Fatalf("default Auth = %v, want AuthBearer", cfg.Auth)
	}
	cfg.WithCustomHeaderAuth("api-key")
	if cfg.Auth != AuthCustomHeader || cfg.CustomHeader != "api-key" {
		t.Errorf("WithCustomHeaderAuth did not set fields: %+v", cfg)
	}
	cfg.WithNoAuth()
	if cfg.Auth != AuthNone {
		t.Errorf("WithNoAuth: Auth = %v, want AuthNone", cfg.Auth)
	}
}

func TestToCompatMessagesIncludesSystemAndToolResults(t *testing.T) {
	req := core.CompletionRequest{
		System: "be helpful",
		Messages: []core.Message{
			core.NewUserMessage("hello"),
			{Role: core.RoleTool, Content: []core.ContentBlock{core.NewToolResult("toolu_1", "42", false)}},
		},
	}
	msgs := toCompatMessages(req)
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "be helpful" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[2].Role != "tool" || msgs[2].ToolCallID != "toolu_1" || msgs[2].Content != "42" {
		t.Errorf("msgs[2] = %+v", msgs[2])
	}
}

func TestToCompatMessagesAssistantCarriesToolCalls(t *testing.T) {
	msg := core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{
		core.NewText("let me check"),
		core.NewToolUse("toolu_1", "read_file", nil),
	}}
	out := toCompatMessages(core.CompletionRequest{Messages: []core.Message{msg}})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Content != "let me check" {
		t.Errorf("Content = %q", out[0].Content)
	}
	if len(out[0].ToolCalls) != 1 || out[0].ToolCalls[0].Function.Arguments != "{}" {
		t.Errorf("ToolCalls = %+v", out[0].ToolCalls)
	}
}

func TestMapCompatFinishReason(t *testing.T) {
	cases := map[string]core.StopReason{
		"tool_calls": core.StopToolUse,
		"length":     core.StopMaxTokens,
		"stop":       core.StopEndTurn,
		"other":      core.StopEndTurn,
	}
	for reason, want := range cases {
		if got := mapCompatFinishReason(reason); got != want {
			t.Errorf("mapCompatFinishReason(%q) = %q, want %q", reason, got, want)
		}
	}
}

func TestCompatTrackerStreamsTextThenFinish(t *testing.T) {
	tracker := newCompatTracker()
	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }

	if err := tracker.handle(transport.SSEEvent{Data: `{"choices":[{"delta":{"content":"hi"}}]}`}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := tracker.handle(transport.SSEEvent{Data: `{"choices":[{"delta":{},"finish_reason":"stop"}]}`}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var types []core.StreamEventType
	for _, e := range got {
		types = append(types, e.Type)
	}
	want := []core.StreamEventType{
		core.EventMessageStart, core.EventContentBlockStart, core.EventContentBlockDelta,
		core.EventMessageDelta, core.EventMessageStop,
	}
	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestCompatTrackerMessageStartEmittedOnce(t *testing.T) {
	tracker := newCompatTracker()
	count := 0
	onEvent := func(se core.StreamEvent) error {
		if se.Type == core.EventMessageStart {
			count++
		}
		return nil
	}
	tracker.handle(transport.SSEEvent{Data: `{"choices":[{"delta":{"content":"a"}}]}`}, onEvent)
	tracker.handle(transport.SSEEvent{Data: `{"choices":[{"delta":{"content":"b"}}]}`}, onEvent)
	if count != 1 {
		t.Errorf("EventMessageStart emitted %d times, want 1", count)
	}
}

func TestCompatTrackerToolCallsIndexedByPosition(t *testing.T) {
	tracker := newCompatTracker()
	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }

	data := `{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"toolu_1","function":{"name":"read_file","arguments":"{\"path\":"}}]}}]}`
	if err := tracker.handle(transport.SSEEvent{Data: data}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}
	data2 := `{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"a.go\"}"}}]}}]}`
	if err := tracker.handle(transport.SSEEvent{Data: data2}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var starts, deltas int
	for _, e := range got {
		switch e.Type {
		case core.EventContentBlockStart:
			starts++
		case core.EventContentBlockDelta:
			deltas++
		}
	}
	if starts != 1 {
		t.Errorf("content_block_start count = %d, want 1 (same tool-call index should not restart)", starts)
	}
	if deltas != 2 {
		t.Errorf("content_block_delta count = %d, want 2", deltas)
	}
}

func TestCompatTrackerUsageEmitsMessageDelta(t *testing.T) {
	tracker := newCompatTracker()
	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }

	data := `{"choices":[],"usage":{"prompt_tokens":10,"completion_tokens":5}}`
	if err := tracker.handle(transport.SSEEvent{Data: data}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var usageEvent *core.StreamEvent
	for i := range got {
		if got[i].Type == core.EventMessageDelta {
			usageEvent = &got[i]
		}
	}
	if usageEvent == nil {
		t.Fatal("expected a message_delta usage event")
	}
	if usageEvent.Usage.InputTokens != 10 || usageEvent.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v", usageEvent.Usage)
	}
}
