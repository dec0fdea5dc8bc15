package provider

import (
	"encoding/json"
	"testing"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/provider/transport"
)

func collectTrackerEvents(t *testing.T, tracker *anthropicTracker, events []transport.SSEEvent) []core.StreamEvent {
	t.Helper()
	var got []core.StreamEvent
	for _, ev := range events {
		if err := tracker.handle(ev, func(se core.StreamEvent) error {
			got = append(got, se)
			return nil
		}); err != nil {
			t.Fatalf("handle(%s): %v", ev.Type, err)
		}
	}
	return got
}

func TestAnthropicTrackerMessageStartUsage(t *testing.T) {
	tracker := newAnthropicTracker()
	events := collectTrackerEvents(t, tracker, []transport.SSEEvent{
		{Type: "message_start", Data: `{"message":{"usage":{"input_tokens":42,"cache_read_input_tokens":10}}}`},
	})
	if len(events) != 1 || events[0].Type != core.EventMessageStart {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Usage.InputTokens != 42 || events[0].Usage.CacheReadInputTokens != 10 {
		t.Errorf("Usage = %+v", events[0].Usage)
	}
}

func TestAnthropicTrackerTextDelta(t *testing.T) {
	tracker := newAnthropicTracker()
	events := collectTrackerEvents(t, tracker, []transport.SSEEvent{
		{Type: "content_block_delta", Data: `{"index":0,"delta":{"type":"text_delta","text":"hi"}}`},
	})
	if len(events) != 1 || events[0].Delta.Type != core.DeltaText || events[0].Delta.Text != "hi" {
		t.Fatalf("events = %+v", events)
	}
}

func TestAnthropicTrackerStopReasonMapping(t *testing.T) {
	cases := []struct {
		wire string
		want core.StopReason
	}{
		{"tool_use", core.StopToolUse},
		{"max_tokens", core.StopMaxTokens},
		{"stop_sequence", core.StopStopSequence},
		{"end_turn", core.StopEndTurn},
		{"", core.StopEndTurn},
	}
	for _, tc := range cases {
		if got := mapAnthropicStopReason(tc.wire); got != tc.want {
			t.Errorf("mapAnthropicStopReason(%q) = %q, want %q", tc.wire, got, tc.want)
		}
	}
}

func TestAnthropicTrackerMessageDeltaEmitsStopReasonAndUsage(t *testing.T) {
	tracker := newAnthropicTracker()
	events := collectTrackerEvents(t, tracker, []transport.SSEEvent{
		{Type: "message_delta", Data: `{"delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":7}}`},
	})
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	if *events[0].StopReason != core.StopToolUse {
		t.Errorf("StopReason = %v, want tool_use", *events[0].StopReason)
	}
	if events[0].Usage.OutputTokens != 7 {
		t.Errorf("OutputTokens = %d, want 7", events[0].Usage.OutputTokens)
	}
}

func TestAnthropicTrackerIgnoresPingAndUnknownEvents(t *testing.T) {
	tracker := newAnthropicTracker()
	events := collectTrackerEvents(t, tracker, []transport.SSEEvent{
		{Type: "ping", Data: "{}"},
		{Type: "content_block_stop", Data: `{"index":0}`},
		{Type: "something_new", Data: "{}"},
	})
	if len(events) != 0 {
		t.Fatalf("expected no emitted events, got %+v", events)
	}
}

func TestAnthropicTrackerMessageStop(t *testing.T) {
	tracker := newAnthropicTracker()
	events := collectTrackerEvents(t, tracker, []transport.SSEEvent{{Type: "message_stop"}})
	if len(events) != 1 || events[0].Type != core.EventMessageStop {
		t.Fatalf("events = %+v", events)
	}
}

func TestToAnthropicRequestHoistsToolRoleToUser(t *testing.T) {
	req := core.CompletionRequest{
		Model: "claude-opus-4",
		Messages: []core.Message{
			{Role: core.RoleTool, Content: []core.ContentBlock{core.NewToolResult("toolu_1", "result", false)}},
		},
	}
	wire := toAnthropicRequest(req)
	if len(wire.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(wire.Messages))
	}
	var decoded anthropicMessage
	if err := json.Unmarshal(wire.Messages[0], &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Role != "user" {
		t.Errorf("Role = %q, want user", decoded.Role)
	}
}

func TestToAnthropicRequestDefaultsMaxTokens(t *testing.T) {
	wire := toAnthropicRequest(core.CompletionRequest{Model: "m"})
	if wire.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", wire.MaxTokens)
	}
}

func TestToAnthropicRequestLastToolGetsCacheControl(t *testing.T) {
	req := core.CompletionRequest{
		Model: "m",
		Tools: []core.ToolDefinition{
			{Name: "a"},
			{Name: "b"},
		},
	}
	wire := toAnthropicRequest(req)
	if wire.Tools[0].CacheControl != nil {
		t.Error("first tool should not carry cache_control")
	}
	if wire.Tools[1].CacheControl == nil {
		t.Error("last tool should carry cache_control")
	}
}
