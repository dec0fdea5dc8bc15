package provider

import (
	"testing"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/provider/transport"
)

func TestResponsesTrackerTextDelta(t *testing.T) {
	tracker := newResponsesTracker()
	var got []core.StreamEvent
	err := tracker.handle(
		transport.SSEEvent{Type: "response.output_text.delta", Data: `{"delta":"hi"}`},
		func(se core.StreamEvent) error { got = append(got, se); return nil },
	)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(got) != 1 || got[0].Delta.Text != "hi" {
		t.Fatalf("got = %+v", got)
	}
}

func TestResponsesTrackerFunctionCallLifecycle(t *testing.T) {
	tracker := newResponsesTracker()
	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }

	added := `{"item":{"type":"function_call","id":"item_1","name":"read_file","call_id":"call_1"}}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.output_item.added", Data: added}, onEvent); err != nil {
		t.Fatalf("handle(added): %v", err)
	}
	argsDelta := `{"item_id":"item_1","delta":"{\"path\":\"a.go\"}"}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.function_call_arguments.delta", Data: argsDelta}, onEvent); err != nil {
		t.Fatalf("handle(args delta): %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Type != core.EventContentBlockStart || got[0].ContentBlock.ToolUseID != "call_1" {
		t.Errorf("start event = %+v", got[0])
	}
	if got[1].Type != core.EventContentBlockDelta || got[1].Index != got[0].Index {
		t.Errorf("delta event = %+v, want matching index %d", got[1], got[0].Index)
	}
}

func TestResponsesTrackerIgnoresArgumentsDeltaForUnknownItem(t *testing.T) {
	tracker := newResponsesTracker()
	called := false
	onEvent := func(se core.StreamEvent) error { called = true; return nil }
	data := `{"item_id":"ghost","delta":"{}"}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.function_call_arguments.delta", Data: data}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if called {
		t.Error("expected no event for unknown item_id")
	}
}

func TestResponsesTrackerCompletedWithoutToolCallsIsEndTurn(t *testing.T) {
	tracker := newResponsesTracker()
	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }

	data := `{"response":{"usage":{"input_tokens":10,"output_tokens":4}}}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.completed", Data: data}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if *got[0].StopReason != core.StopEndTurn {
		t.Errorf("StopReason = %v, want end_turn", *got[0].StopReason)
	}
	if got[0].Usage.InputTokens != 10 || got[0].Usage.OutputTokens != 4 {
		t.Errorf("Usage = %+v", got[0].Usage)
	}
	if got[1].Type != core.EventMessageStop {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestResponsesTrackerCompletedWithToolCallsIsStopToolUse(t *testing.T) {
	tracker := newResponsesTracker()
	added := `{"item":{"type":"function_call","id":"item_1","name":"grep","call_id":"call_1"}}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.output_item.added", Data: added}, func(core.StreamEvent) error { return nil }); err != nil {
		t.Fatalf("handle(added): %v", err)
	}

	var got []core.StreamEvent
	onEvent := func(se core.StreamEvent) error { got = append(got, se); return nil }
	if err := tracker.handle(transport.SSEEvent{Type: "response.done", Data: `{}`}, onEvent); err != nil {
		t.Fatalf("handle(done): %v", err)
	}
	if *got[0].StopReason != core.StopToolUse {
		t.Errorf("StopReason = %v, want tool_use", *got[0].StopReason)
	}
}

func TestResponsesTrackerIgnoresNonFunctionCallItems(t *testing.T) {
	tracker := newResponsesTracker()
	called := false
	onEvent := func(se core.StreamEvent) error { called = true; return nil }
	data := `{"item":{"type":"message","id":"item_1"}}`
	if err := tracker.handle(transport.SSEEvent{Type: "response.output_item.added", Data: data}, onEvent); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if called {
		t.Error("expected no event for non-function_call item")
	}
}

func TestToResponsesInputMapsMessageKinds(t *testing.T) {
	messages := []core.Message{
		core.NewUserMessage("hi"),
		{Role: core.RoleAssistant, Content: []core.ContentBlock{core.NewText("ok"), core.NewToolUse("call_1", "grep", nil)}},
		{Role: core.RoleTool, Content: []core.ContentBlock{core.NewToolResult("call_1", "result", false)}},
	}
	items := toResponsesInput(messages)
	if len(items) != 4 {
		t.Fatalf("len(items) = %d, want 4 (user msg, assistant text, function_call, function_call_output)", len(items))
	}
	if items[0].Type != "message" || items[0].Role != "user" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[2].Type != "function_call" || items[2].Name != "grep" {
		t.Errorf("items[2] = %+v", items[2])
	}
	if items[3].Type != "function_call_output" || items[3].Output != "result" {
		t.Errorf("items[3] = %+v", items[3])
	}
}
