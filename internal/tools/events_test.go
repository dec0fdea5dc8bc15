package tools

import (
	"testing"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

func TestEmitterFansOutToAllHandlers(t *testing.T) {
	e := NewEmitter()
	var a, b []Event
	e.AddHandler(EventHandlerFunc(func(ev Event) { a = append(a, ev) }))
	e.AddHandler(EventHandlerFunc(func(ev Event) { b = append(b, ev) }))

	e.EmitStarted("read_file", `{"path":"a.go"}`)
	e.EmitCompleted("read_file", toolkit.Success("contents"))
	e.EmitFailed("read_file", "boom")

	for _, handlerEvents := range [][]Event{a, b} {
		if len(handlerEvents) != 3 {
			t.Fatalf("handler received %d events, want 3", len(handlerEvents))
		}
		if handlerEvents[0].Kind != EventStarted || handlerEvents[0].Input != `{"path":"a.go"}` {
			t.Errorf("event[0] = %+v", handlerEvents[0])
		}
		if handlerEvents[1].Kind != EventCompleted || handlerEvents[1].Result.Output != "contents" {
			t.Errorf("event[1] = %+v", handlerEvents[1])
		}
		if handlerEvents[2].Kind != EventFailed || handlerEvents[2].Err != "boom" {
			t.Errorf("event[2] = %+v", handlerEvents[2])
		}
	}
}

func TestEmitterWithNoHandlersDoesNotPanic(t *testing.T) {
	e := NewEmitter()
	e.EmitStarted("noop", "{}")
	e.EmitCompleted("noop", toolkit.Success("ok"))
	e.EmitFailed("noop", "err")
}
