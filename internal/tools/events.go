package tools

import "github.com/xonecas/symb/internal/tools/toolkit"

// EventKind discriminates the ToolEvent tagged union.
type EventKind int

const (
	EventStarted EventKind = iota
	EventCompleted
	EventFailed
)

// Event is one lifecycle notification for a single tool execution.
type Event struct {
	Kind  EventKind
	Name  string
	Input  string          // EventStarted
	Result toolkit.Result // EventCompleted
	Err    string          // EventFailed
}

// EventHandler receives every Event emitted by an Emitter, synchronously.
type EventHandler interface {
	Handle(Event)
}

// EventHandlerFunc adapts a plain function to EventHandler.
type EventHandlerFunc func(Event)

func (f EventHandlerFunc) Handle(e Event) { f(e) }

// Emitter fans out tool lifecycle events to every registered handler.
type Emitter struct {
	handlers []EventHandler
}

// NewEmitter returns an Emitter with no handlers registered.
func NewEmitter() *Emitter { return &Emitter{} }

// AddHandler registers a handler to receive future events.
func (e *Emitter) AddHandler(h EventHandler) { e.handlers = append(e.handlers, h) }

func (e *Emitter) emit(ev Event) {
	for _, h := range e.handlers {
		h.Handle(ev)
	}
}

// EmitStarted announces that tool name is about to run with input.
func (e *Emitter) EmitStarted(name, input string) {
	e.emit(Event{Kind: EventStarted, Name: name, Input: input})
}

// EmitCompleted announces that tool name finished, carrying its Result.
func (e *Emitter) EmitCompleted(name string, result toolkit.Result) {
	e.emit(Event{Kind: EventCompleted, Name: name, Result: result})
}

// EmitFailed announces that tool name failed with err: an unregistered tool
// name, a failing Result, or a panic the engine recovered.
func (e *Emitter) EmitFailed(name, err string) {
	e.emit(Event{Kind: EventFailed, Name: name, Err: err})
}
