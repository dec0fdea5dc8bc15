package ui

import (
	"github.com/xonecas/symb/internal/tools"
	"github.com/xonecas/symb/internal/tools/fs"
)

// ToolEventForwarder implements tools.EventHandler, translating tool
// lifecycle events into AppEvents. It also detects the diff-metadata block
// on a successful write_file/update_file result and posts a separate
// EventFileDiff so the UI never has to parse tool output itself.
type ToolEventForwarder struct {
	events chan<- AppEvent
}

// NewToolEventForwarder returns a forwarder posting onto events. Register
// it on the same tools.Emitter the Engine reports to.
func NewToolEventForwarder(events chan<- AppEvent) *ToolEventForwarder {
	return &ToolEventForwarder{events: events}
}

// Handle implements tools.EventHandler.
func (f *ToolEventForwarder) Handle(e tools.Event) {
	switch e.Kind {
	case tools.EventStarted:
		f.events <- AppEvent{Kind: EventToolStarted, ToolName: e.Name, ToolInput: e.Input}
	case tools.EventCompleted:
		f.events <- AppEvent{Kind: EventToolCompleted, ToolName: e.Name, ToolResult: e.Result}
		if meta, _, ok := fs.ParseDiffMetadata(e.Result.Output); ok {
			f.events <- AppEvent{
				Kind:     EventFileDiff,
				DiffPath: meta.Path,
				DiffOld:  meta.OldContent,
				DiffNew:  meta.NewContent,
			}
		}
	case tools.EventFailed:
		f.events <- AppEvent{Kind: EventToolFailed, ToolName: e.Name, Err: e.Err}
	}
}
