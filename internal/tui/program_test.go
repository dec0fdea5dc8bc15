package tui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/ui"
)

func TestProgramView(t *testing.T) {
	p := New(nil, "vulcan")

	p.apply(ui.AppEvent{Kind: ui.EventToolStarted, ToolName: "read_file"})
	p.apply(ui.AppEvent{Kind: ui.EventToolCompleted, ToolName: "read_file"})
	msg := core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{core.NewText("done reading the file")}}
	p.apply(ui.AppEvent{Kind: ui.EventLLMComplete, Message: &msg})

	golden.RequireEqual(t, []byte(ansi.Strip(p.View())))
}

func TestProgramViewToolFailure(t *testing.T) {
	p := New(nil, "vulcan")

	p.apply(ui.AppEvent{Kind: ui.EventToolStarted, ToolName: "bash"})
	p.apply(ui.AppEvent{Kind: ui.EventToolFailed, ToolName: "bash", Err: "exit code: 1"})

	golden.RequireEqual(t, []byte(ansi.Strip(p.View())))
}
