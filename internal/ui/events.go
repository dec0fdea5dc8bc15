// Package ui defines the typed event bus between the agent runner and a
// terminal front end: a command channel carrying user intent (run a turn,
// switch models, shut down) and an event channel carrying everything the
// agent produces back (stream deltas, tool lifecycle, permission prompts,
// file diffs, model switches). Grounded on internal/tui/update_llm.go's
// message-type enumeration style, generalized from bubbletea's tea.Msg
// interface values to a single typed struct per channel so the core has
// no TUI dependency.
package ui

import (
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/permission"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

// CommandKind discriminates AgentCommand's tagged union.
type CommandKind string

const (
	CommandRun          CommandKind = "run"
	CommandSwitchModel  CommandKind = "switch_model"
	CommandShutdown     CommandKind = "shutdown"
)

// AgentCommand is sent from the UI to the AgentRunner.
type AgentCommand struct {
	Kind CommandKind

	// CommandRun
	UserMessage string

	// CommandSwitchModel
	ModelName string
}

// EventKind discriminates AppEvent's tagged union.
type EventKind string

const (
	EventLLMChunk          EventKind = "llm_chunk"
	EventLLMComplete       EventKind = "llm_complete"
	EventLLMError          EventKind = "llm_error"
	EventToolStarted       EventKind = "tool_started"
	EventToolCompleted     EventKind = "tool_completed"
	EventToolFailed        EventKind = "tool_failed"
	EventPermissionRequired EventKind = "permission_required"
	EventFileDiff          EventKind = "file_diff"
	EventModelChanged      EventKind = "model_changed"
	EventModelSwitchError  EventKind = "model_switch_error"
	EventTick              EventKind = "tick"
)

// PermissionResponseChan is the one-shot channel a PermissionRequired event
// carries; the UI sends exactly one response then closes nothing — the
// permission UI reads once and discards the channel.
type PermissionResponseChan chan PermissionAnswer

// PermissionAnswer is what the UI sends back for a PermissionRequired event.
type PermissionAnswer struct {
	Response permission.Response
	Feedback string
}

// AppEvent is one item the AgentRunner posts to the UI. Only the fields
// relevant to Kind are populated.
type AppEvent struct {
	Kind EventKind

	// EventLLMChunk: text-delta content only.
	Text string

	// EventLLMComplete
	Message *core.Message
	Usage   core.Usage

	// EventLLMError / EventModelSwitchError
	Err string

	// EventToolStarted / EventToolCompleted / EventToolFailed
	ToolName   string
	ToolInput  string
	ToolResult toolkit.Result

	// EventPermissionRequired
	PermissionRequest  permission.Request
	PermissionResponse PermissionResponseChan

	// EventFileDiff
	DiffPath string
	DiffOld  string
	DiffNew  string

	// EventModelChanged
	Provider string
	Model    string
}
