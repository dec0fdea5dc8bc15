package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/permission"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

// PermissionChecker is the subset of permission.Manager the executor needs,
// kept as an interface so tests can substitute a stub.
type PermissionChecker interface {
	Check(ctx context.Context, req permission.Request) (permission.CheckResult, error)
}

// Executor turns one assistant message's tool_use blocks into the
// corresponding tool_result Message, permission-gating and locking each
// call along the way.
//
// Tool calls within one message are processed sequentially, never in
// parallel; the reader/writer lock doesn't introduce concurrency here, it
// documents the ordering guarantee each tool requires — a read-only tool
// could share its slot with another read-only tool, but a writer must
// never interleave with any other tool.
type Executor struct {
	registry *Registry
	engine   *Engine
	perm     PermissionChecker
	lock     sync.RWMutex
}

// NewExecutor builds an Executor over registry/engine, gating calls through perm.
func NewExecutor(registry *Registry, engine *Engine, perm PermissionChecker) *Executor {
	return &Executor{registry: registry, engine: engine, perm: perm}
}

// ExecuteTools runs every tool_use block in msg and returns one
// RoleTool Message per block, in the same order, each carrying a
// tool_result content block.
func (ex *Executor) ExecuteTools(ctx context.Context, tc toolkit.Context, msg core.Message) []core.Message {
	blocks := msg.ToolUseBlocks()
	out := make([]core.Message, len(blocks))
	for i, b := range blocks {
		out[i] = ex.executeOne(ctx, tc, b)
	}
	return out
}

func (ex *Executor) executeOne(ctx context.Context, tc toolkit.Context, b core.ContentBlock) core.Message {
	_, class, ok := ex.registry.Get(b.ToolName)
	if !ok {
		return toolResultMessage(b.ToolUseID, fmt.Sprintf("Error: unknown tool %q", b.ToolName), true)
	}

	target := ""
	if class.Target != nil {
		if t, err := class.Target(b.ToolInput); err == nil {
			target = t
		}
	}

	if class.PermissionType != permission.FileRead {
		check, err := ex.perm.Check(ctx, permission.Request{
			OperationType: class.PermissionType,
			Target:        target,
		})
		if err != nil {
			return toolResultMessage(b.ToolUseID, fmt.Sprintf("Error: permission check failed: %v", err), true)
		}
		if !check.Allowed {
			feedback := check.Feedback
			if feedback == "" {
				feedback = "Operation blocked by user."
			} else {
				feedback = "Operation blocked by user. User feedback: " + feedback
			}
			return toolResultMessage(b.ToolUseID, feedback, true)
		}
	}

	if class.ReadOnly {
		ex.lock.RLock()
		defer ex.lock.RUnlock()
	} else {
		ex.lock.Lock()
		defer ex.lock.Unlock()
	}

	result, err := ex.engine.Execute(ctx, tc, b.ToolName, b.ToolInput)
	if err != nil {
		return toolResultMessage(b.ToolUseID, fmt.Sprintf("Error: %v", err), true)
	}
	return toolResultMessage(b.ToolUseID, result.ToLLMString(), !result.IsSuccess())
}

func toolResultMessage(toolUseID, content string, isError bool) core.Message {
	return core.Message{
		Role:    core.RoleTool,
		Content: []core.ContentBlock{core.NewToolResult(toolUseID, content, isError)},
	}
}
