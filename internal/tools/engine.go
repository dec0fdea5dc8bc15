package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

// Engine runs a single tool call end to end: emit Started, invoke the
// registry, truncate successful output, categorize failures into
// suggestions, and emit Completed/Failed.
type Engine struct {
	registry *Registry
	emitter  *Emitter
	hints    *ErrorHintMatcher
}

// NewEngine builds an Engine over registry, reporting lifecycle events to
// emitter (which may be NewEmitter() with no handlers attached).
func NewEngine(registry *Registry, emitter *Emitter) *Engine {
	return &Engine{registry: registry, emitter: emitter, hints: NewErrorHintMatcher()}
}

// Execute runs the named tool with input against tc, returning the final
// Result. It never returns a Go error for tool-level failures — those are
// folded into a failing Result — only for truly unrecoverable conditions
// like an unregistered tool name.
func (e *Engine) Execute(ctx context.Context, tc toolkit.Context, name string, input json.RawMessage) (toolkit.Result, error) {
	tool, _, ok := e.registry.Get(name)
	if !ok {
		err := errUnknownTool(name)
		e.emitter.EmitFailed(name, err.Error())
		return toolkit.Result{}, err
	}

	e.emitter.EmitStarted(name, string(input))

	result := func() (r toolkit.Result) {
		defer func() {
			if p := recover(); p != nil {
				r = toolkit.Error(fmt.Sprintf("tool '%s' panicked: %v", name, p))
			}
		}()
		return tool.Execute(ctx, tc, input)
	}()

	if result.IsSuccess() {
		truncated, _ := tc.TruncateOutput(result.Output)
		result.Output = truncated
		e.emitter.EmitCompleted(name, result)
		return result, nil
	}

	ec := ErrorContext{
		WorkingDir:   tc.WorkingDir,
		TimeoutSecs:  tc.DefaultTimeoutMS / 1000,
		MaxSizeBytes: tc.MaxOutputSize,
	}
	if len(result.Suggestions) == 0 {
		if hints := e.hints.Categorize(result.Err, ec); hints != nil {
			result.Suggestions = hints
		}
	}
	e.emitter.EmitFailed(name, result.Err)
	return result, nil
}
