package agent

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/core/agenterr"
	"github.com/xonecas/symb/internal/provider"
	"github.com/xonecas/symb/internal/provider/transport"
	"github.com/xonecas/symb/internal/tools"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

// DefaultMaxIterations bounds how many model/tool round trips a single
// Run may take before giving up.
const DefaultMaxIterations = 10

// ToolRegistry is the subset of tools.Registry the loop needs to build a
// CompletionRequest's tool definitions.
type ToolRegistry interface {
	Definitions() []core.ToolDefinition
}

// Options configures one Loop instance.
type Options struct {
	LLM           provider.Provider
	Registry      ToolRegistry
	Executor      *tools.Executor
	ToolCtx       toolkit.Context
	MaxIterations int
	MaxTokens     int
	Temperature   *float64
	Log           zerolog.Logger
}

// Loop drives the agentic turn: stream a completion, execute any requested
// tools, and iterate until the assistant replies with no tool_use blocks
// or the iteration budget is exhausted. Grounded 1:1 on
// original_source/src/core/augmented_llm/runner.rs.
type Loop struct {
	llm           provider.Provider
	registry      ToolRegistry
	executor      *tools.Executor
	toolCtx       toolkit.Context
	maxIterations int
	maxTokens     int
	temperature   *float64
	log           zerolog.Logger
}

// New builds a Loop from opts, applying the spec's defaults for any zero
// fields (MaxIterations=10, MaxTokens=4096).
func New(opts Options) *Loop {
	maxIter := opts.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	return &Loop{
		llm:           opts.LLM,
		registry:      opts.Registry,
		executor:      opts.Executor,
		toolCtx:       opts.ToolCtx,
		maxIterations: maxIter,
		maxTokens:     maxTokens,
		temperature:   opts.Temperature,
		log:           opts.Log,
	}
}

// OnEvent is called for every raw stream event as it arrives, so a UI can
// render token-by-token output. It must not block for long.
type OnEvent func(core.StreamEvent)

// Run appends userMessage to mem, then iterates the model/tool loop up to
// the configured MaxIterations, forwarding every stream event to onEvent.
// It returns the final terminal assistant message and the accumulated
// per-run token usage, or an error if the model stream fails or the
// iteration budget is exhausted without a tool-use-free reply.
func (l *Loop) Run(ctx context.Context, mem *Memory, userMessage string, onEvent OnEvent) (core.Message, core.Usage, error) {
	mem.Append(core.NewUserMessage(userMessage))

	var total core.Usage
	for iter := 1; iter <= l.maxIterations; iter++ {
		req := l.buildRequest(mem)

		acc := transport.NewAccumulator(l.log)
		var turnUsage core.Usage

		err := l.llm.StreamCompletion(ctx, req, func(evt core.StreamEvent) error {
			if onEvent != nil {
				onEvent(evt)
			}
			switch evt.Type {
			case core.EventContentBlockStart:
				if evt.ContentBlock != nil {
					acc.HandleBlockStart(evt.Index, *evt.ContentBlock)
				}
			case core.EventContentBlockDelta:
				if evt.Delta != nil {
					acc.HandleDelta(evt.Index, *evt.Delta)
				}
			case core.EventMessageStart:
				if evt.Usage != nil {
					turnUsage.Add(*evt.Usage)
				}
			case core.EventMessageDelta:
				if evt.Usage != nil {
					turnUsage.Add(*evt.Usage)
				}
			}
			return nil
		})
		if err != nil {
			return core.Message{}, total, err
		}

		total.Add(turnUsage)

		assistant := core.Message{Role: core.RoleAssistant, Content: acc.IntoSortedBlocks()}
		mem.Append(assistant)

		if !assistant.HasToolUse() {
			return assistant, total, nil
		}

		toolMessages := l.executor.ExecuteTools(ctx, l.toolCtx, assistant)
		mem.AppendAll(toolMessages)
	}

	return core.Message{}, total, &agenterr.MaxIterationsExceededError{Iterations: l.maxIterations}
}


func (l *Loop) buildRequest(mem *Memory) core.CompletionRequest {
	return core.CompletionRequest{
		Model:       l.llm.Model(),
		System:      mem.SystemPrompt,
		Messages:    mem.Snapshot(),
		Tools:       l.registry.Definitions(),
		MaxTokens:   l.maxTokens,
		Temperature: l.temperature,
		Stream:      true,
	}
}
