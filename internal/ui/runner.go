package ui

import (
	"context"

	"github.com/xonecas/symb/internal/agent"
	"github.com/xonecas/symb/internal/core"
)

// ModelSwitcher is the model-catalog collaborator: given a user-facing
// model name it builds a fresh agent.Loop plus the system prompt for that
// provider family, or an error if the name is unknown or the provider
// can't be constructed (e.g. a missing API key).
type ModelSwitcher interface {
	Switch(modelName string) (loop *agent.Loop, providerName string, systemPrompt string, err error)
}

// Runner is a single-consumer command loop that drives an agent.Loop per
// Run command and posts every resulting event onto Events. Grounded on
// cmd/symb/main.go's composition-root wiring between the loop and the
// TUI's Program.Send, generalized from a direct tea.Program handle to a
// plain channel.
type Runner struct {
	loop     *agent.Loop
	mem      *agent.Memory
	switcher ModelSwitcher

	Commands chan AgentCommand
	Events   chan AppEvent
}

// NewRunner builds a Runner driving loop with mem as its conversation
// memory. switcher may be nil if model switching is not supported by the
// embedding front end.
func NewRunner(loop *agent.Loop, mem *agent.Memory, switcher ModelSwitcher) *Runner {
	return &Runner{
		loop:     loop,
		mem:      mem,
		switcher: switcher,
		Commands: make(chan AgentCommand),
		Events:   make(chan AppEvent, 64),
	}
}

// Run drains Commands until a Shutdown command or ctx is cancelled,
// dispatching each to its handler. It is the runner's single goroutine;
// callers should `go runner.Run(ctx)` once at startup.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-r.Commands:
			if !ok {
				return
			}
			switch cmd.Kind {
			case CommandRun:
				r.runTurn(ctx, cmd.UserMessage)
			case CommandSwitchModel:
				r.switchModel(cmd.ModelName)
			case CommandShutdown:
				return
			}
		}
	}
}

func (r *Runner) runTurn(ctx context.Context, userMessage string) {
	final, usage, err := r.loop.Run(ctx, r.mem, userMessage, func(evt core.StreamEvent) {
		if evt.Type == core.EventContentBlockDelta && evt.Delta != nil && evt.Delta.Type == core.DeltaText {
			r.Events <- AppEvent{Kind: EventLLMChunk, Text: evt.Delta.Text}
		}
	})
	if err != nil {
		r.Events <- AppEvent{Kind: EventLLMError, Err: err.Error()}
		return
	}
	r.Events <- AppEvent{Kind: EventLLMComplete, Message: &final, Usage: usage}
}

func (r *Runner) switchModel(modelName string) {
	if r.switcher == nil {
		r.Events <- AppEvent{Kind: EventModelSwitchError, Err: "model switching is not available"}
		return
	}
	loop, providerName, systemPrompt, err := r.switcher.Switch(modelName)
	if err != nil {
		r.Events <- AppEvent{Kind: EventModelSwitchError, Err: err.Error()}
		return
	}
	r.loop = loop
	r.mem.SystemPrompt = systemPrompt
	r.Events <- AppEvent{Kind: EventModelChanged, Provider: providerName, Model: modelName}
}
