package ui

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xonecas/symb/internal/agent"
	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/permission"
	"github.com/xonecas/symb/internal/tools"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

type stubLLM struct{ reply string }

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Model() string { return "stub-model" }

func (s *stubLLM) StreamCompletion(_ context.Context, _ core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	block := core.NewText("")
	if err := onEvent(core.StreamEvent{Type: core.EventContentBlockStart, Index: 0, ContentBlock: &block}); err != nil {
		return err
	}
	delta := core.ContentDelta{Type: core.DeltaText, Text: s.reply}
	if err := onEvent(core.StreamEvent{Type: core.EventContentBlockDelta, Index: 0, Delta: &delta}); err != nil {
		return err
	}
	return onEvent(core.StreamEvent{Type: core.EventMessageStop})
}

func newTestRunner(t *testing.T, reply string) *Runner {
	t.Helper()
	dir := t.TempDir()
	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)
	engine := tools.NewEngine(registry, tools.NewEmitter())
	mgr, err := permission.NewManager(dir, dir+"/permissions.json", permission.Deny("no"), time.Now())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	executor := tools.NewExecutor(registry, engine, mgr)

	loop := agent.New(agent.Options{
		LLM:      &stubLLM{reply: reply},
		Registry: registry,
		Executor: executor,
		ToolCtx:  toolkit.WithWorkingDir(dir),
		Log:      zerolog.Nop(),
	})
	return NewRunner(loop, agent.NewMemory(""), nil)
}

func TestRunnerRunTurnEmitsChunkThenComplete(t *testing.T) {
	r := newTestRunner(t, "hello there")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Commands <- AgentCommand{Kind: CommandRun, UserMessage: "hi"}

	var chunks string
	var complete *AppEvent
	deadline := time.After(2 * time.Second)
	for complete == nil {
		select {
		case evt := <-r.Events:
			switch evt.Kind {
			case EventLLMChunk:
				chunks += evt.Text
			case EventLLMComplete:
				e := evt
				complete = &e
			case EventLLMError:
				t.Fatalf("unexpected error event: %s", evt.Err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for completion")
		}
	}

	if chunks != "hello there" {
		t.Fatalf("chunks = %q, want %q", chunks, "hello there")
	}
	if complete.Message.Text() != "hello there" {
		t.Fatalf("final message text = %q", complete.Message.Text())
	}
}

func TestRunnerSwitchModelWithoutSwitcher(t *testing.T) {
	r := newTestRunner(t, "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Commands <- AgentCommand{Kind: CommandSwitchModel, ModelName: "gpt-nope"}

	select {
	case evt := <-r.Events:
		if evt.Kind != EventModelSwitchError {
			t.Fatalf("kind = %v, want EventModelSwitchError", evt.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for switch error event")
	}
}
