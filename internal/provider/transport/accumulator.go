package transport

import (
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"
	"github.com/xonecas/symb/internal/core"
)

// Accumulator assembles a sequence of core.StreamEvent into finished
// content blocks. It tolerates sparse and out-of-order block indices, and
// silently discards deltas that target a block it never saw started.
// Grounded 1:1 on original_source's core/augmented_llm/stream_accumulator.rs.
type Accumulator struct {
	blocks      map[int]*core.ContentBlock
	toolInputs  map[int]*stringBuilder
	log         zerolog.Logger
}

type stringBuilder struct{ s string }

func (b *stringBuilder) WriteString(s string) { b.s += s }

// NewAccumulator returns an empty accumulator.
func NewAccumulator(log zerolog.Logger) *Accumulator {
	return &Accumulator{
		blocks:     make(map[int]*core.ContentBlock),
		toolInputs: make(map[int]*stringBuilder),
		log:        log,
	}
}

// HandleBlockStart records a newly started block at the given index.
func (a *Accumulator) HandleBlockStart(index int, block core.ContentBlock) {
	b := block
	a.blocks[index] = &b
	if block.Type == core.BlockToolUse {
		a.toolInputs[index] = &stringBuilder{}
	}
}

// HandleDelta applies an incremental update to the block at index. A delta
// for an index with no corresponding start is discarded.
func (a *Accumulator) HandleDelta(index int, delta core.ContentDelta) {
	block, ok := a.blocks[index]
	if !ok {
		a.log.Debug().Int("index", index).Msg("discarding delta for unknown block")
		return
	}
	switch delta.Type {
	case core.DeltaText:
		block.Text += delta.Text
	case core.DeltaThinking:
		block.Thinking += delta.Thinking
	case core.DeltaSignature:
		block.Signature += delta.Signature
	case core.DeltaInputJSON:
		if buf, ok := a.toolInputs[index]; ok {
			buf.WriteString(delta.PartialJSON)
		}
	}
}

// IntoSortedBlocks finalizes every accumulated block (merging buffered
// tool-input JSON into its ToolUse block, tolerating a parse failure by
// leaving the prior ToolInput value and logging rather than erroring) and
// returns them ordered by index.
func (a *Accumulator) IntoSortedBlocks() []core.ContentBlock {
	a.mergeToolInputs()

	indices := make([]int, 0, len(a.blocks))
	for idx := range a.blocks {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]core.ContentBlock, 0, len(indices))
	for _, idx := range indices {
		out = append(out, *a.blocks[idx])
	}
	return out
}

func (a *Accumulator) mergeToolInputs() {
	for idx, buf := range a.toolInputs {
		block, ok := a.blocks[idx]
		if !ok {
			continue
		}
		raw := buf.s
		if raw == "" {
			block.ToolInput = json.RawMessage("{}")
			continue
		}
		if !json.Valid([]byte(raw)) {
			a.log.Warn().Int("index", idx).Str("tool", block.ToolName).
				Msg("tool input did not parse as JSON; keeping prior value")
			if block.ToolInput == nil {
				block.ToolInput = json.RawMessage("{}")
			}
			continue
		}
		block.ToolInput = json.RawMessage(raw)
	}
}
