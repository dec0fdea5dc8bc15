package toolkit

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/permission"
)

// Tool is one callable capability the agent can invoke: a name and
// description advertised to the model, a JSON Schema describing its input,
// and the function that actually performs the work. Schemas are
// hand-written json.RawMessage literals per tool rather than derived via
// reflection.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, tc Context, input json.RawMessage) Result
}

// Classification tells the executor how to permission-gate and lock a
// tool call before running it: which PermissionType it requires, what
// target string identifies the resource (a path, a command), and whether
// it only reads (RLock) or may mutate (Lock).
type Classification struct {
	PermissionType permission.Type
	ReadOnly       bool
	// Target extracts the permission-check target (a path or command
	// string) from the tool's raw input. Returns an error if input can't
	// be parsed at all, which the executor reports as a tool error
	// rather than a permission denial.
	Target func(input json.RawMessage) (string, error)
}

// Definition converts a Tool into the wire-facing core.ToolDefinition the
// provider adapters send to the model.
func Definition(t Tool) core.ToolDefinition {
	return core.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.InputSchema(),
	}
}

// SimpleTarget builds a Classification.Target that extracts a single named
// string field from the tool's JSON input, the common case for every fs
// tool (path/pattern) and the shell tool (command).
func SimpleTarget(field string) func(json.RawMessage) (string, error) {
	return func(input json.RawMessage) (string, error) {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(input, &m); err != nil {
			return "", err
		}
		raw, ok := m[field]
		if !ok {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
}
