// Package toolkit holds the leaf types every tool implementation and the
// tool substrate both depend on: the per-call Context, the Result a tool
// returns, and the Tool interface itself. Kept separate from package tools
// (registry/engine/executor) so internal/tools/fs and internal/tools/shell
// can implement Tool without importing the substrate that in turn imports
// them.
package toolkit

import (
	"fmt"
	"os"
)

// Context carries the per-process settings every tool execution consults:
// the working directory captured once at startup, and the output-size /
// timeout defaults tools fall back to when a call doesn't override them.
type Context struct {
	WorkingDir       string
	MaxOutputSize    int
	DefaultTimeoutMS int64
}

// NewContext captures the current working directory with the default
// caps (10 MiB output, 120s timeout).
func NewContext() (Context, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Context{}, err
	}
	return Context{
		WorkingDir:       wd,
		MaxOutputSize:    10 * 1024 * 1024,
		DefaultTimeoutMS: 120_000,
	}, nil
}

// WithWorkingDir builds a Context rooted at dir, useful for tests.
func WithWorkingDir(dir string) Context {
	return Context{
		WorkingDir:       dir,
		MaxOutputSize:    10 * 1024 * 1024,
		DefaultTimeoutMS: 120_000,
	}
}

// TruncateOutput caps output at MaxOutputSize characters, appending a
// notice when truncation occurs. Character-based, not byte-based, so a
// multi-byte rune is never split mid-sequence.
func (c Context) TruncateOutput(output string) (string, bool) {
	runes := []rune(output)
	if len(runes) <= c.MaxOutputSize {
		return output, false
	}
	truncated := string(runes[:c.MaxOutputSize])
	notice := formatTruncationNotice(len(runes), c.MaxOutputSize)
	return truncated + notice, true
}

func formatTruncationNotice(total, shown int) string {
	return fmt.Sprintf("\n\n[Output truncated: %d characters total, showing first %d characters]", total, shown)
}
