package core

import "github.com/google/uuid"

// NewToolUseID generates a fresh identifier for a tool_use block. Providers
// that issue their own IDs (most do) override this; it exists for adapters
// and tests that need to synthesize one.
func NewToolUseID() string {
	return "toolu_" + uuid.New().String()
}
