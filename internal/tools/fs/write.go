package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type writeFileInput struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	CreateDirs *bool  `json:"create_dirs,omitempty"`
}

func (in writeFileInput) createDirs() bool {
	if in.CreateDirs == nil {
		return true
	}
	return *in.CreateDirs
}

// WriteFile is the write_file tool: creates or overwrites a text file
// atomically (write to a .tmp sibling, then rename) and reports a diff
// metadata block for the UI.
type WriteFile struct{}

func (WriteFile) Name() string { return "write_file" }

func (WriteFile) Description() string {
	return "Write content to a file, creating or overwriting it. Parent directories are created by default."
}

func (WriteFile) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "path": {"type": "string", "description": "Absolute path to the file to write"},
    "content": {"type": "string", "description": "Full content to write to the file"},
    "create_dirs": {"type": "boolean", "description": "Create missing parent directories", "default": true}
  },
  "required": ["path", "content"]
}`)
}

func (WriteFile) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in writeFileInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}

	if err := validateAbsolutePath(in.Path, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}
	if len(in.Content) > WriteMaxSize {
		return toolkit.Error(fmt.Sprintf("content size %d bytes exceeds limit of %d bytes", len(in.Content), WriteMaxSize))
	}

	var oldContent string
	if existing, err := os.ReadFile(in.Path); err == nil {
		oldContent = string(existing)
	}

	dir := filepath.Dir(in.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if !in.createDirs() {
			return toolkit.Error(fmt.Sprintf("parent directory does not exist: %s. Use create_dirs: true to create it", dir))
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return toolkit.Error(err.Error())
		}
	}

	tmpPath := in.Path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(in.Content), 0o644); err != nil {
		return toolkit.Error(err.Error())
	}
	if err := os.Rename(tmpPath, in.Path); err != nil {
		os.Remove(tmpPath)
		return toolkit.Error(err.Error())
	}

	lines := strings.Count(in.Content, "\n") + 1
	output := fmt.Sprintf("Wrote %d bytes (%d lines) to %s", len(in.Content), lines, in.Path)
	output += wrapDiffMetadata(in.Path, oldContent, in.Content)

	return toolkit.Success(output)
}
