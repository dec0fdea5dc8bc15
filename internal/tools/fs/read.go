package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type readFileInput struct {
	Path   string `json:"path"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// ReadFile is the read_file tool: returns a 1-indexed, line-numbered slice
// of a text file, truncating long lines and refusing binary content.
type ReadFile struct{}

func (ReadFile) Name() string { return "read_file" }

func (ReadFile) Description() string {
	return "Read a text file from disk, optionally starting at a given line offset and limited to a number of lines."
}

func (ReadFile) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "path": {"type": "string", "description": "Absolute path to the file to read"},
    "offset": {"type": "integer", "description": "1-indexed line to start reading from", "default": 1},
    "limit": {"type": "integer", "description": "Maximum number of lines to return", "default": 2000}
  },
  "required": ["path"]
}`)
}

func (ReadFile) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in readFileInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}
	if in.Offset == 0 {
		in.Offset = ReadDefaultOffset
	}
	if in.Limit == 0 {
		in.Limit = ReadDefaultLimit
	}
	if in.Limit > ReadMaxLimit {
		in.Limit = ReadMaxLimit
	}

	if err := validateAbsolutePath(in.Path, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}
	info, err := validatePathExists(in.Path)
	if err != nil {
		return toolkit.Error(err.Error())
	}
	if info.IsDir() {
		return toolkit.Error(fmt.Sprintf("path is a directory, not a file: %s", in.Path))
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		return toolkit.Error(err.Error())
	}
	if isLikelyBinary(data) {
		return toolkit.Error(fmt.Sprintf("binary file detected, not valid UTF-8 text: %s", in.Path))
	}

	content := string(data)
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total := len(lines)

	if in.Offset > total {
		return toolkit.Success(fmt.Sprintf("Offset %d is beyond the end of the file (%d total lines)", in.Offset, total))
	}

	startIdx := in.Offset - 1
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + in.Limit
	if endIdx > total {
		endIdx = total
	}

	var b strings.Builder
	for i := startIdx; i < endIdx; i++ {
		line := lines[i]
		if len([]rune(line)) > ReadLineMaxChars {
			runes := []rune(line)
			line = string(runes[:ReadLineMaxChars]) + "...[truncated]"
		}
		fmt.Fprintf(&b, "L%d: %s\n", i+1, line)
	}
	fmt.Fprintf(&b, "\n[Showing lines %d-%d of %d total]", startIdx+1, endIdx, total)

	return toolkit.Success(b.String())
}
