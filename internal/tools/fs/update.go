package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type updateFileInput struct {
	Path        string `json:"path"`
	OldString   string `json:"old_string"`
	NewString   string `json:"new_string"`
	ReplaceAll  bool   `json:"replace_all,omitempty"`
}

// UpdateFile is the update_file tool: a literal substring replace with
// occurrence counting, refusing ambiguous single replacements unless
// replace_all is set.
type UpdateFile struct{}

func (UpdateFile) Name() string { return "update_file" }

func (UpdateFile) Description() string {
	return "Replace an exact substring in a file. Fails if old_string isn't found, or is ambiguous unless replace_all is set."
}

func (UpdateFile) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "path": {"type": "string", "description": "Absolute path to the file to update"},
    "old_string": {"type": "string", "description": "Exact text to find"},
    "new_string": {"type": "string", "description": "Text to replace it with"},
    "replace_all": {"type": "boolean", "description": "Replace every occurrence instead of requiring a unique match", "default": false}
  },
  "required": ["path", "old_string", "new_string"]
}`)
}

func (UpdateFile) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in updateFileInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}
	if err := validateAbsolutePath(in.Path, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return toolkit.Error(fmt.Sprintf("no such file or directory: %s", in.Path))
		}
		return toolkit.Error(err.Error())
	}
	oldContent := string(data)

	count := strings.Count(oldContent, in.OldString)
	if count == 0 {
		return toolkit.Error(fmt.Sprintf("could not find old_string in file. Make sure it matches exactly:\n%s", in.OldString))
	}
	if count > 1 && !in.ReplaceAll {
		return toolkit.Error(fmt.Sprintf("found %d occurrences of old_string. Use replace_all=true to replace all, or provide a longer, unique string.", count))
	}

	var newContent string
	if in.ReplaceAll {
		newContent = strings.ReplaceAll(oldContent, in.OldString, in.NewString)
	} else {
		newContent = strings.Replace(oldContent, in.OldString, in.NewString, 1)
	}

	if newContent == oldContent {
		return toolkit.Success(fmt.Sprintf("No changes made to %s (old_string and new_string are identical)", in.Path))
	}

	tmpPath := in.Path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(newContent), 0o644); err != nil {
		return toolkit.Error(err.Error())
	}
	if err := os.Rename(tmpPath, in.Path); err != nil {
		os.Remove(tmpPath)
		return toolkit.Error(err.Error())
	}

	occurrences := count
	if !in.ReplaceAll {
		occurrences = 1
	}
	output := fmt.Sprintf("Updated %s (%d occurrence(s))", in.Path, occurrences)
	output += wrapDiffMetadata(in.Path, oldContent, newContent)

	return toolkit.Success(output)
}
