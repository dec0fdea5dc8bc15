package fs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// DiffMetadata is the decoded form of the trailing metadata block write_file
// and update_file append to their output.
type DiffMetadata struct {
	Path        string `json:"path"`
	OldContent  string `json:"old_content"`
	NewContent  string `json:"new_content"`
	UnifiedDiff string `json:"unified_diff"`
}

type diffMetadataWrapper struct {
	DiffMetadata DiffMetadata `json:"diff_metadata"`
}

const (
	metadataStart = "<!-- metadata-start -->"
	metadataEnd   = "<!-- metadata-end -->"
)

// ParseDiffMetadata looks for a trailing diff-metadata block in output,
// returning the decoded metadata, the human-readable text with the block
// stripped, and whether one was found.
func ParseDiffMetadata(output string) (meta DiffMetadata, rest string, ok bool) {
	startIdx := strings.Index(output, metadataStart)
	if startIdx < 0 {
		return DiffMetadata{}, output, false
	}
	endIdx := strings.Index(output, metadataEnd)
	if endIdx < 0 || endIdx < startIdx {
		return DiffMetadata{}, output, false
	}

	jsonStart := startIdx + len(metadataStart)
	raw := strings.TrimSpace(output[jsonStart:endIdx])

	var wrapper diffMetadataWrapper
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return DiffMetadata{}, output, false
	}

	rest = strings.TrimRight(output[:startIdx], "\n")
	return wrapper.DiffMetadata, rest, true
}

// wrapDiffMetadata renders the trailing metadata block the write_file and
// update_file tools append to their output, so the UI layer can render a
// diff instead of re-reading both file versions itself. The unified diff
// text is computed with gotextdiff purely for display; old_content and
// new_content carry the authoritative values.
func wrapDiffMetadata(path, oldContent, newContent string) string {
	edits := myers.ComputeEdits(span.URIFromPath(path), oldContent, newContent)
	unified := fmt.Sprint(gotextdiff.ToUnified(path, path, oldContent, edits))

	meta := diffMetadataWrapper{DiffMetadata: DiffMetadata{
		Path:        path,
		OldContent:  oldContent,
		NewContent:  newContent,
		UnifiedDiff: unified,
	}}
	data, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n\n<!-- metadata-start -->\n%s\n<!-- metadata-end -->", data)
}
