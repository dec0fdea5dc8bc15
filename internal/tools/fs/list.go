package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type listDirInput struct {
	Path            string `json:"path"`
	IncludeHidden   bool   `json:"include_hidden,omitempty"`
	Depth           int    `json:"depth,omitempty"`
	SortBy          string `json:"sort_by,omitempty"`
	RespectGitignore *bool `json:"respect_gitignore,omitempty"`
}

func (in listDirInput) respectGitignore() bool {
	if in.RespectGitignore == nil {
		return true
	}
	return *in.RespectGitignore
}

type dirEntryKind int

const (
	kindDir dirEntryKind = iota
	kindFile
)

type dirEntry struct {
	name       string
	relPath    string
	depth      int
	kind       dirEntryKind
	size       int64
	executable bool
	modified   time.Time
}

// ListDir is the list_dir tool: a gitignore-aware recursive directory
// listing rendered as an indented tree.
type ListDir struct{}

func (ListDir) Name() string { return "list_dir" }

func (ListDir) Description() string {
	return "List the contents of a directory as an indented tree, optionally recursive and gitignore-aware."
}

func (ListDir) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "path": {"type": "string", "description": "Absolute path to the directory to list"},
    "include_hidden": {"type": "boolean", "default": false},
    "depth": {"type": "integer", "description": "Recursion depth, 0 means the maximum of 20 levels", "default": 0},
    "sort_by": {"type": "string", "enum": ["name", "modified", "size"], "default": "name"},
    "respect_gitignore": {"type": "boolean", "default": true}
  },
  "required": ["path"]
}`)
}

func (ListDir) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in listDirInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}
	if err := validateAbsolutePath(in.Path, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}
	info, err := validatePathExists(in.Path)
	if err != nil {
		return toolkit.Error(err.Error())
	}
	if !info.IsDir() {
		return toolkit.Error(fmt.Sprintf("not a directory: %s", in.Path))
	}

	maxDepth := in.Depth
	if maxDepth <= 0 {
		maxDepth = ListMaxDepth
	}

	var matcher *gitignoreMatcher
	if in.respectGitignore() {
		matcher, _ = loadGitignore(filepath.Join(in.Path, ".gitignore"))
	}

	entries, err := collectEntries(in.Path, maxDepth, in.IncludeHidden, matcher)
	if err != nil {
		return toolkit.Error(err.Error())
	}

	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	sortEntries(entries, sortBy)

	return toolkit.Success(renderDirOutput(in.Path, entries, sortBy, in.Depth))
}

func collectEntries(root string, maxDepth int, includeHidden bool, matcher *gitignoreMatcher) ([]dirEntry, error) {
	var out []dirEntry
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if depth > maxDepth {
			return nil
		}
		items, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, item := range items {
			name := item.Name()
			if name == ".git" {
				continue
			}
			if !includeHidden && strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(dir, name)
			rel, _ := filepath.Rel(root, full)
			if matcher != nil && matcher.Excludes(rel, item.IsDir()) {
				continue
			}
			info, err := item.Info()
			if err != nil {
				continue
			}
			if item.IsDir() {
				out = append(out, dirEntry{name: name, relPath: rel, depth: depth, kind: kindDir, modified: info.ModTime()})
				if err := walk(full, depth+1); err != nil {
					return err
				}
			} else {
				out = append(out, dirEntry{
					name:       name,
					relPath:    rel,
					depth:      depth,
					kind:       kindFile,
					size:       info.Size(),
					executable: info.Mode()&0o111 != 0,
					modified:   info.ModTime(),
				})
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func sortEntries(entries []dirEntry, sortBy string) {
	switch sortBy {
	case "modified":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].modified.After(entries[j].modified) })
	case "size":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].size > entries[j].size })
	default:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].relPath < entries[j].relPath })
	}
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func renderDirOutput(path string, entries []dirEntry, sortBy string, depth int) string {
	var files, dirs int
	for _, e := range entries {
		if e.kind == kindDir {
			dirs++
		} else {
			files++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n", path)
	fmt.Fprintf(&b, "Total: %d files, %d directories\n\n", files, dirs)

	if len(entries) == 0 {
		b.WriteString("\nDirectory is empty")
		return b.String()
	}

	for _, e := range entries {
		indent := strings.Repeat("  ", e.depth)
		if e.kind == kindDir {
			fmt.Fprintf(&b, "%s%s/\n", indent, e.name)
		} else {
			suffix := ""
			if e.executable {
				suffix = "*"
			}
			fmt.Fprintf(&b, "%s%s %s%s\n", indent, e.name, formatSize(e.size), suffix)
		}
	}

	fmt.Fprintf(&b, "\n[Sorted by: %s]", sortBy)
	if depth > 0 {
		fmt.Fprintf(&b, "\n[Depth: %d]", depth)
	}
	return b.String()
}
