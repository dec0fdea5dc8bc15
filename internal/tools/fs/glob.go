package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type globInput struct {
	Pattern          string `json:"pattern"`
	BaseDir          string `json:"base_dir,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	RespectGitignore *bool  `json:"respect_gitignore,omitempty"`
}

func (in globInput) respectGitignore() bool {
	if in.RespectGitignore == nil {
		return true
	}
	return *in.RespectGitignore
}

type globMatch struct {
	relPath  string
	modified time.Time
}

// Glob is the glob tool: finds files whose relative path or basename
// matches a shell glob pattern, sorted by modification time descending.
type Glob struct{}

func (Glob) Name() string { return "glob" }

func (Glob) Description() string {
	return "Find files matching a glob pattern, most recently modified first."
}

func (Glob) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "pattern": {"type": "string", "description": "Glob pattern, e.g. **/*.go"},
    "base_dir": {"type": "string", "description": "Absolute directory to search from; defaults to the working directory"},
    "limit": {"type": "integer", "default": 100},
    "respect_gitignore": {"type": "boolean", "default": true}
  },
  "required": ["pattern"]
}`)
}

func (Glob) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in globInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}

	baseDir := in.BaseDir
	if baseDir == "" {
		baseDir = tc.WorkingDir
	}
	if err := validateAbsolutePath(baseDir, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}

	limit := in.Limit
	if limit <= 0 {
		limit = GlobDefaultLimit
	}
	if limit > GlobMaxLimit {
		limit = GlobMaxLimit
	}

	var matcher *gitignoreMatcher
	if in.respectGitignore() {
		matcher, _ = loadGitignore(filepath.Join(baseDir, ".gitignore"))
	}

	var all []globMatch
	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(baseDir, path)
		if matcher != nil && matcher.Excludes(rel, false) {
			return nil
		}
		matched, _ := filepath.Match(in.Pattern, rel)
		if !matched {
			matched, _ = filepath.Match(in.Pattern, filepath.Base(path))
		}
		if !matched {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		all = append(all, globMatch{relPath: rel, modified: info.ModTime()})
		return nil
	})
	if err != nil {
		return toolkit.Error(err.Error())
	}

	if len(all) == 0 {
		return toolkit.Success(fmt.Sprintf("No files found matching pattern: %s", in.Pattern))
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].modified.After(all[j].modified) })
	total := len(all)
	shown := all
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var b []byte
	b = append(b, fmt.Appendf(nil, "Found %d files matching %q:\n\n", total, in.Pattern)...)
	for _, m := range shown {
		b = append(b, fmt.Appendf(nil, "%s (modified %s)\n", m.relPath, timeAgo(m.modified))...)
	}
	b = append(b, fmt.Appendf(nil, "\n[Showing %d of %d results]", len(shown), total)...)
	b = append(b, fmt.Appendf(nil, "\n[Pattern: %s]", in.Pattern)...)
	if in.respectGitignore() {
		b = append(b, []byte("\n[Respecting .gitignore]")...)
	}

	return toolkit.Success(string(b))
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
