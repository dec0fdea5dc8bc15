package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

type grepInput struct {
	Pattern          string `json:"pattern"`
	Path             string `json:"path,omitempty"`
	Glob             string `json:"glob,omitempty"`
	IgnoreCase       bool   `json:"ignore_case,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	Context          int    `json:"context,omitempty"`
	RespectGitignore *bool  `json:"respect_gitignore,omitempty"`
}

func (in grepInput) respectGitignore() bool {
	if in.RespectGitignore == nil {
		return true
	}
	return *in.RespectGitignore
}

type grepMatch struct {
	path      string
	lineNum   int
	line      string
	before    []string
	after     []string
}

// Grep is the grep tool: regex content search across a directory tree with
// optional context lines, binary detection, and glob/gitignore filtering.
type Grep struct{}

func (Grep) Name() string { return "grep" }

func (Grep) Description() string {
	return "Search file contents for a regular expression, with optional context lines."
}

func (Grep) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "pattern": {"type": "string", "description": "Regular expression to search for"},
    "path": {"type": "string", "description": "Absolute directory to search; defaults to the working directory"},
    "glob": {"type": "string", "description": "Restrict search to files matching this glob"},
    "ignore_case": {"type": "boolean", "default": false},
    "limit": {"type": "integer", "default": 100},
    "context": {"type": "integer", "description": "Lines of context around each match", "default": 0},
    "respect_gitignore": {"type": "boolean", "default": true}
  },
  "required": ["pattern"]
}`)
}

func (Grep) Execute(_ context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in grepInput
	if err := unmarshalInput(input, &in); err != nil {
		return toolkit.Error(err.Error())
	}

	root := in.Path
	if root == "" {
		root = tc.WorkingDir
	}
	if err := validateAbsolutePath(root, tc.WorkingDir); err != nil {
		return toolkit.Error(err.Error())
	}

	limit := in.Limit
	if limit <= 0 {
		limit = GrepDefaultLimit
	}
	if limit > GrepMaxLimit {
		limit = GrepMaxLimit
	}
	ctxLines := in.Context
	if ctxLines > GrepMaxContext {
		ctxLines = GrepMaxContext
	}

	pattern := in.Pattern
	if in.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return toolkit.Error(fmt.Sprintf("invalid regular expression: %v", err))
	}

	var matcher *gitignoreMatcher
	if in.respectGitignore() {
		matcher, _ = loadGitignore(filepath.Join(root, ".gitignore"))
	}

	var matches []grepMatch
	total := 0
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if matcher != nil && matcher.Excludes(rel, false) {
			return nil
		}
		if in.Glob != "" {
			if ok, _ := filepath.Match(in.Glob, filepath.Base(path)); !ok {
				if ok2, _ := filepath.Match(in.Glob, rel); !ok2 {
					return nil
				}
			}
		}
		found, err := searchFile(path, rel, re, ctxLines, limit-len(matches))
		if err != nil {
			return nil
		}
		total += len(found)
		if len(matches) < limit {
			remaining := limit - len(matches)
			if len(found) > remaining {
				found = found[:remaining]
			}
			matches = append(matches, found...)
		}
		return nil
	})
	if err != nil {
		return toolkit.Error(err.Error())
	}

	if len(matches) == 0 {
		return toolkit.Success(fmt.Sprintf("No matches found for pattern: %q", in.Pattern))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for %q:\n\n", total, in.Pattern)
	for _, m := range matches {
		fmt.Fprintf(&b, "%s:%d:", m.path, m.lineNum)
		if ctxLines > 0 {
			b.WriteByte('\n')
			for _, l := range m.before {
				fmt.Fprintf(&b, "   %s\n", l)
			}
			fmt.Fprintf(&b, " > %s\n", m.line)
			for _, l := range m.after {
				fmt.Fprintf(&b, "   %s\n", l)
			}
		} else {
			fmt.Fprintf(&b, " %s\n", m.line)
		}
	}
	fmt.Fprintf(&b, "\n[Showing %d of %d matches]", len(matches), total)
	fmt.Fprintf(&b, "\n[Pattern: %s]", in.Pattern)
	if in.respectGitignore() {
		b.WriteString("\n[Respecting .gitignore]")
	}

	return toolkit.Success(b.String())
}

func searchFile(absPath, relPath string, re *regexp.Regexp, ctxLines, remaining int) ([]grepMatch, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	for _, b := range data {
		if b == 0 {
			return nil, nil
		}
	}

	lines := strings.Split(string(data), "\n")
	var out []grepMatch
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		m := grepMatch{path: relPath, lineNum: i + 1, line: line}
		if ctxLines > 0 {
			start := i - ctxLines
			if start < 0 {
				start = 0
			}
			m.before = append([]string{}, lines[start:i]...)
			end := i + 1 + ctxLines
			if end > len(lines) {
				end = len(lines)
			}
			m.after = append([]string{}, lines[i+1:end]...)
		}
		out = append(out, m)
	}
	return out, nil
}
