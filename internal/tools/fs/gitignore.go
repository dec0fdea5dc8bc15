package fs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ignoreRule is one compiled .gitignore line.
type ignoreRule struct {
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
}

// gitignoreMatcher decides whether a relative path is excluded by the
// rules of a single .gitignore file. list_dir, glob, and grep each load
// one from the root they're searching and consult it per visited entry.
type gitignoreMatcher struct {
	rules []ignoreRule
}

// loadGitignore reads path and compiles its rules. A missing file yields
// an empty (always-permissive) matcher rather than an error.
func loadGitignore(path string) (*gitignoreMatcher, error) {
	m := &gitignoreMatcher{}
	if path == "" {
		return m, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rule, ok := compileIgnoreRule(line); ok {
			m.rules = append(m.rules, rule)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Excludes reports whether rel (slash-separated, relative to the
// .gitignore's directory) should be skipped. Later rules override
// earlier ones, matching git's own last-match-wins precedence.
func (m *gitignoreMatcher) Excludes(rel string, isDir bool) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)

	excluded := false
	for _, rule := range m.rules {
		if rule.dirOnly {
			target := rel
			if !isDir {
				target = filepath.ToSlash(filepath.Dir(rel))
			}
			if rule.re.MatchString(target) {
				excluded = !rule.negate
			}
			continue
		}
		if rule.re.MatchString(rel) || (!rule.anchored && rule.re.MatchString(filepath.Base(rel))) {
			excluded = !rule.negate
		}
	}
	return excluded
}

// compileIgnoreRule turns one non-blank, non-comment .gitignore line into
// an ignoreRule. Returns ok=false if the resulting pattern doesn't compile
// as a regex, in which case the line is dropped rather than aborting the
// whole file.
func compileIgnoreRule(line string) (ignoreRule, bool) {
	rule := ignoreRule{}

	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	rule.anchored = strings.HasPrefix(line, "/")
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	re, err := regexp.Compile(ignoreLineToRegex(line))
	if err != nil {
		return ignoreRule{}, false
	}
	rule.re = re
	return rule, true
}

// ignoreLineToRegex renders a gitignore glob body into an equivalent
// anchored regex: "/" roots the match at the .gitignore's directory,
// otherwise the pattern may start at any path segment; "**" spans
// directories, "*" and "?" stop at a slash, and bracket classes pass
// through untouched.
func ignoreLineToRegex(pattern string) string {
	var out strings.Builder

	rooted := strings.HasPrefix(pattern, "/")
	if rooted {
		out.WriteString("^")
		pattern = pattern[1:]
	} else {
		out.WriteString("(^|/)")
	}

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					out.WriteString("(.*/)?")
					i += 3
					continue
				}
				out.WriteString(".*")
				i += 2
				continue
			}
			out.WriteString("[^/]*")
			i++
		case '?':
			out.WriteString("[^/]")
			i++
		case '.', '+', '(', ')', '|', '^', '$', '@', '%':
			out.WriteByte('\\')
			out.WriteByte(c)
			i++
		case '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				out.WriteString("\\[")
				i++
				continue
			}
			out.WriteString(pattern[i : i+end+1])
			i += end + 1
		case '\\':
			if i+1 < len(pattern) {
				out.WriteByte('\\')
				out.WriteByte(pattern[i+1])
				i += 2
				continue
			}
			out.WriteString("\\\\")
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}

	if rooted {
		out.WriteString("$")
	} else {
		out.WriteString("(/.*)?$")
	}
	return out.String()
}
