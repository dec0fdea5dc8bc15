package tools

import (
	"fmt"
	"strings"
)

// ErrorContext supplies the dynamic values a few error patterns interpolate
// into their suggestions (the working directory, a timeout, a size cap).
type ErrorContext struct {
	WorkingDir   string
	TimeoutSecs  int64
	MaxSizeBytes int
}

type errorPattern struct {
	keywords    []string
	suggestions func(msg string, ec ErrorContext) []string
}

func staticSuggestions(ss ...string) func(string, ErrorContext) []string {
	return func(string, ErrorContext) []string { return ss }
}

func containsAny(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// ErrorHintMatcher classifies a raw tool error message into remediation
// suggestions for the model, trying each pattern in order and returning
// the first match. Consolidates what used to be duplicate inline copies
// of the same pattern list into a single implementation.
type ErrorHintMatcher struct {
	patterns []errorPattern
}

// NewErrorHintMatcher builds the matcher with the fixed, ordered pattern
// list below.
func NewErrorHintMatcher() *ErrorHintMatcher {
	return &ErrorHintMatcher{patterns: []errorPattern{
		{
			keywords: []string{"command not found", "not recognized"},
			suggestions: func(string, ErrorContext) []string {
				return []string{
					"Check that the command is installed and on PATH",
					"Use an absolute path to the binary if it's installed but not on PATH",
				}
			},
		},
		{
			keywords: []string{"no such file", "not found"},
			suggestions: staticSuggestions(
				"Check that the path is correct and the file exists",
				"Use list_dir or glob to find the correct path",
			),
		},
		{
			keywords: []string{"permission denied", "access denied"},
			suggestions: staticSuggestions(
				"Check file permissions",
				"The operation may require elevated privileges",
			),
		},
		{
			keywords: []string{"not an absolute path", "must be absolute"},
			suggestions: func(_ string, ec ErrorContext) []string {
				return []string{
					fmt.Sprintf("Provide an absolute path starting from %s", ec.WorkingDir),
				}
			},
		},
		{
			keywords: []string{"timeout", "timed out"},
			suggestions: func(_ string, ec ErrorContext) []string {
				return []string{
					fmt.Sprintf("The operation exceeded its %ds timeout; try a smaller scope or a longer timeout", ec.TimeoutSecs),
				}
			},
		},
		{
			keywords: []string{"file too large", "exceeds limit"},
			suggestions: func(_ string, ec ErrorContext) []string {
				return []string{
					fmt.Sprintf("The file exceeds the %d byte limit; read it in smaller chunks with offset/limit", ec.MaxSizeBytes),
				}
			},
		},
		{
			keywords: []string{"invalid path", "bad path"},
			suggestions: staticSuggestions("Check the path for typos or invalid characters"),
		},
		{
			keywords: []string{"binary file", "not valid utf-8"},
			suggestions: staticSuggestions(
				"This tool only reads text files; binary files aren't supported",
			),
		},
		{
			keywords: []string{"not a directory"},
			suggestions: staticSuggestions("The path points to a file, not a directory"),
		},
		{
			keywords: []string{"invalid pattern", "invalid glob", "glob"},
			suggestions: staticSuggestions("Check the glob pattern syntax"),
		},
		{
			keywords: []string{"regex", "invalid regular expression"},
			suggestions: staticSuggestions("Check the regular expression syntax"),
		},
		{
			keywords: []string{"parent directory"},
			suggestions: staticSuggestions(
				"Pass create_dirs: true to create missing parent directories",
			),
		},
	}}
}

// Categorize returns the suggestions for the first pattern whose keywords
// appear (case-insensitively) in msg, or nil if none match.
func (m *ErrorHintMatcher) Categorize(msg string, ec ErrorContext) []string {
	for _, p := range m.patterns {
		if containsAny(msg, p.keywords) {
			return p.suggestions(msg, ec)
		}
	}
	return nil
}
