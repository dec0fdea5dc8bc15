package toolkit

import "strings"

// Result is the outcome of one tool execution: either a success carrying
// output text, or an error carrying an optional list of remediation hints.
type Result struct {
	success      bool
	Output       string
	Err          string
	Suggestions  []string
}

// Success builds a successful Result.
func Success(output string) Result { return Result{success: true, Output: output} }

// Error builds a failed Result with no suggestions.
func Error(err string) Result { return Result{success: false, Err: err} }

// ErrorWithSuggestions builds a failed Result carrying remediation hints.
func ErrorWithSuggestions(err string, suggestions []string) Result {
	return Result{success: false, Err: err, Suggestions: suggestions}
}

// IsSuccess reports whether this Result represents a successful execution.
func (r Result) IsSuccess() bool { return r.success }

// ToLLMString renders the Result for embedding in a ToolResult content
// block: the raw output on success, or "Error: <msg>" plus a bulleted
// suggestions list on failure.
func (r Result) ToLLMString() string {
	if r.success {
		return r.Output
	}
	if len(r.Suggestions) == 0 {
		return "Error: " + r.Err
	}
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(r.Err)
	b.WriteString("\n\nSuggestions:\n")
	for i, s := range r.Suggestions {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(s)
	}
	return b.String()
}
