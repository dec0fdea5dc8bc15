// Package permission implements the permission-gating layer that sits
// between the tool executor and every mutating or command-executing tool:
// pattern-based persisted allow-lists, in-memory per-session grants, a
// security validator guarding the working directory and system paths, and
// a pluggable UI prompt for anything not already covered. Grounded 1:1 on
// original_source/src/permission/*.rs.
package permission

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Type enumerates the kinds of operation a tool call may need approval for.
type Type int

const (
	FileRead Type = iota
	FileWrite
	FileDelete
	CommandExecute
	NetworkAccess
	SystemModification
)

// String renders a Type the way a permission prompt would describe it to a
// human, e.g. "write file", matching original_source's Display impl.
func (t Type) String() string {
	switch t {
	case FileRead:
		return "read file"
	case FileWrite:
		return "write file"
	case FileDelete:
		return "delete file"
	case CommandExecute:
		return "execute command"
	case NetworkAccess:
		return "access network"
	case SystemModification:
		return "modify system"
	default:
		return "unknown operation"
	}
}

// Response is the user's (or config's) answer to a permission prompt.
type Response int

const (
	AllowOnce Response = iota
	AllowSession
	// TellModelDifferently denies the call but feeds Feedback back to the
	// model as the tool's result, so it can adjust its approach instead of
	// just seeing an opaque denial.
	TellModelDifferently
)

// CheckResult is the outcome of PermissionManager.Check: either the call
// is allowed to proceed, or it's denied with feedback text to surface to
// the model as the tool_result content.
type CheckResult struct {
	Allowed  bool
	Feedback string
}

// Allowed returns an allowing CheckResult.
func Allowed() CheckResult { return CheckResult{Allowed: true} }

// Denied returns a denying CheckResult carrying feedback for the model.
func Denied(feedback string) CheckResult { return CheckResult{Allowed: false, Feedback: feedback} }

// Request describes one permission check: what kind of operation, against
// what target (a path or a command string), with optional free-text
// context to show the user (e.g. a diff preview).
type Request struct {
	OperationType Type
	Target        string
	Context       string
}

// WithContext returns a copy of r carrying ctx as additional prompt context.
func (r Request) WithContext(ctx string) Request {
	r.Context = ctx
	return r
}

// PatternKind discriminates how a Pattern matches a target string.
type PatternKind int

const (
	Exact PatternKind = iota
	Glob
	Regex
)

// Pattern is one entry in a persisted allow-list: a kind plus the raw
// pattern text.
type Pattern struct {
	Kind PatternKind
	Text string
}

func (p Pattern) String() string {
	switch p.Kind {
	case Exact:
		return p.Text
	case Glob:
		return fmt.Sprintf("glob:%s", p.Text)
	case Regex:
		return fmt.Sprintf("regex:%s", p.Text)
	default:
		return p.Text
	}
}

// Matches reports whether target satisfies this pattern.
func (p Pattern) Matches(target string) (bool, error) {
	switch p.Kind {
	case Exact:
		return p.Text == target, nil
	case Glob:
		return filepath.Match(p.Text, target)
	case Regex:
		re, err := regexp.Compile(p.Text)
		if err != nil {
			return false, fmt.Errorf("permission: invalid regex pattern %q: %w", p.Text, err)
		}
		return re.MatchString(target), nil
	default:
		return false, fmt.Errorf("permission: unknown pattern kind %d", p.Kind)
	}
}
