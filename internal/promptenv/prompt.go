package promptenv

import (
	"fmt"
	"strings"
)

// Family names the three system-prompt template shapes spec.md §4.7
// distinguishes: the Messages family (Anthropic), the function-call family
// (Gemini), and the chat-completion-compatible family (OpenAI-compatible
// shims, the Responses API, and the zen gateway all read as this shape
// from the model's point of view).
type Family string

const (
	FamilyMessages       Family = "messages"
	FamilyFunctionCall   Family = "function-call"
	FamilyChatCompletion Family = "chat-completion"
)

// Build renders the system prompt string for one agent turn: a fixed
// template chosen by family, the environment snapshot, and the active
// model's display name and id.
func Build(family Family, info Info, modelDisplayName, modelID string) string {
	var b strings.Builder
	b.WriteString(header(family, modelDisplayName, modelID))
	b.WriteString("\n\n")
	b.WriteString(environmentBlock(info))
	return b.String()
}

func header(family Family, modelDisplayName, modelID string) string {
	switch family {
	case FamilyMessages:
		return fmt.Sprintf(
			"You are symb, an interactive coding agent running in a terminal, speaking through %s (%s).\n"+
				"You help with software engineering tasks: reading and editing files, running shell commands, "+
				"and explaining what you changed. Use the tools available to you rather than guessing at file "+
				"contents. Ask before taking destructive or irreversible actions.",
			modelDisplayName, modelID,
		)
	case FamilyFunctionCall:
		return fmt.Sprintf(
			"You are symb, a terminal coding agent. The active model is %s (%s), reached through a "+
				"function-calling interface: every tool you invoke is a function call, and its result comes "+
				"back as a function response in the next turn. Work incrementally, verify your edits, and "+
				"narrate only what's useful to the person running you.",
			modelDisplayName, modelID,
		)
	default: // FamilyChatCompletion
		return fmt.Sprintf(
			"You are symb, a terminal coding agent running on %s (%s) through a chat-completion interface. "+
				"You have tools for reading/editing files and running shell commands in the working directory "+
				"below. Prefer small, verifiable steps over large speculative rewrites.",
			modelDisplayName, modelID,
		)
	}
}

func environmentBlock(info Info) string {
	var b strings.Builder
	b.WriteString("Environment:\n")
	fmt.Fprintf(&b, "- Working directory: %s\n", info.CWD)
	fmt.Fprintf(&b, "- Platform: %s (%s)\n", info.Platform, info.OSVersion)
	fmt.Fprintf(&b, "- Date: %s\n", info.CurrentDate)
	if !info.IsGitRepo {
		b.WriteString("- Not a git repository\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Git branch: %s (main: %s)\n", info.CurrentBranch, info.MainBranch)
	fmt.Fprintf(&b, "- Status: %s\n", info.StatusSummary)
	if len(info.RecentCommits) > 0 {
		b.WriteString("- Recent commits:\n")
		for _, c := range info.RecentCommits {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	return b.String()
}
