// Package promptenv collects the environment snapshot the system-prompt
// builder embeds in every turn: working directory, platform, current
// date, and a git status summary. Grounded on internal/tui/messages.go's
// gitBranchCmd (exec.Command("git", ...) probes), generalized from a
// one-shot UI poll into a reusable collector the agent loop's prompt
// builder calls once per process.
package promptenv

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Info is the environment snapshot a provider-family system prompt
// template embeds.
type Info struct {
	CWD            string
	Platform       string
	OSVersion      string
	CurrentDate    string
	IsGitRepo      bool
	CurrentBranch  string
	MainBranch     string
	StatusSummary  string
	RecentCommits  []string
}

// Collect gathers the current environment snapshot. Every git probe is
// best-effort: outside a repository, or with git unavailable, the git
// fields are left at their zero values rather than erroring.
func Collect() Info {
	cwd, _ := os.Getwd()
	info := Info{
		CWD:         cwd,
		Platform:    runtime.GOOS,
		OSVersion:   osVersion(),
		CurrentDate: time.Now().Format("2006-01-02"),
	}

	if !isGitRepo() {
		return info
	}
	info.IsGitRepo = true
	info.CurrentBranch = gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	info.MainBranch = detectMainBranch()
	info.StatusSummary = gitStatusSummary()
	info.RecentCommits = gitRecentCommits(5)
	return info
}

func isGitRepo() bool {
	return exec.Command("git", "rev-parse", "--is-inside-work-tree").Run() == nil
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func detectMainBranch() string {
	for _, candidate := range []string{"main", "master"} {
		if exec.Command("git", "rev-parse", "--verify", candidate).Run() == nil {
			return candidate
		}
	}
	return ""
}

func gitStatusSummary() string {
	if err := exec.Command("git", "diff", "--quiet", "HEAD").Run(); err == nil {
		return "clean"
	}
	out := gitOutput("status", "--porcelain")
	if out == "" {
		return "clean"
	}
	lines := strings.Split(out, "\n")
	return strings.Join([]string{"dirty (", itoa(len(lines)), " changed)"}, "")
}

func gitRecentCommits(n int) []string {
	out := gitOutput("log", "-n", itoa(n), "--oneline")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func osVersion() string {
	out, err := exec.Command("uname", "-r").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
