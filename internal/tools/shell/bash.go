// Package shell implements the bash tool: a sandboxed subprocess runner
// with output capping, timeout enforcement, and ANSI stripping.
package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"mvdan.cc/sh/v3/shell"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

const (
	defaultTimeoutSecs = 120
	maxOutputSize       = 1024 * 1024
)

type bashInput struct {
	Command     string            `json:"command"`
	WorkingDir  string            `json:"working_dir,omitempty"`
	TimeoutSecs int64             `json:"timeout_secs,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
}

// Bash is the bash tool: runs command through `sh -c`, merging stderr into
// stdout, enforcing a timeout and an output-size cap, and stripping ANSI
// escape sequences from the captured output.
type Bash struct{}

func (Bash) Name() string { return "bash" }

func (Bash) Description() string {
	return "Execute a shell command and return its combined stdout/stderr."
}

func (Bash) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "command": {"type": "string", "description": "The shell command to run"},
    "working_dir": {"type": "string", "description": "Absolute directory to run the command in"},
    "timeout_secs": {"type": "integer", "description": "Kill the command after this many seconds", "default": 120},
    "env": {"type": "object", "additionalProperties": {"type": "string"}, "description": "Extra environment variables"}
  },
  "required": ["command"]
}`)
}

func (Bash) Execute(ctx context.Context, tc toolkit.Context, input json.RawMessage) toolkit.Result {
	var in bashInput
	if err := json.Unmarshal(input, &in); err != nil {
		return toolkit.Error(fmt.Sprintf("invalid tool input: %v", err))
	}

	workingDir := in.WorkingDir
	if workingDir == "" {
		workingDir = tc.WorkingDir
	} else {
		expanded, err := shell.Expand(workingDir, os.Getenv)
		if err == nil {
			workingDir = expanded
		}
		if !filepath.IsAbs(workingDir) {
			return toolkit.Error(fmt.Sprintf("working_dir must be an absolute path: %s", workingDir))
		}
		info, err := os.Stat(workingDir)
		if err != nil {
			return toolkit.Error(fmt.Sprintf("working_dir does not exist: %s", workingDir))
		}
		if !info.IsDir() {
			return toolkit.Error(fmt.Sprintf("working_dir is not a directory: %s", workingDir))
		}
	}

	timeoutSecs := in.TimeoutSecs
	if timeoutSecs <= 0 {
		timeoutSecs = defaultTimeoutSecs
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", fmt.Sprintf("( %s ) 2>&1", in.Command))
	cmd.Dir = workingDir
	cmd.Env = os.Environ()
	for k, v := range in.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = nil

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return toolkit.Error(fmt.Sprintf("command timed out after %d seconds", timeoutSecs))
	}

	output := buf.String()
	truncatedNotice := ""
	if len(output) > maxOutputSize {
		output = output[:maxOutputSize]
		truncatedNotice = fmt.Sprintf("\n\n[Output truncated: exceeded %d byte limit]", maxOutputSize)
	}
	output = ansi.Strip(output)
	output = strings.TrimSpace(output)
	if output == "" {
		output = "[No output]"
	}
	output += truncatedNotice

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return toolkit.Error(fmt.Sprintf("failed to run command: %v", err))
	}

	final := fmt.Sprintf("%s\n\nExit code: %d", output, exitCode)
	if exitCode != 0 {
		return toolkit.Error(final)
	}
	return toolkit.Success(final)
}
