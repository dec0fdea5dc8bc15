package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

func TestGlobFindsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "x")
	writeTestFile(t, dir, "b.txt", "x")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "*.go"})
	result := Glob{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "a.go") || strings.Contains(result.Output, "b.txt") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGlobNoMatchesMessage(t *testing.T) {
	dir := t.TempDir()
	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "*.nonexistent"})
	result := Glob{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "No files found") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGlobRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, ".gitignore", "ignored.go\n")
	writeTestFile(t, dir, "ignored.go", "x")
	writeTestFile(t, dir, "kept.go", "x")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "*.go"})
	result := Glob{}.Execute(nil, tc, input)
	if strings.Contains(result.Output, "ignored.go") {
		t.Errorf("ignored.go should be filtered: %q", result.Output)
	}
	if !strings.Contains(result.Output, "kept.go") {
		t.Errorf("kept.go missing: %q", result.Output)
	}
}

func TestGlobLimitCapsResultsShown(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeTestFile(t, dir, filepath.Join("", "f"+string(rune('a'+i))+".go"), "x")
	}
	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]any{"pattern": "*.go", "limit": 2})
	result := Glob{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "Showing 2 of 5 results") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGlobSkipsGitDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(dir, ".git"), "config.go", "x")
	writeTestFile(t, dir, "real.go", "x")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "*.go"})
	result := Glob{}.Execute(nil, tc, input)
	if strings.Contains(result.Output, "config.go") {
		t.Errorf(".git contents should be skipped: %q", result.Output)
	}
}

func TestGlobRejectsNonAbsoluteBaseDir(t *testing.T) {
	tc := toolkit.WithWorkingDir(t.TempDir())
	input, _ := json.Marshal(map[string]string{"pattern": "*.go", "base_dir": "relative"})
	result := Glob{}.Execute(nil, tc, input)
	if result.IsSuccess() {
		t.Fatal("expected failure for relative base_dir")
	}
}
