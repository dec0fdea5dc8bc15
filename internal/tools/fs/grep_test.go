package fs

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

func TestGrepFindsMatchingLines(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "package main\nfunc Hello() {}\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "func \\w+"})
	result := Grep{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "a.go:2:") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGrepNoMatchesMessage(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "package main\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "nonexistent_token"})
	result := Grep{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "No matches found") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGrepInvalidRegexReturnsError(t *testing.T) {
	dir := t.TempDir()
	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "("})
	result := Grep{}.Execute(nil, tc, input)
	if result.IsSuccess() {
		t.Fatal("expected failure for invalid regex")
	}
}

func TestGrepIgnoreCase(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "Hello World\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]any{"pattern": "hello", "ignore_case": true})
	result := Grep{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "a.txt:1:") {
		t.Errorf("expected case-insensitive match, Output = %q", result.Output)
	}
}

func TestGrepContextLinesSurroundMatch(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "one\ntwo\nMATCH\nfour\nfive\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]any{"pattern": "MATCH", "context": 1})
	result := Grep{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if !strings.Contains(result.Output, "two") || !strings.Contains(result.Output, "four") {
		t.Errorf("expected context lines around match: %q", result.Output)
	}
}

func TestGrepSkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "bin.dat", "")
	if err := os.WriteFile(path, []byte{'M', 'A', 'T', 'C', 'H', 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "MATCH"})
	result := Grep{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if strings.Contains(result.Output, "bin.dat") {
		t.Errorf("binary file should be skipped: %q", result.Output)
	}
}

func TestGrepGlobFiltersFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "target\n")
	writeTestFile(t, dir, "b.md", "target\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]string{"pattern": "target", "glob": "*.go"})
	result := Grep{}.Execute(nil, tc, input)
	if !strings.Contains(result.Output, "a.go") || strings.Contains(result.Output, "b.md") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestGrepLimitCapsMatchesShown(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "hit\nhit\nhit\nhit\n")

	tc := toolkit.WithWorkingDir(dir)
	input, _ := json.Marshal(map[string]any{"pattern": "hit", "limit": 2})
	result := Grep{}.Execute(nil, tc, input)
	if !strings.Contains(result.Output, "Showing 2 of 4 matches") {
		t.Errorf("Output = %q", result.Output)
	}
}
