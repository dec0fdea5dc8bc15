package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xonecas/symb/internal/tools/toolkit"
)

func TestWriteFileCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	tc := toolkit.WithWorkingDir(dir)

	input, _ := json.Marshal(map[string]string{"path": path, "content": "hello\n"})
	result := WriteFile{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("content = %q, want %q", data, "hello\n")
	}
}

func TestWriteFileCreatesMissingParentDirsByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "out.txt")
	tc := toolkit.WithWorkingDir(dir)

	input, _ := json.Marshal(map[string]string{"path": path, "content": "x"})
	result := WriteFile{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created in nested dir: %v", err)
	}
}

func TestWriteFileRefusesMissingParentWhenCreateDirsFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")
	tc := toolkit.WithWorkingDir(dir)

	input, _ := json.Marshal(map[string]any{"path": path, "content": "x", "create_dirs": false})
	result := WriteFile{}.Execute(nil, tc, input)
	if result.IsSuccess() {
		t.Fatal("expected failure when parent dir is missing and create_dirs is false")
	}
}

func TestWriteFileRejectsOversizedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	tc := toolkit.WithWorkingDir(dir)

	oversized := strings.Repeat("x", WriteMaxSize+1)
	input, _ := json.Marshal(map[string]string{"path": path, "content": oversized})
	result := WriteFile{}.Execute(nil, tc, input)
	if result.IsSuccess() {
		t.Fatal("expected failure for content exceeding WriteMaxSize")
	}
}

func TestWriteFileOverwritesAndReportsDiffMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "existing.txt", "old content\n")
	tc := toolkit.WithWorkingDir(dir)

	input, _ := json.Marshal(map[string]string{"path": path, "content": "new content\n"})
	result := WriteFile{}.Execute(nil, tc, input)
	if !result.IsSuccess() {
		t.Fatalf("Execute failed: %s", result.Err)
	}

	meta, _, ok := ParseDiffMetadata(result.Output)
	if !ok {
		t.Fatal("expected diff metadata block in output")
	}
	if meta.OldContent != "old content\n" || meta.NewContent != "new content\n" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestWriteFileRejectsRelativePath(t *testing.T) {
	tc := toolkit.WithWorkingDir(t.TempDir())
	input, _ := json.Marshal(map[string]string{"path": "relative.txt", "content": "x"})
	result := WriteFile{}.Execute(nil, tc, input)
	if result.IsSuccess() {
		t.Fatal("expected failure for relative path")
	}
}
