package permission

import (
	"fmt"
	"path/filepath"
	"strings"
)

// systemDirectories blocks writes/deletes to these paths regardless of any
// allow-list entry, matching original_source/src/permission/security.rs's
// hardcoded list exactly (compared lowercased).
var systemDirectories = []string{
	"/bin", "/sbin", "/usr/bin", "/usr/sbin",
	"/etc", "/sys", "/proc", "/dev", "/boot",
	"/",
	`c:\windows`, `c:\program files`, `c:\system32`,
}

// Validator enforces the hard floor no allow-list entry can override:
// every write/delete must resolve inside the working directory, and never
// land on a recognized system directory.
type Validator struct {
	WorkingDir          string
	AllowOutsideWorkDir bool
}

// NewValidator resolves workingDir to an absolute path.
func NewValidator(workingDir string) (*Validator, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("permission: resolve working dir: %w", err)
	}
	return &Validator{WorkingDir: abs}, nil
}

func (v *Validator) resolve(path string) string {
	joined := path
	if !filepath.IsAbs(path) {
		joined = filepath.Join(v.WorkingDir, path)
	}
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

func isSystemDirectory(path string) bool {
	lower := strings.ToLower(path)
	for _, sys := range systemDirectories {
		if sys == "/" {
			if lower == "/" {
				return true
			}
			continue
		}
		if lower == sys || strings.HasPrefix(lower, sys+"/") || strings.HasPrefix(lower, sys+`\`) {
			return true
		}
	}
	return false
}

func (v *Validator) isWithinWorkingDir(path string) bool {
	rel, err := filepath.Rel(v.WorkingDir, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

// ValidateWrite checks path is safe to write to: inside the working
// directory (unless AllowOutsideWorkDir) and not a system directory.
func (v *Validator) ValidateWrite(path string) error {
	abs := v.resolve(path)
	if isSystemDirectory(abs) {
		return fmt.Errorf("refusing to write to system directory: %s", abs)
	}
	if !v.AllowOutsideWorkDir && !v.isWithinWorkingDir(abs) {
		return fmt.Errorf("path %s is outside the working directory %s", abs, v.WorkingDir)
	}
	return nil
}

// ValidateDelete checks path is safe to delete: everything ValidateWrite
// checks, plus it must not be the working directory itself.
func (v *Validator) ValidateDelete(path string) error {
	if err := v.ValidateWrite(path); err != nil {
		return err
	}
	abs := v.resolve(path)
	if abs == v.WorkingDir {
		return fmt.Errorf("refusing to delete the working directory itself: %s", abs)
	}
	return nil
}
