package tools

import (
	"github.com/xonecas/symb/internal/permission"
	"github.com/xonecas/symb/internal/tools/fs"
	"github.com/xonecas/symb/internal/tools/shell"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

// RegisterBuiltins registers every tool the agent ships with: the
// filesystem family and the bash tool, each tagged with the
// Classification the executor uses to permission-gate and lock it.
func RegisterBuiltins(r *Registry) {
	r.Register(fs.ReadFile{}, toolkit.Classification{
		PermissionType: permission.FileRead,
		ReadOnly:       true,
		Target:         toolkit.SimpleTarget("path"),
	})
	r.Register(fs.ListDir{}, toolkit.Classification{
		PermissionType: permission.FileRead,
		ReadOnly:       true,
		Target:         toolkit.SimpleTarget("path"),
	})
	r.Register(fs.Glob{}, toolkit.Classification{
		PermissionType: permission.FileRead,
		ReadOnly:       true,
		Target:         toolkit.SimpleTarget("pattern"),
	})
	r.Register(fs.Grep{}, toolkit.Classification{
		PermissionType: permission.FileRead,
		ReadOnly:       true,
		Target:         toolkit.SimpleTarget("pattern"),
	})
	r.Register(fs.WriteFile{}, toolkit.Classification{
		PermissionType: permission.FileWrite,
		ReadOnly:       false,
		Target:         toolkit.SimpleTarget("path"),
	})
	r.Register(fs.UpdateFile{}, toolkit.Classification{
		PermissionType: permission.FileWrite,
		ReadOnly:       false,
		Target:         toolkit.SimpleTarget("path"),
	})
	r.Register(shell.Bash{}, toolkit.Classification{
		PermissionType: permission.CommandExecute,
		ReadOnly:       false,
		Target:         toolkit.SimpleTarget("command"),
	})
}
