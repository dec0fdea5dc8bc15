package fs

import "testing"

func TestGitignoreMatcherExcludes(t *testing.T) {
	tests := []struct {
		line  string
		path  string
		isDir bool
		want  bool
	}{
		{"*.log", "test.log", false, true},
		{"*.log", "test.txt", false, false},
		{"*.log", "logs/test.log", false, true},

		{"node_modules/", "node_modules", true, true},
		{"node_modules/", "node_modules/package.json", false, true},
		{"node_modules/", "src/node_modules", true, true},

		{"build/*", "build/output.txt", false, true},
		{"build/*", "build", true, false},
		{"build/*", "src/build/output.txt", false, true},

		{"!important.log", "important.log", false, false},

		{"**/temp", "temp", false, true},
		{"**/temp", "src/temp", false, true},
		{"**/temp", "src/lib/temp", false, true},

		{"/root.txt", "root.txt", false, true},
		{"/root.txt", "src/root.txt", false, false},
	}

	for _, tt := range tests {
		rule, ok := compileIgnoreRule(tt.line)
		if !ok {
			t.Errorf("failed to compile rule: %s", tt.line)
			continue
		}
		m := &gitignoreMatcher{rules: []ignoreRule{rule}}
		if got := m.Excludes(tt.path, tt.isDir); got != tt.want {
			t.Errorf("rule %q, path %q (isDir=%v): got %v, want %v", tt.line, tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestGitignoreMatcherLastRuleWins(t *testing.T) {
	lines := []string{"*.log", "!important.log"}
	m := &gitignoreMatcher{}
	for _, l := range lines {
		if rule, ok := compileIgnoreRule(l); ok {
			m.rules = append(m.rules, rule)
		}
	}

	tests := []struct {
		path string
		want bool
	}{
		{"test.log", true},
		{"important.log", false},
		{"other.txt", false},
	}
	for _, tt := range tests {
		if got := m.Excludes(tt.path, false); got != tt.want {
			t.Errorf("path %q: got %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadGitignoreMissingFile(t *testing.T) {
	m, err := loadGitignore("/nonexistent/path/.gitignore")
	if err != nil {
		t.Fatalf("loadGitignore: %v", err)
	}
	if m.Excludes("anything", false) {
		t.Fatalf("empty matcher should never exclude")
	}
}

func TestLoadGitignoreEmptyPath(t *testing.T) {
	m, err := loadGitignore("")
	if err != nil {
		t.Fatalf("loadGitignore: %v", err)
	}
	if m.Excludes("anything", false) {
		t.Fatalf("empty matcher should never exclude")
	}
}
