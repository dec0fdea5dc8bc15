package tools

import "testing"

func TestRegisterBuiltinsRegistersExpectedTools(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	want := []string{"bash", "glob", "grep", "list_dir", "read_file", "update_file", "write_file"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegisterBuiltinsTargetExtractsExpectedField(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	_, class, ok := r.Get("read_file")
	if !ok {
		t.Fatal("read_file not registered")
	}
	target, err := class.Target([]byte(`{"path":"/tmp/a.go"}`))
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	if target != "/tmp/a.go" {
		t.Errorf("Target = %q, want /tmp/a.go", target)
	}
}
