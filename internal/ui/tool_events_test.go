package ui

import (
	"encoding/json"
	"testing"

	"github.com/xonecas/symb/internal/tools"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

func TestToolEventForwarderEmitsFileDiffOnWrite(t *testing.T) {
	events := make(chan AppEvent, 8)
	fw := NewToolEventForwarder(events)

	old, new_ := "a", "b"
	rawOutput := "Updated /tmp/x.txt" + rawDiffBlock(t, "/tmp/x.txt", old, new_)

	fw.Handle(tools.Event{
		Kind:   tools.EventCompleted,
		Name:   "update_file",
		Result: toolkit.Success(rawOutput),
	})

	got := map[EventKind]AppEvent{}
	for i := 0; i < 2; i++ {
		evt := <-events
		got[evt.Kind] = evt
	}
	if _, ok := got[EventToolCompleted]; !ok {
		t.Fatal("expected EventToolCompleted")
	}
	diff, ok := got[EventFileDiff]
	if !ok {
		t.Fatal("expected EventFileDiff")
	}
	if diff.DiffPath != "/tmp/x.txt" || diff.DiffOld != old || diff.DiffNew != new_ {
		t.Fatalf("diff event = %+v", diff)
	}
}

// rawDiffBlock builds the wire block write_file/update_file append to
// their output.
func rawDiffBlock(t *testing.T, path, oldContent, newContent string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"diff_metadata": map[string]string{
			"path":        path,
			"old_content": oldContent,
			"new_content": newContent,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return "\n\n<!-- metadata-start -->\n" + string(payload) + "\n<!-- metadata-end -->"
}
