package depm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/otterlang/otterc/report"
)

func writeModuleFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %s", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %s", name, err)
	}
}

// TestLoadDetectsImportCycle builds two sibling module directories that
// use each other by an unanchored path (always resolved against the
// loader's root, never the importing file's own directory) and confirms
// the loader reports an import cycle rather than recursing forever.
func TestLoadDetectsImportCycle(t *testing.T) {
	root := t.TempDir()
	writeModuleFile(t, filepath.Join(root, "a"), "a.otter", "use b\n")
	writeModuleFile(t, filepath.Join(root, "b"), "b.otter", "use a\n")

	sink := report.NewSink()
	loader := NewLoader(root, sink)

	_, err := loader.Load([]string{"a"}, root)
	if err == nil {
		t.Fatal("Load: expected an import cycle error, got nil")
	}
	if !sink.HasErrors() {
		t.Fatal("expected a diagnostic to be recorded for the cycle")
	}

	var found bool
	for _, d := range sink.All() {
		if d.Code == report.CodeImportCycle {
			found = true
			if !strings.Contains(d.Message, "a") || !strings.Contains(d.Message, "b") {
				t.Errorf("cycle message %q should name both modules", d.Message)
			}
		}
	}
	if !found {
		t.Fatalf("no %s diagnostic recorded; got %v", report.CodeImportCycle, sink.All())
	}
}

// TestLoadDetectsImportCycleIsDeterministic runs the same cycle detection
// several times: the reported chain must not depend on map/goroutine
// iteration order.
func TestLoadDetectsImportCycleIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeModuleFile(t, filepath.Join(root, "a"), "a.otter", "use b\n")
	writeModuleFile(t, filepath.Join(root, "b"), "b.otter", "use a\n")

	var first string
	for i := 0; i < 5; i++ {
		sink := report.NewSink()
		loader := NewLoader(root, sink)
		if _, err := loader.Load([]string{"a"}, root); err == nil {
			t.Fatal("Load: expected an import cycle error, got nil")
		}
		var msg string
		for _, d := range sink.All() {
			if d.Code == report.CodeImportCycle {
				msg = d.Message
			}
		}
		if msg == "" {
			t.Fatal("no import cycle diagnostic recorded")
		}
		if i == 0 {
			first = msg
		} else if msg != first {
			t.Fatalf("run %d produced a different cycle message: %q vs %q", i, msg, first)
		}
	}
}

func TestLoadMissingModuleReportsUnresolvedName(t *testing.T) {
	root := t.TempDir()
	writeModuleFile(t, filepath.Join(root, "main"), "main.otter", "use nope\n")

	sink := report.NewSink()
	loader := NewLoader(root, sink)
	if _, err := loader.Load([]string{"main"}, root); err == nil {
		t.Fatal("Load: expected an error resolving the nonexistent `nope` import")
	}

	if !sink.HasErrors() {
		t.Fatal("expected an unresolved-name diagnostic")
	}
}
