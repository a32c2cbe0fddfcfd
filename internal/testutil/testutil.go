// Package testutil wires the compiler's passes together for use from
// package-level tests, the same shared-harness role
// HicaroD-Telia/internal/testutil/testutil.go plays for its own tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/otterlang/otterc/check"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ffi"
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/lower"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
)

// Pipeline holds every pass's output for one compiled module graph, so a
// test can inspect whichever stage it cares about.
type Pipeline struct {
	Sink     *report.Sink
	Loader   *depm.Loader
	Modules  []*depm.Module
	Resolved *resolve.Result
	Checked  *check.Result
	IR       *ir.Module
}

// WriteModule writes files (path relative to the module root -> source)
// under a fresh temp directory and returns the root.
func WriteModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, src := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %s", rel, err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %s", rel, err)
		}
	}
	return root
}

// Single writes src as the sole file of a single-module root and runs the
// full pipeline over it.
func Single(t *testing.T, src string) *Pipeline {
	t.Helper()
	return Compile(t, map[string]string{"main.otter": src})
}

// Compile writes files under a fresh module root and runs parsing,
// resolving, checking, and lowering over it in the same order
// cmd.RunCompiler does.
func Compile(t *testing.T, files map[string]string) *Pipeline {
	t.Helper()
	root := WriteModule(t, files)

	sink := report.NewSink()
	loader := depm.NewLoader(root, sink)
	if _, err := loader.Load([]string{"."}, root); err != nil {
		t.Fatalf("Load: %s", err)
	}
	modules := loader.Modules()

	resolver := resolve.NewResolver(sink, loader)
	resolved := resolver.Resolve(modules)

	oracle, _ := ffi.NewStaticOracle(nil)
	checker := check.NewChecker(sink, loader, resolved, oracle)
	checked := checker.Check(modules)

	var mod *ir.Module
	if !sink.HasErrors() {
		lowerer := lower.New(resolved, checked, oracle, "test")
		mod = lowerer.Lower(modules)
	}

	return &Pipeline{
		Sink:     sink,
		Loader:   loader,
		Modules:  modules,
		Resolved: resolved,
		Checked:  checked,
		IR:       mod,
	}
}

// Codes returns the diagnostic codes currently in sink, in recorded order.
func Codes(sink *report.Sink) []report.Code {
	var codes []report.Code
	for _, d := range sink.All() {
		codes = append(codes, d.Code)
	}
	return codes
}
