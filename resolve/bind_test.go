package resolve_test

import (
	"testing"

	"github.com/otterlang/otterc/internal/testutil"
	"github.com/otterlang/otterc/report"
)

func TestResolveBindsIdentifierToFunction(t *testing.T) {
	p := testutil.Single(t, "fn id(x: int) -> int:\n    return x\n\nfn main():\n    let y = id(1)\n")
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}

	mod := p.Modules[0]
	sc, ok := p.Resolved.ModuleScopes[mod]
	if !ok {
		t.Fatal("no module scope recorded for the module root")
	}
	if _, ok := sc.Lookup("id"); !ok {
		t.Fatal("expected `id` to be defined in the module scope")
	}
}

func TestResolveReportsUnresolvedName(t *testing.T) {
	p := testutil.Single(t, "fn main():\n    let y = nope()\n")
	codes := testutil.Codes(p.Sink)
	var found bool
	for _, c := range codes {
		if c == report.CodeUnresolvedName {
			found = true
		}
	}
	if !found {
		t.Fatalf("codes = %v, want %s among them", codes, report.CodeUnresolvedName)
	}
}

func TestResolveReportsRedefinition(t *testing.T) {
	p := testutil.Single(t, "fn dup():\n    pass\n\nfn dup():\n    pass\n")
	codes := testutil.Codes(p.Sink)
	var found bool
	for _, c := range codes {
		if c == report.CodeRedefinition {
			found = true
		}
	}
	if !found {
		t.Fatalf("codes = %v, want %s among them", codes, report.CodeRedefinition)
	}
}
