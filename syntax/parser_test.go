package syntax

import (
	"bufio"
	"strings"
	"testing"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

func parseSrc(t *testing.T, src string) (*ast.Module, *report.Sink) {
	t.Helper()
	sink := report.NewSink()
	lx := NewLexer("test.otter", bufio.NewReader(strings.NewReader(src)), sink)
	p := NewParser("test.otter", lx, sink)
	return p.ParseModule(), sink
}

func TestParseSingleExpressionModule(t *testing.T) {
	mod, sink := parseSrc(t, "42\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(mod.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(mod.Items))
	}
	item, ok := mod.Items[0].(*ast.ExprItem)
	if !ok {
		t.Fatalf("item = %T, want *ast.ExprItem", mod.Items[0])
	}
	lit, ok := item.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Value != "42" {
		t.Fatalf("value = %+v, want int literal 42", item.Value)
	}
}

func TestParseBareReturnAtTopLevelIsAnError(t *testing.T) {
	_, sink := parseSrc(t, "return 1\n")
	if !sink.HasErrors() {
		t.Fatal("expected a parse error for `return` outside a function body")
	}
}

func TestParseFunctionWithBlockBody(t *testing.T) {
	mod, sink := parseSrc(t, "fn add(a: int, b: int) -> int:\n    return a + b\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(mod.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(mod.Items))
	}
	fn, ok := mod.Items[0].(*ast.FunctionItem)
	if !ok {
		t.Fatalf("item = %T, want *ast.FunctionItem", mod.Items[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v, want name add with 2 params", fn)
	}
}
