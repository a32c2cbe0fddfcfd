package syntax

import (
	"bufio"
	"strings"
	"testing"

	"github.com/otterlang/otterc/report"
)

func lexAll(t *testing.T, src string) ([]*Token, *report.Sink) {
	t.Helper()
	sink := report.NewSink()
	lx := NewLexer("test.otter", bufio.NewReader(strings.NewReader(src)), sink)

	var toks []*Token
	for {
		tok := lx.NextToken()
		toks = append(toks, tok)
		if tok.Kind == TOK_EOF {
			break
		}
	}
	return toks, sink
}

func kinds(toks []*Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexEmptyFile(t *testing.T) {
	toks, sink := lexAll(t, "")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(toks) != 1 || toks[0].Kind != TOK_EOF {
		t.Fatalf("kinds = %v, want just EOF", kinds(toks))
	}
}

func TestLexIntegerLiteralUnderscores(t *testing.T) {
	toks, sink := lexAll(t, "1_000_000")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if toks[0].Kind != TOK_INTLIT || toks[0].Value != "1000000" {
		t.Fatalf("token = %+v, want INTLIT %q", toks[0], "1000000")
	}
}

func TestLexUnicodeIdentifierIsCodePointExact(t *testing.T) {
	toks, sink := lexAll(t, "café")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if toks[0].Kind != TOK_IDENT || toks[0].Value != "café" {
		t.Fatalf("token = %+v, want IDENT %q", toks[0], "café")
	}

	other, _ := lexAll(t, "cafe")
	if toks[0].Value == other[0].Value {
		t.Fatalf("%q and %q should not be equal", toks[0].Value, other[0].Value)
	}
}

func TestLexTabInIndentationIsAnError(t *testing.T) {
	_, sink := lexAll(t, "if true:\n\tpass\n")
	if !sink.HasErrors() {
		t.Fatal("expected a layout error for a tab in leading whitespace")
	}
}

func TestLexTrailingWhitespaceOnlyLineDoesNotDedent(t *testing.T) {
	toks, sink := lexAll(t, "if true:\n    pass\n    \nelse:\n    pass\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}

	indents, dedents := 0, 0
	for _, k := range kinds(toks) {
		switch k {
		case TOK_INDENT:
			indents++
		case TOK_DEDENT:
			dedents++
		}
	}
	// A whitespace-only line between `pass` and `else` must be treated as
	// blank, never as its own indentation level: the stack still balances
	// and no "inconsistent dedent" error is reported above.
	if indents != dedents {
		t.Fatalf("indent/dedent counts = %d/%d, want balanced; kinds = %v", indents, dedents, kinds(toks))
	}
	if indents != 2 {
		t.Fatalf("indent count = %d, want 2 (one per `if`/`else` body); kinds = %v", indents, kinds(toks))
	}
}

func TestLexTrailingDotWithoutFractionIsNotAFloat(t *testing.T) {
	toks, _ := lexAll(t, "1..10")
	if toks[0].Kind != TOK_INTLIT || toks[0].Value != "1" {
		t.Fatalf("first token = %+v, want INTLIT %q", toks[0], "1")
	}
	if toks[1].Kind != TOK_DOTDOT {
		t.Fatalf("second token kind = %v, want TOK_DOTDOT", toks[1].Kind)
	}
}
