package lower_test

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/testutil"
	"github.com/otterlang/otterc/ir"
)

func countOps(mod *ir.Module, fnNameContains string, op ir.Op) int {
	n := 0
	for _, fn := range mod.Funcs {
		if fnNameContains != "" && !strings.Contains(fn.Name, fnNameContains) {
			continue
		}
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				if instr.Op == op {
					n++
				}
			}
		}
	}
	return n
}

func countCalls(mod *ir.Module, callee string) int {
	n := 0
	for _, fn := range mod.Funcs {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				if instr.Op == ir.OpCall && instr.Callee == callee {
					n++
				}
			}
		}
	}
	return n
}

// TestLowerLeibnizSeriesLoopWidensWithoutErrors lowers a summation loop in
// the style of a Leibniz-series approximation of pi: a float accumulator,
// an integer loop counter, alternating sign via unary negation, and an
// int-to-float widening division, none of which should produce a checker
// or lowering error.
func TestLowerLeibnizSeriesLoopWidensWithoutErrors(t *testing.T) {
	src := `
fn pi_approx(terms: int) -> float:
    let sum: float = 0.0
    let sign: float = 1.0
    for i in 0..terms:
        let denom: float = 2.0 * i + 1.0
        sum = sum + sign / denom
        sign = -sign
    return sum * 4.0
`
	p := testutil.Single(t, src)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}
	if p.IR == nil {
		t.Fatal("expected a lowered IR module")
	}
	if len(p.IR.Funcs) == 0 {
		t.Fatal("expected at least one lowered function")
	}
}

// TestLowerSpawnAwaitEmitsExactlyOneTaskCallEach confirms spawn/await each
// lower to exactly one extern call into the task runtime.
func TestLowerSpawnAwaitEmitsExactlyOneTaskCallEach(t *testing.T) {
	src := `
fn work() -> int:
    return 1

fn main() -> int:
    let t = spawn work()
    return await t
`
	p := testutil.Single(t, src)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}
	if got := countCalls(p.IR, "otter_task_spawn"); got != 1 {
		t.Errorf("otter_task_spawn calls = %d, want 1", got)
	}
	if got := countCalls(p.IR, "otter_task_await"); got != 1 {
		t.Errorf("otter_task_await calls = %d, want 1", got)
	}
}

// TestLowerFStringStringifiesNonStringPieces confirms an f-string with one
// non-string embedded expression lowers to one to_string conversion folded
// in with one string_concat.
func TestLowerFStringStringifiesNonStringPieces(t *testing.T) {
	src := `
fn describe(x: int) -> string:
    return f"x = {x}"
`
	p := testutil.Single(t, src)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}
	if got := countOps(p.IR, "", ir.OpToString); got != 1 {
		t.Errorf("to_string ops = %d, want 1", got)
	}
	if got := countOps(p.IR, "", ir.OpStringConcat); got != 1 {
		t.Errorf("string_concat ops = %d, want 1", got)
	}
}
