package check_test

import (
	"testing"

	"github.com/otterlang/otterc/internal/testutil"
	"github.com/otterlang/otterc/report"
)

const resultSrc = `
enum Result<T, E>:
    Ok: (T)
    Err: (E)

fn classify(r: Result<int, string>) -> int:
    match r:
        case Result.Ok(x):
            return x
        case Result.Err(e):
            return 0
`

func TestCheckMatchOnResultBindsPayloadAndJoinsArms(t *testing.T) {
	p := testutil.Single(t, resultSrc)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}
}

func TestCheckEnumConstructRecordsVariantIndex(t *testing.T) {
	src := `
enum Result<T, E>:
    Ok: (T)
    Err: (E)

fn ok_of(x: int) -> Result<int, string>:
    return Result.Ok(x)
`
	p := testutil.Single(t, src)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}

	var sawOk bool
	for _, idx := range p.Checked.EnumVariant {
		if idx == 0 {
			sawOk = true
		}
	}
	if !sawOk {
		t.Fatal("expected the Result.Ok construction to record variant index 0")
	}
}

func TestCheckNonExhaustiveMatchWarnsOnMissingVariant(t *testing.T) {
	src := `
enum Option<T>:
    Some: (T)
    None: ()

fn first(o: Option<int>) -> int:
    match o:
        case Some(x):
            return x
`
	p := testutil.Single(t, src)

	var found bool
	for _, d := range p.Sink.All() {
		if d.Code == report.CodeNonExhaustive {
			found = true
			if !containsSubstring(d.Message, "None") {
				t.Errorf("message %q should name the missing %q variant", d.Message, "None")
			}
		}
	}
	if !found {
		t.Fatalf("expected a %s diagnostic for the missing None case; got %v", report.CodeNonExhaustive, p.Sink.All())
	}
}

func TestCheckExhaustiveMatchReportsNothing(t *testing.T) {
	src := `
enum Option<T>:
    Some: (T)
    None: ()

fn first(o: Option<int>) -> int:
    match o:
        case Some(x):
            return x
        case Option.None:
            return 0
`
	p := testutil.Single(t, src)
	for _, d := range p.Sink.All() {
		if d.Code == report.CodeNonExhaustive {
			t.Fatalf("unexpected exhaustiveness warning: %s", d.Message)
		}
	}
}

func TestCheckBoolOrderingComparisonIsValid(t *testing.T) {
	src := `
fn rank(a: bool, b: bool) -> bool:
    return a < b
`
	p := testutil.Single(t, src)
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.All())
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
