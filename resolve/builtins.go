package resolve

import "github.com/otterlang/otterc/report"

// builtinNames are value-level builtins always in scope, independent of any
// module's imports: IO/length primitives, and the synthetic `tuple`
// constructor the parser desugars tuple literals into
// (syntax/parse_expr.go's parseParenOrTuple).
var builtinNames = []string{
	"print", "len", "tuple", "str", "int", "float", "bool",
}

// newUniverseScope creates the outermost scope, populated with the
// builtins every module sees without a `use`.
func newUniverseScope() *Scope {
	sc := newScope(nil)
	for _, name := range builtinNames {
		sc.define(name, &Symbol{Name: name, Kind: SymValue, Public: true, Span: report.ZeroSpan})
	}
	return sc
}
