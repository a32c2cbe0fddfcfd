package types

import "github.com/otterlang/otterc/report"

// Var is an inference variable: allocated fresh at each generic call site
// and at every unannotated `let`, per spec.md §4.E. Value is filled in by
// Unify once the variable's type is determined; Var never appears in a
// fully-solved type, since Equals/InnerType always unwrap it first.
type Var struct {
	ID   int
	Name string
	Span report.Span
	// Value is the type this variable was unified to, or nil while
	// undetermined.
	Value Type
}

func (tv *Var) equals(other Type) bool {
	// Reaching equals directly (rather than through Equals/InnerType) on an
	// unbound variable means the caller skipped unwrapping.
	if tv.Value != nil {
		return Equals(tv.Value, other)
	}
	return false
}

func (tv *Var) Repr() string {
	if tv.Value != nil {
		return tv.Value.Repr()
	}
	return tv.Name
}

// Solver allocates and tracks inference variables for one checking pass
// (one function body, or one module-scope let chain).
type Solver struct {
	next int
	vars []*Var
}

// NewSolver creates an empty variable allocator.
func NewSolver() *Solver {
	return &Solver{}
}

// Fresh allocates a new, unbound inference variable.
func (s *Solver) Fresh(name string, span report.Span) *Var {
	tv := &Var{ID: s.next, Name: name, Span: span}
	s.next++
	s.vars = append(s.vars, tv)
	return tv
}

// Unresolved returns every variable the solver allocated that unification
// never determined a value for.
func (s *Solver) Unresolved() []*Var {
	var out []*Var
	for _, tv := range s.vars {
		if tv.Value == nil {
			out = append(out, tv)
		}
	}
	return out
}
