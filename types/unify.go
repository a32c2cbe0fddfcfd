package types

// Unify attempts to make lhs and rhs equal, binding any unbound type
// variables on either side as needed, and reports whether it succeeded.
// Grounded on bootstrap/types/unify.go's Unify: unwrap, handle variables
// first, then fall through to a structural/nominal case switch.
func Unify(lhs, rhs Type) bool {
	lhs = InnerType(lhs)
	rhs = InnerType(rhs)

	if _, ok := lhs.(anyType); ok {
		return true
	}
	if _, ok := rhs.(anyType); ok {
		return true
	}

	if lv, ok := lhs.(*Var); ok {
		return bindVar(lv, rhs)
	}
	if rv, ok := rhs.(*Var); ok {
		return bindVar(rv, lhs)
	}

	switch l := lhs.(type) {
	case *ListType:
		if r, ok := rhs.(*ListType); ok {
			return Unify(l.Elem, r.Elem)
		}
		return false
	case *DictType:
		if r, ok := rhs.(*DictType); ok {
			return Unify(l.Key, r.Key) && Unify(l.Value, r.Value)
		}
		return false
	case *TupleType:
		r, ok := rhs.(*TupleType)
		if !ok || len(l.Elems) != len(r.Elems) {
			return false
		}
		for i, e := range l.Elems {
			if !Unify(e, r.Elems[i]) {
				return false
			}
		}
		return true
	case *FuncType:
		r, ok := rhs.(*FuncType)
		if !ok || len(l.Params) != len(r.Params) {
			return false
		}
		for i, p := range l.Params {
			if !Unify(p, r.Params[i]) {
				return false
			}
		}
		return Unify(l.Ret, r.Ret)
	case *TaskType:
		if r, ok := rhs.(*TaskType); ok {
			return Unify(l.Result, r.Result)
		}
		return false
	case *StructType:
		r, ok := rhs.(*StructType)
		if !ok || l.decl != r.decl || len(l.Args) != len(r.Args) {
			return false
		}
		for i, a := range l.Args {
			if !Unify(a, r.Args[i]) {
				return false
			}
		}
		return true
	case *EnumType:
		r, ok := rhs.(*EnumType)
		if !ok || l.decl != r.decl || len(l.Args) != len(r.Args) {
			return false
		}
		for i, a := range l.Args {
			if !Unify(a, r.Args[i]) {
				return false
			}
		}
		return true
	default:
		return lhs.equals(rhs)
	}
}

// bindVar binds tv to val, subject to the occurs check: val must not
// itself reference tv, directly or through another variable, or the bind
// would produce an infinite type.
func bindVar(tv *Var, val Type) bool {
	val = InnerType(val)
	if sameVar, ok := val.(*Var); ok && sameVar == tv {
		return true
	}
	if Occurs(tv, val) {
		return false
	}
	tv.Value = val
	return true
}

// Occurs reports whether tv appears anywhere inside t, used to reject
// self-referential unifications (spec.md §7's OccursCheck diagnostic).
func Occurs(tv *Var, t Type) bool {
	t = InnerType(t)
	switch v := t.(type) {
	case *Var:
		return v == tv
	case *ListType:
		return Occurs(tv, v.Elem)
	case *DictType:
		return Occurs(tv, v.Key) || Occurs(tv, v.Value)
	case *TupleType:
		for _, e := range v.Elems {
			if Occurs(tv, e) {
				return true
			}
		}
		return false
	case *FuncType:
		for _, p := range v.Params {
			if Occurs(tv, p) {
				return true
			}
		}
		return Occurs(tv, v.Ret)
	case *TaskType:
		return Occurs(tv, v.Result)
	case *StructType:
		for _, a := range v.Args {
			if Occurs(tv, a) {
				return true
			}
		}
		return false
	case *EnumType:
		for _, a := range v.Args {
			if Occurs(tv, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Widen reports whether from can be implicitly widened to to (currently
// only int -> float, per spec.md §4.E), returning whether a widening cast
// is needed alongside whether the two types are otherwise compatible.
func Widen(from, to Type) (needed bool, ok bool) {
	from, to = InnerType(from), InnerType(to)
	fp, fok := from.(Primitive)
	tp, tok := to.(Primitive)
	if !fok || !tok {
		return false, Equals(from, to)
	}
	if fp == tp {
		return false, true
	}
	if fp == PrimInt && tp == PrimFloat {
		return true, true
	}
	return false, false
}
