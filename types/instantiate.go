package types

// subst is a generic-parameter-name -> argument-type substitution applied
// when instantiating a generic struct, enum, or function signature at a
// particular use site. Grounded on bootstrap/types/substitution.go's
// substitution abstraction, retargeted from solver guesses to generic
// instantiation since OtterLang's generics carry no bounds to solve for.
type subst map[string]Type

// Apply rewrites t, replacing every GenericRef naming a parameter in s with
// its argument. Types with no generic reference inside are returned
// unchanged.
func Apply(t Type, s subst) Type {
	switch v := t.(type) {
	case *GenericRef:
		if arg, ok := s[v.Name]; ok {
			return arg
		}
		return v
	case *ListType:
		return &ListType{Elem: Apply(v.Elem, s)}
	case *DictType:
		return &DictType{Key: Apply(v.Key, s), Value: Apply(v.Value, s)}
	case *TupleType:
		elems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Apply(e, s)
		}
		return &TupleType{Elems: elems}
	case *FuncType:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Apply(p, s)
		}
		return &FuncType{Params: params, Ret: Apply(v.Ret, s)}
	case *TaskType:
		return &TaskType{Result: Apply(v.Result, s)}
	case *StructType:
		if len(v.Args) == 0 {
			return v
		}
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Apply(a, s)
		}
		fields := make([]StructField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = StructField{Name: f.Name, Type: Apply(f.Type, s)}
		}
		return NewStructType(v.Name, v.decl, args, fields)
	case *EnumType:
		if len(v.Args) == 0 {
			return v
		}
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Apply(a, s)
		}
		variants := make([]EnumVariant, len(v.Variants))
		for i, vr := range v.Variants {
			payload := make([]Type, len(vr.Payload))
			for j, p := range vr.Payload {
				payload[j] = Apply(p, s)
			}
			variants[i] = EnumVariant{Name: vr.Name, Payload: payload}
		}
		return NewEnumType(v.Name, v.decl, args, variants)
	default:
		return t
	}
}

// GenericRef is an unresolved reference to one of a declaration's own
// generic parameters, appearing inside the declared (uninstantiated)
// field/param/variant types that the checker keeps around per struct/enum/
// function symbol. Apply replaces it with a concrete argument at each use
// site; Repr/equals exist only so it satisfies Type while uninstantiated.
type GenericRef struct {
	Name string
}

func (g *GenericRef) equals(other Type) bool {
	og, ok := other.(*GenericRef)
	return ok && g.Name == og.Name
}

func (g *GenericRef) Repr() string { return g.Name }

// NewSubst builds a substitution from a declaration's generic parameter
// names and the concrete argument types supplied (or inferred) at a use
// site. Panics if the lengths differ, since arity is checked before this
// is ever called.
func NewSubst(params []string, args []Type) subst {
	if len(params) != len(args) {
		panic("types: generic parameter/argument count mismatch")
	}
	s := make(subst, len(params))
	for i, p := range params {
		s[p] = args[i]
	}
	return s
}
