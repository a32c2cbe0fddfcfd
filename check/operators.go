package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/types"
)

// checkUnary types `-e` and `not e`. Grounded on
// bootstrap/walk/oper_check.go's getIntrinsicUnaryOperator, reworked for a
// fixed int/float/bool operator set with no operator-overload table since
// OtterLang has no user-defined operator methods.
func (c *Checker) checkUnary(mod *depm.Module, e *ast.Unary) types.Type {
	opType := c.checkExpr(mod, e.Operand)
	switch e.Op {
	case ast.UnaryNeg:
		if p, ok := numericPrim(opType); ok {
			return c.set(e, types.Primitive(p))
		}
		if types.Equals(opType, types.AnyType) {
			return c.set(e, types.AnyType)
		}
		c.errorf(e.Span(), report.CodeTypeMismatch, "cannot negate %s", opType.Repr())
		return c.set(e, types.AnyType)
	case ast.UnaryNot:
		c.mustUnify(e.Operand.Span(), types.Primitive(types.PrimBool), opType)
		return c.set(e, types.Primitive(types.PrimBool))
	default:
		return c.set(e, types.AnyType)
	}
}

func (c *Checker) checkBinary(mod *depm.Module, e *ast.Binary) types.Type {
	lt := c.checkExpr(mod, e.Lhs)
	rt := c.checkExpr(mod, e.Rhs)
	switch e.Op {
	case ast.BinAdd:
		return c.set(e, c.checkAdd(e, lt, rt))
	case ast.BinSub, ast.BinMul, ast.BinMod, ast.BinDiv:
		return c.set(e, c.checkArith(e, lt, rt))
	case ast.BinEq, ast.BinNeq:
		c.mustUnify(e.Span(), lt, rt)
		return c.set(e, types.Primitive(types.PrimBool))
	case ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		return c.set(e, c.checkComparison(e, lt, rt))
	default:
		return c.set(e, types.AnyType)
	}
}

// checkAdd implements spec.md §4.E's overload of `+`: numeric addition
// when both sides are numeric, string concatenation when at least one
// side is string (the other auto-stringified, marked the same way an
// f-string's non-string pieces are).
func (c *Checker) checkAdd(e *ast.Binary, lt, rt types.Type) types.Type {
	if lp, lok := numericPrim(lt); lok {
		if rp, rok := numericPrim(rt); rok {
			return c.widenArith(e, lp, rp)
		}
	}
	str := types.Primitive(types.PrimString)
	if types.Equals(lt, str) || types.Equals(rt, str) {
		if !types.Equals(lt, str) {
			c.result.Stringify[e.Lhs.ID()] = true
		}
		if !types.Equals(rt, str) {
			c.result.Stringify[e.Rhs.ID()] = true
		}
		return str
	}
	if types.Equals(lt, types.AnyType) || types.Equals(rt, types.AnyType) {
		return types.AnyType
	}
	c.errorf(e.Span(), report.CodeTypeMismatch, "cannot add %s and %s", lt.Repr(), rt.Repr())
	return types.AnyType
}

// checkArith types `-`, `*`, `%`, and `/`: both operands numeric, widening
// an int operand to float if the other is float. `/` on two ints still
// yields int (spec.md §4.E); widening it to float happens only where the
// surrounding context demands one, via mustUnifyWiden at that call site.
func (c *Checker) checkArith(e *ast.Binary, lt, rt types.Type) types.Type {
	lp, lok := numericPrim(lt)
	rp, rok := numericPrim(rt)
	if lok && rok {
		return c.widenArith(e, lp, rp)
	}
	if types.Equals(lt, types.AnyType) || types.Equals(rt, types.AnyType) {
		return types.AnyType
	}
	c.errorf(e.Span(), report.CodeTypeMismatch, "arithmetic requires numeric operands, got %s and %s", lt.Repr(), rt.Repr())
	return types.AnyType
}

func (c *Checker) checkComparison(e *ast.Binary, lt, rt types.Type) types.Type {
	if lp, lok := numericPrim(lt); lok {
		if rp, rok := numericPrim(rt); rok {
			c.widenArith(e, lp, rp)
			return types.Primitive(types.PrimBool)
		}
	}
	str := types.Primitive(types.PrimString)
	if types.Equals(lt, str) && types.Equals(rt, str) {
		return types.Primitive(types.PrimBool)
	}
	bl := types.Primitive(types.PrimBool)
	if types.Equals(lt, bl) && types.Equals(rt, bl) {
		return bl
	}
	if types.Equals(lt, types.AnyType) || types.Equals(rt, types.AnyType) {
		return types.Primitive(types.PrimBool)
	}
	c.errorf(e.Span(), report.CodeTypeMismatch, "cannot compare %s and %s", lt.Repr(), rt.Repr())
	return types.Primitive(types.PrimBool)
}

// widenArith resolves a mixed-numeric binary operation's result type,
// recording a Widen marker on whichever operand is int when the other is
// float (spec.md §4.E's implicit int->float widening).
func (c *Checker) widenArith(e *ast.Binary, lp, rp types.Primitive) types.Type {
	if lp == types.PrimFloat || rp == types.PrimFloat {
		if lp == types.PrimInt {
			c.result.Widen[e.Lhs.ID()] = true
		}
		if rp == types.PrimInt {
			c.result.Widen[e.Rhs.ID()] = true
		}
		return types.Primitive(types.PrimFloat)
	}
	return types.Primitive(types.PrimInt)
}

func numericPrim(t types.Type) (types.Primitive, bool) {
	p, ok := types.InnerType(t).(types.Primitive)
	if !ok || !p.IsNumeric() {
		return 0, false
	}
	return p, true
}
