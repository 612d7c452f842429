package interp

import (
	"strings"

	"github.com/ayaka-run/ayaka/internal/ast"
	"github.com/ayaka-run/ayaka/internal/value"
)

// EvalProgram clears the temp scope and evaluates each expression in
// sequence, returning the value of the last one (spec.md §4.4). An empty
// program evaluates to Unit.
func (t *VarTable) EvalProgram(p *ast.Program) value.Raw {
	t.Vars = value.NewMap()
	res := value.Unit
	for _, e := range p.Exprs {
		res = t.EvalExpr(e)
	}
	return res
}

// EvalExpr evaluates a single AST expression node.
func (t *VarTable) EvalExpr(e ast.Expr) value.Raw {
	switch n := e.(type) {
	case ast.Ref:
		return t.evalRef(n)
	case ast.Const:
		return n.Value
	case ast.Unary:
		return t.evalUnary(n)
	case ast.Binary:
		return t.evalBinary(n)
	case ast.Call:
		return t.evalCall(n)
	default:
		t.warn("interp: unhandled expression node", "type", e)
		return value.Unit
	}
}

func (t *VarTable) evalRef(r ast.Ref) value.Raw {
	switch r.Kind {
	case ast.RefVar:
		if v, ok := t.Vars[r.Name]; ok {
			return v
		}
		t.warn("cannot find variable", "name", r.Name)
		return value.Unit
	case ast.RefCtx:
		if v, ok := (*t.Locals)[r.Name]; ok {
			return v
		}
		t.warn("cannot find variable", "name", "$"+r.Name)
		return value.Unit
	default:
		return value.Unit
	}
}

func (t *VarTable) assign(ref ast.Ref, v value.Raw) {
	switch ref.Kind {
	case ast.RefVar:
		t.Vars[ref.Name] = v
	case ast.RefCtx:
		(*t.Locals)[ref.Name] = v
	}
}

func (t *VarTable) evalUnary(u ast.Unary) value.Raw {
	v := t.EvalExpr(u.Operand)
	switch u.Op {
	case ast.UnaryPositive:
		return value.Num(v.GetNum())
	case ast.UnaryNegative:
		return value.Num(-v.GetNum())
	case ast.UnaryNot:
		switch v.Type() {
		case value.TypeBool:
			return value.Bool(!v.GetBool())
		case value.TypeNum:
			return value.Num(^v.GetNum())
		case value.TypeStr:
			return value.Str("")
		default:
			return value.Unit
		}
	default:
		return value.Unit
	}
}

func (t *VarTable) evalBinary(b ast.Binary) value.Raw {
	switch b.Kind {
	case ast.BinaryVal:
		return t.binVal(b.Lhs, b.ValOp, b.Rhs)
	case ast.BinaryLogic:
		return t.binLogic(b.Lhs, b.LogicOp, b.Rhs)
	case ast.BinaryAssign:
		ref, ok := b.Lhs.(ast.Ref)
		if !ok {
			t.warn("interp: assignment target is not a reference")
			return value.Unit
		}
		t.assign(ref, t.EvalExpr(b.Rhs))
		return value.Unit
	case ast.BinaryInplace:
		ref, ok := b.Lhs.(ast.Ref)
		if !ok {
			t.warn("interp: in-place target is not a reference")
			return value.Unit
		}
		t.assign(ref, t.binVal(b.Lhs, b.ValOp, b.Rhs))
		return value.Unit
	default:
		return value.Unit
	}
}

func maxType(a, b value.Type) value.Type {
	if b > a {
		return b
	}
	return a
}

func (t *VarTable) binVal(lhsExpr ast.Expr, op ast.ValBinaryOp, rhsExpr ast.Expr) value.Raw {
	lhs := t.EvalExpr(lhsExpr)
	rhs := t.EvalExpr(rhsExpr)
	switch maxType(lhs.Type(), rhs.Type()) {
	case value.TypeUnit:
		return value.Unit
	case value.TypeBool:
		return binBool(lhs.GetBool(), op, rhs.GetBool(), t)
	case value.TypeNum:
		n, ok := binNum(lhs.GetNum(), op, rhs.GetNum())
		if !ok {
			t.warn("unimplemented operator", "op", op, "type", "num")
			return value.Unit
		}
		return value.Num(n)
	case value.TypeStr:
		return t.binStr(lhs, rhs, op)
	default:
		return value.Unit
	}
}

func binBool(lhs bool, op ast.ValBinaryOp, rhs bool, t *VarTable) value.Raw {
	switch op {
	case ast.OpAdd, ast.OpMinus, ast.OpMul, ast.OpDiv, ast.OpMod:
		l, r := int64(0), int64(0)
		if lhs {
			l = 1
		}
		if rhs {
			r = 1
		}
		n, ok := binNum(l, op, r)
		if !ok {
			return value.Unit
		}
		return value.Num(n)
	case ast.OpAnd:
		return value.Bool(lhs && rhs)
	case ast.OpOr:
		return value.Bool(lhs || rhs)
	case ast.OpXor:
		return value.Bool(lhs != rhs)
	default:
		t.warn("unimplemented operator", "op", op, "type", "bool")
		return value.Unit
	}
}

func binNum(lhs int64, op ast.ValBinaryOp, rhs int64) (int64, bool) {
	switch op {
	case ast.OpAdd:
		return lhs + rhs, true
	case ast.OpMinus:
		return lhs - rhs, true
	case ast.OpMul:
		return lhs * rhs, true
	case ast.OpDiv:
		if rhs == 0 {
			return 0, false
		}
		return lhs / rhs, true
	case ast.OpMod:
		if rhs == 0 {
			return 0, false
		}
		return lhs % rhs, true
	case ast.OpAnd:
		return lhs & rhs, true
	case ast.OpOr:
		return lhs | rhs, true
	case ast.OpXor:
		return lhs ^ rhs, true
	default:
		return 0, false
	}
}

func (t *VarTable) binStr(lhs, rhs value.Raw, op ast.ValBinaryOp) value.Raw {
	switch op {
	case ast.OpAdd:
		return value.Str(lhs.GetStr() + rhs.GetStr())
	case ast.OpMul:
		switch {
		case lhs.Type() == value.TypeStr && rhs.Type() != value.TypeStr:
			return value.Str(strings.Repeat(lhs.GetStr(), int(rhs.GetNum())))
		case rhs.Type() == value.TypeStr && lhs.Type() != value.TypeStr:
			return value.Str(strings.Repeat(rhs.GetStr(), int(lhs.GetNum())))
		default:
			t.warn("unimplemented operator", "op", op, "type", "str*str")
			return value.Unit
		}
	default:
		t.warn("unimplemented operator", "op", op, "type", "str")
		return value.Unit
	}
}

func (t *VarTable) binLogic(lhsExpr ast.Expr, op ast.LogicBinaryOp, rhsExpr ast.Expr) value.Raw {
	switch op {
	case ast.LogicAnd:
		return value.Bool(t.EvalExpr(lhsExpr).GetBool() && t.EvalExpr(rhsExpr).GetBool())
	case ast.LogicOr:
		return value.Bool(t.EvalExpr(lhsExpr).GetBool() || t.EvalExpr(rhsExpr).GetBool())
	default:
		lhs := t.EvalExpr(lhsExpr)
		rhs := t.EvalExpr(rhsExpr)
		switch maxType(lhs.Type(), rhs.Type()) {
		case value.TypeUnit:
			return value.Bool(op == ast.LogicEq)
		default:
			return value.Bool(cmpOrd(lhs, op, rhs))
		}
	}
}

func cmpOrd(lhs value.Raw, op ast.LogicBinaryOp, rhs value.Raw) bool {
	switch op {
	case ast.LogicEq:
		return lhs.Equal(rhs)
	case ast.LogicNeq:
		return !lhs.Equal(rhs)
	case ast.LogicLt:
		return lhs.Less(rhs)
	case ast.LogicLe:
		return lhs.Less(rhs) || lhs.Equal(rhs)
	case ast.LogicGt:
		return !lhs.Less(rhs) && !lhs.Equal(rhs)
	case ast.LogicGe:
		return !lhs.Less(rhs)
	default:
		return false
	}
}

func (t *VarTable) evalCall(c ast.Call) value.Raw {
	if c.Namespace == "" {
		return t.evalIntrinsic(c)
	}
	args := make([]value.Raw, len(c.Args))
	for i, a := range c.Args {
		args[i] = t.EvalExpr(a)
	}
	if t.Host == nil || !t.Host.HasModule(c.Namespace) {
		t.warn("cannot find namespace", "namespace", c.Namespace)
		return value.Unit
	}
	res, err := t.Host.DispatchMethod(t.Ctx, c.Namespace, c.Name, args)
	if err != nil {
		t.warn("plugin call failed", "namespace", c.Namespace, "name", c.Name, "error", err)
		return value.Unit
	}
	return res
}

// evalIntrinsic handles the small set of functions recognized when Call.Namespace
// is empty. Currently only `if(cond, then, else?)`, evaluated lazily: only the
// selected branch is evaluated. An omitted else branch yields Unit.
func (t *VarTable) evalIntrinsic(c ast.Call) value.Raw {
	switch c.Name {
	case "if":
		if len(c.Args) < 2 {
			t.warn("interp: if() requires at least 2 arguments")
			return value.Unit
		}
		if t.EvalExpr(c.Args[0]).GetBool() {
			return t.EvalExpr(c.Args[1])
		}
		if len(c.Args) >= 3 {
			return t.EvalExpr(c.Args[2])
		}
		return value.Unit
	default:
		t.warn("interp: unimplemented intrinsic", "name", c.Name)
		return value.Unit
	}
}
