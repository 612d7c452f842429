package interp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/ast"
	"github.com/ayaka-run/ayaka/internal/interp"
	"github.com/ayaka-run/ayaka/internal/value"
)

func newTable(locals *value.Map) *interp.VarTable {
	return interp.New(context.Background(), nil, locals, nil)
}

func varRef(name string) ast.Ref { return ast.Ref{Kind: ast.RefVar, Name: name} }
func ctxRef(name string) ast.Ref { return ast.Ref{Kind: ast.RefCtx, Name: name} }
func num(n int64) ast.Const      { return ast.Const{Value: value.Num(n)} }

func assign(lhs ast.Expr, rhs ast.Expr) ast.Binary {
	return ast.Binary{Lhs: lhs, Kind: ast.BinaryAssign, Rhs: rhs}
}

func inplaceAdd(lhs ast.Expr, rhs ast.Expr) ast.Binary {
	return ast.Binary{Lhs: lhs, Kind: ast.BinaryInplace, ValOp: ast.OpAdd, Rhs: rhs}
}

// scenario 1 from spec.md §8: a = 0; a += 1; a += a; a  -> Num(2); then
// reading `a` in a fresh program returns Unit (temp scope cleared).
func TestTempScopeClearedEachProgram(t *testing.T) {
	locals := value.NewMap()
	vt := newTable(&locals)

	prog := &ast.Program{Exprs: []ast.Expr{
		assign(varRef("a"), num(0)),
		inplaceAdd(varRef("a"), num(1)),
		inplaceAdd(varRef("a"), varRef("a")),
		varRef("a"),
	}}
	got := vt.EvalProgram(prog)
	assert.True(t, value.Num(2).Equal(got))

	again := &ast.Program{Exprs: []ast.Expr{varRef("a")}}
	got2 := vt.EvalProgram(again)
	assert.Equal(t, value.TypeUnit, got2.Type())
}

// scenario 2: $a = 0; $a += 1; $a += a; $a -> Num(1); persists in locals.
func TestRecordLocalsPersist(t *testing.T) {
	locals := value.NewMap()
	vt := newTable(&locals)

	prog := &ast.Program{Exprs: []ast.Expr{
		assign(ctxRef("a"), num(0)),
		inplaceAdd(ctxRef("a"), num(1)),
		inplaceAdd(ctxRef("a"), varRef("a")), // `a` (temp) is unset -> Unit -> 0
		ctxRef("a"),
	}}
	got := vt.EvalProgram(prog)
	assert.True(t, value.Num(1).Equal(got))
	assert.True(t, value.Num(1).Equal(locals["a"]))
}

// scenario 3: if(1+1+4+5+1+4 == 16, "sodayo", ~) -> "sodayo"; if(1+1==3,"x") -> Unit.
func TestIfIntrinsic(t *testing.T) {
	locals := value.NewMap()
	vt := newTable(&locals)

	sum := ast.Expr(num(1))
	for _, n := range []int64{1, 4, 5, 1, 4} {
		sum = ast.Binary{Lhs: sum, Kind: ast.BinaryVal, ValOp: ast.OpAdd, Rhs: num(n)}
	}
	cond := ast.Binary{Lhs: sum, Kind: ast.BinaryLogic, LogicOp: ast.LogicEq, Rhs: num(16)}
	ifCall := ast.Call{Name: "if", Args: []ast.Expr{cond, ast.Const{Value: value.Str("sodayo")}, ast.Const{Value: value.Unit}}}

	got := vt.EvalProgram(&ast.Program{Exprs: []ast.Expr{ifCall}})
	assert.Equal(t, "sodayo", got.GetStr())

	falseCond := ast.Binary{Lhs: num(1 + 1), Kind: ast.BinaryLogic, LogicOp: ast.LogicEq, Rhs: num(3)}
	ifNoElse := ast.Call{Name: "if", Args: []ast.Expr{falseCond, ast.Const{Value: value.Str("x")}}}
	got2 := vt.EvalProgram(&ast.Program{Exprs: []ast.Expr{ifNoElse}})
	assert.Equal(t, value.TypeUnit, got2.Type())
}

type fakeHost struct {
	modules map[string]bool
	calls   func(ns, name string, args []value.Raw) (value.Raw, error)
}

func (h *fakeHost) HasModule(ns string) bool { return h.modules[ns] }
func (h *fakeHost) DispatchMethod(_ context.Context, ns, name string, args []value.Raw) (value.Raw, error) {
	return h.calls(ns, name, args)
}

// scenario 4: random.rnd(10) in [0,10); nope.x() -> Unit (call into a namespace with no loaded module logs, returns Unit).
func TestPluginDispatch(t *testing.T) {
	locals := value.NewMap()
	host := &fakeHost{
		modules: map[string]bool{"random": true},
		calls: func(ns, name string, args []value.Raw) (value.Raw, error) {
			require.Equal(t, "random", ns)
			if name == "rnd" {
				return value.Num(7), nil // deterministic stand-in for a real RNG plugin
			}
			return value.Unit, assertUnknownMethod(name)
		},
	}
	vt := interp.New(context.Background(), host, &locals, nil)

	rndCall := ast.Call{Namespace: "random", Name: "rnd", Args: []ast.Expr{num(10)}}
	got := vt.EvalProgram(&ast.Program{Exprs: []ast.Expr{rndCall}})
	assert.GreaterOrEqual(t, got.GetNum(), int64(0))
	assert.Less(t, got.GetNum(), int64(10))

	missingNs := ast.Call{Namespace: "nope", Name: "x", Args: nil}
	got2 := vt.EvalProgram(&ast.Program{Exprs: []ast.Expr{missingNs}})
	assert.Equal(t, value.TypeUnit, got2.Type())
}

func assertUnknownMethod(name string) error {
	return &unknownMethodErr{name}
}

type unknownMethodErr struct{ name string }

func (e *unknownMethodErr) Error() string { return "unknown method: " + e.name }

func TestTextEvalTrimsAndPreservesCommands(t *testing.T) {
	locals := value.Map{"name": value.Str("Ada")}
	vt := newTable(&locals)

	text := &ast.Text{Parts: []ast.SubText{
		{Kind: ast.SubTextStr, Str: "  hi "},
		{Kind: ast.SubTextCmd, Cmd: ast.Command{Kind: ast.CmdCtx, Args: []string{"name"}}},
		{Kind: ast.SubTextStr, Str: "! "},
		{Kind: ast.SubTextCmd, Cmd: ast.Command{Kind: ast.CmdOther, Name: "block", Args: []string{"a"}}},
	}}
	got := vt.EvalText(text)
	assert.Equal(t, "hi Ada!", got.GetStr())
}
