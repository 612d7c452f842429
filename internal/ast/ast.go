// Package ast defines the typed syntax tree the interpreter (internal/interp)
// evaluates. spec.md §1 treats the script parser as an external collaborator
// ("assumed to produce a typed AST") — this package is the contract such a
// parser would target; it is consumed here, not produced, matching the
// original Rust runtime's ayaka_script crate.
package ast

import "github.com/ayaka-run/ayaka/internal/value"

// Program is a sequence of expressions. Evaluating one clears the temp
// scope first and yields the value of its last expression (spec.md §4.4);
// an empty program evaluates to Unit.
type Program struct {
	Exprs []Expr
}

// Expr is any evaluable script expression.
type Expr interface {
	isExpr()
}

// RefKind distinguishes the two variable scopes a Ref may address.
type RefKind int

const (
	// RefVar addresses the temp scope (unprefixed identifiers).
	RefVar RefKind = iota
	// RefCtx addresses the record locals ($-prefixed identifiers).
	RefCtx
)

// Ref reads or (as the left-hand side of Assign/Inplace) writes a variable.
type Ref struct {
	Kind RefKind
	Name string
}

func (Ref) isExpr() {}

// Const is a literal value.
type Const struct {
	Value value.Raw
}

func (Const) isExpr() {}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	UnaryPositive UnaryOp = iota
	UnaryNegative
	UnaryNot
)

// Unary applies a UnaryOp to an operand.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

func (Unary) isExpr() {}

// ValBinaryOp is a value-producing binary operator (arithmetic / bitwise /
// string ops), the `op` in `Binary(lhs, Val(op), rhs)`.
type ValBinaryOp int

const (
	OpAdd ValBinaryOp = iota
	OpMinus
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
)

// LogicBinaryOp is a boolean-producing binary operator: short-circuit
// And/Or, or one of the six comparisons.
type LogicBinaryOp int

const (
	LogicAnd LogicBinaryOp = iota
	LogicOr
	LogicEq
	LogicNeq
	LogicLt
	LogicLe
	LogicGt
	LogicGe
)

// BinaryOpKind selects which of the four binary-operator families a Binary
// node uses.
type BinaryOpKind int

const (
	BinaryVal BinaryOpKind = iota
	BinaryLogic
	BinaryAssign
	BinaryInplace
)

// Binary is lhs <op> rhs. Which of Val/Logic/Assign/Inplace applies is given
// by Kind; ValOp is populated for Val and Inplace, LogicOp for Logic.
type Binary struct {
	Lhs     Expr
	Kind    BinaryOpKind
	ValOp   ValBinaryOp
	LogicOp LogicBinaryOp
	Rhs     Expr
}

func (Binary) isExpr() {}

// Call invokes a function. An empty Namespace selects an interpreter
// intrinsic (currently only `if`); otherwise Namespace names a loaded
// plugin module and Name one of its exported methods.
type Call struct {
	Namespace string
	Name      string
	Args      []Expr
}

func (Call) isExpr() {}

// CommandKind distinguishes the Text command variants of spec.md §3/§4.4.
type CommandKind int

const (
	// CmdCtx reads a record local and stringifies it.
	CmdCtx CommandKind = iota
	// CmdCharacter names the speaking character; structurally preserved,
	// evaluates to Unit.
	CmdCharacter
	// CmdRes references a locale resource; structurally preserved,
	// evaluates to Unit (resolved later by the playback engine, see
	// SPEC_FULL.md "Supplemented features").
	CmdRes
	// CmdOther is any command name not recognized by the interpreter
	// (e.g. "block", "switch"); structurally preserved for the plugin
	// pipeline, evaluates to Unit.
	CmdOther
)

// Command is one embedded command inside a Text.
type Command struct {
	Kind CommandKind
	// Name holds the character name (CmdCharacter), resource key (CmdRes),
	// or command name (CmdOther). Unused for CmdCtx, which uses Args[0].
	Name string
	// Args holds the command's raw argument list, as text; for CmdCtx,
	// Args[0] is the variable name.
	Args []string
	// Program is populated by the parser for a CmdOther("switch", …)
	// command: the guarded action's compiled expression sequence, run by
	// the playback engine when the switch is chosen (spec.md §4.6
	// "call(switch.action)"). nil for every other command kind.
	Program *Program
}

// SubTextKind distinguishes a Text node's two shapes.
type SubTextKind int

const (
	SubTextStr SubTextKind = iota
	SubTextCmd
)

// SubText is one ordered fragment of a Text: either a plain string or an
// embedded Command. Order here is the order the playback engine preserves
// when linearizing into ActionLine entries (SPEC_FULL.md, decided open
// question on structural preservation).
type SubText struct {
	Kind SubTextKind
	Str  string
	Cmd  Command
}

// Text is a parsed script-text string: plain substrings interleaved with
// embedded commands.
type Text struct {
	Parts []SubText
}
