package sema

import (
	"math/big"

	"silica/internal/source"
	"silica/internal/target"
)

// Expression is a resolved, typed expression node. Every node knows its type
// and its source span; nodes with the Unresolved type carry an error already
// reported elsewhere.
type Expression interface {
	Type() Type
	Span() source.Span
	isExpr()
}

type exprBase struct {
	Ty Type
	Sp source.Span
}

func (e *exprBase) Type() Type        { return e.Ty }
func (e *exprBase) Span() source.Span { return e.Sp }
func (e *exprBase) isExpr()           {}

// BadExpr stands in for an expression that failed to resolve.
type BadExpr struct{ exprBase }

type BoolConst struct {
	exprBase
	Value bool
}

// NumberConst is an integer constant with its concrete resolved type.
type NumberConst struct {
	exprBase
	Value *big.Int
}

// RationalConst keeps full precision; it only survives as an operand of a
// constant expression, never as a runtime value.
type RationalConst struct {
	exprBase
	Value *big.Rat
}

type StringConst struct {
	exprBase
	Value string
}

type ArrayLit struct {
	exprBase
	Elems []Expression
}

// LocalRef reads a local variable or parameter by its scope slot.
type LocalRef struct {
	exprBase
	Local *Local
}

// StateRef reads or writes a contract state variable.
type StateRef struct {
	exprBase
	Variable *Variable
}

// EnumConst is Enum.Variant.
type EnumConst struct {
	exprBase
	Enum  *Enum
	Index int
}

// FuncRef is a function used as a value, producing a function pointer.
type FuncRef struct {
	exprBase
	Fn       *Function
	External bool
	// Receiver is the contract value for external pointers c.f.
	Receiver Expression
}

// FieldAccess selects a struct field.
type FieldAccess struct {
	exprBase
	Target Expression
	Field  *Field
	Index  int
}

// BuiltinValue is an environment value like msg.sender or block.number.
type BuiltinValue struct {
	exprBase
	Builtin *Builtin
}

// ArrayIndex reads an array element; Length reads like arr.length resolve
// via BuiltinValue-free member handling in the resolver.
type ArrayIndex struct {
	exprBase
	Target Expression
	Index  Expression
}

// MappingIndex reads a mapping slot.
type MappingIndex struct {
	exprBase
	Target Expression
	Key    Expression
}

// ArrayLength is arr.length.
type ArrayLength struct {
	exprBase
	Target Expression
}

type Unary struct {
	exprBase
	Op      string
	Operand Expression
}

// Binary is a built-in binary operation. Both operands have already been
// converted to the common operand type.
type Binary struct {
	exprBase
	Op          string
	Left, Right Expression
}

// StringCompare is == or != where one side is a string or bytes value;
// it lowers to a content comparison instead of a word comparison.
type StringCompare struct {
	exprBase
	Op          string
	Left, Right Expression
}

// OperatorCall is a binary operator bound to a user function by a using
// directive.
type OperatorCall struct {
	exprBase
	Op   string
	Fn   *Function
	Args []Expression
}

type ConditionalExpr struct {
	exprBase
	Cond, True, False Expression
}

// Assign is an assignment or compound assignment; its type is Void.
type Assign struct {
	exprBase
	Op     string
	Target Expression
	Value  Expression
}

// Cast is a conversion, implicit or written. Truncates marks conversions
// that can discard information.
type Cast struct {
	exprBase
	Value     Expression
	Implicit  bool
	Truncates bool
}

// InternalCall invokes a function in the same contract, a base, or a free
// function, by direct jump.
type InternalCall struct {
	exprBase
	Fn   *Function
	Args []Expression
}

// ExternalCall invokes a function on another contract instance through its
// address. CallArgs carries resolved call options in declaration order.
type ExternalCall struct {
	exprBase
	Receiver Expression
	Fn       *Function
	Args     []Expression
	CallArgs []ResolvedCallArg
}

// ConstructorCall is new C(args), producing a contract value.
type ConstructorCall struct {
	exprBase
	Contract *Contract
	Args     []Expression
	CallArgs []ResolvedCallArg
}

// LibraryCall is a using-bound method call: the receiver becomes the first
// argument of the library function.
type LibraryCall struct {
	exprBase
	Fn       *Function
	Receiver Expression
	Args     []Expression
}

// PointerCall invokes through a function pointer value.
type PointerCall struct {
	exprBase
	Callee Expression
	Args   []Expression
}

// BuiltinCall invokes a registered builtin function.
type BuiltinCall struct {
	exprBase
	Builtin *Builtin
	Args    []Expression
}

// StructLit is struct construction via call syntax, positional or named;
// Values holds one expression per field in declaration order.
type StructLit struct {
	exprBase
	Struct *Struct
	Values []Expression
}

// TypeRef is a type or namespace used in expression position: the callee of
// a cast or struct construction, or the target of Enum.Variant and
// msg/block/tx member reads. It has no value of its own.
type TypeRef struct {
	exprBase
	// Referent is a Type, or a builtin namespace name string.
	Referent any
}

// ResolvedCallArg is one checked call option.
type ResolvedCallArg struct {
	Kind  target.CallArg
	Value Expression
}
