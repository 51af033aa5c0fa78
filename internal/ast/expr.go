package ast

import "silica/internal/source"

// Expression is an unresolved expression node.
type Expression interface {
	Node
	isExpression()
}

func (*BoolLiteral) isExpression()     {}
func (*NumberLiteral) isExpression()   {}
func (*RationalLiteral) isExpression() {}
func (*StringLiteral) isExpression()   {}
func (*ArrayLiteral) isExpression()    {}
func (*IdentExpr) isExpression()       {}
func (*MemberAccess) isExpression()    {}
func (*IndexAccess) isExpression()     {}
func (*UnaryExpr) isExpression()       {}
func (*BinaryExpr) isExpression()      {}
func (*Conditional) isExpression()     {}
func (*AssignExpr) isExpression()      {}
func (*CallExpr) isExpression()        {}
func (*NewExpr) isExpression()         {}

type BoolLiteral struct {
	Sp    source.Span
	Value bool
}

func (e *BoolLiteral) Span() source.Span { return e.Sp }

// NumberLiteral keeps the source text; decimal and hexadecimal forms are
// parsed into a magnitude during resolution, where the type hint is known.
type NumberLiteral struct {
	Sp   source.Span
	Text string
}

func (e *NumberLiteral) Span() source.Span { return e.Sp }

// RationalLiteral is a non-integer numeric literal like 0.5. It resolves to
// the compile-time Rational type unless context forces an integer.
type RationalLiteral struct {
	Sp   source.Span
	Text string
}

func (e *RationalLiteral) Span() source.Span { return e.Sp }

type StringLiteral struct {
	Sp    source.Span
	Value string
}

func (e *StringLiteral) Span() source.Span { return e.Sp }

// ArrayLiteral is [a, b, c]. Shape checks happen during resolution.
type ArrayLiteral struct {
	Sp    source.Span
	Elems []Expression
}

func (e *ArrayLiteral) Span() source.Span { return e.Sp }

type IdentExpr struct {
	Sp   source.Span
	Name string
}

func (e *IdentExpr) Span() source.Span { return e.Sp }

type MemberAccess struct {
	Sp     source.Span
	Target Expression
	Member *Ident
}

func (e *MemberAccess) Span() source.Span { return e.Sp }

type IndexAccess struct {
	Sp     source.Span
	Target Expression
	Index  Expression
}

func (e *IndexAccess) Span() source.Span { return e.Sp }

// UnaryExpr is a prefix operator: !, ~ or unary minus.
type UnaryExpr struct {
	Sp      source.Span
	Op      string
	Operand Expression
}

func (e *UnaryExpr) Span() source.Span { return e.Sp }

type BinaryExpr struct {
	Sp    source.Span
	Op    string
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) Span() source.Span { return e.Sp }

// Conditional is cond ? a : b.
type Conditional struct {
	Sp    source.Span
	Cond  Expression
	True  Expression
	False Expression
}

func (e *Conditional) Span() source.Span { return e.Sp }

// AssignExpr is an assignment or compound assignment. Assignments are
// expressions so they can appear in for-loop headers, but they resolve to
// Void and are only meaningful as statements.
type AssignExpr struct {
	Sp     source.Span
	Op     string // "=", "+=", "-=", ...
	Target Expression
	Value  Expression
}

func (e *AssignExpr) Span() source.Span { return e.Sp }

// NamedArg is one entry of a named-argument call f({a: 1, b: 2}).
type NamedArg struct {
	Sp    source.Span
	Name  *Ident
	Value Expression
}

func (e *NamedArg) Span() source.Span { return e.Sp }

// CallArgEntry is one key of a call-argument block: {value: v, gas: g}.
type CallArgEntry struct {
	Sp    source.Span
	Name  *Ident
	Value Expression
}

func (e *CallArgEntry) Span() source.Span { return e.Sp }

// CallExpr covers every call shape; the resolver distinguishes builtin,
// internal, external and constructor calls from the callee. Exactly one of
// Args/NamedArgs is populated for calls written with named arguments.
type CallExpr struct {
	Sp        source.Span
	Callee    Expression
	Args      []Expression
	NamedArgs []*NamedArg
	CallArgs  []*CallArgEntry
}

func (e *CallExpr) Span() source.Span { return e.Sp }

// NewExpr is `new C`; it only appears as the callee of a CallExpr.
type NewExpr struct {
	Sp   source.Span
	Type TypeName
}

func (e *NewExpr) Span() source.Span { return e.Sp }
