package sema

import "silica/internal/source"

// Statement is a resolved statement node.
type Statement interface {
	Span() source.Span
	isStmt()
}

type stmtBase struct {
	Sp source.Span
}

func (s *stmtBase) Span() source.Span { return s.Sp }
func (s *stmtBase) isStmt()           {}

type Block struct {
	stmtBase
	Stmts []Statement
	// ReachableEnd is false when control cannot fall off the end of the
	// block, because some statement in it is terminal.
	ReachableEnd bool
}

// VarDecl declares a local with an optional initializer, already converted
// to the declared type.
type VarDecl struct {
	stmtBase
	Local *Local
	Init  Expression
}

type ExprStatement struct {
	stmtBase
	Expr Expression
}

type If struct {
	stmtBase
	Cond Expression
	Then *Block
	Else Statement // *Block, *If or nil
}

type While struct {
	stmtBase
	Cond Expression
	Body *Block
	// CondConstTrue is set for absent or constant-true conditions; together
	// with Breaks it decides whether code after the loop is reachable.
	CondConstTrue bool
	Breaks        int
}

type DoWhile struct {
	stmtBase
	Body          *Block
	Cond          Expression
	CondConstTrue bool
	Breaks        int
}

type For struct {
	stmtBase
	Init          Statement
	Cond          Expression
	Next          Expression
	Body          *Block
	CondConstTrue bool
	Breaks        int
}

type Return struct {
	stmtBase
	Values []Expression
}

type Break struct{ stmtBase }

type Continue struct{ stmtBase }

// Emit writes an event. Args are converted to the field types.
type Emit struct {
	stmtBase
	Event *Event
	Args  []Expression
}

// Catch is one resolved catch clause.
type Catch struct {
	Kind  CatchKind
	Local *Local // nil when the clause binds nothing
	Body  *Block
}

// CatchKind mirrors the two source-level clause shapes.
type CatchKind uint8

const (
	CatchErrorString CatchKind = iota
	CatchRawBytes
)

type TryCatch struct {
	stmtBase
	Call    Expression
	Returns []*Local
	Success *Block
	Catches []*Catch
}
