package ast

import "silica/internal/source"

// Statement is an unresolved statement node.
type Statement interface {
	Node
	isStatement()
}

func (*DeclStmt) isStatement()     {}
func (*ExprStmt) isStatement()     {}
func (*Block) isStatement()        {}
func (*IfStmt) isStatement()       {}
func (*WhileStmt) isStatement()    {}
func (*DoWhileStmt) isStatement()  {}
func (*ForStmt) isStatement()      {}
func (*ReturnStmt) isStatement()   {}
func (*BreakStmt) isStatement()    {}
func (*ContinueStmt) isStatement() {}
func (*EmitStmt) isStatement()     {}
func (*TryCatchStmt) isStatement() {}

// DeclStmt declares a local variable, always with an explicit type.
type DeclStmt struct {
	Sp   source.Span
	Type TypeName
	Name *Ident
	Init Expression // may be nil
}

func (s *DeclStmt) Span() source.Span { return s.Sp }

type ExprStmt struct {
	Sp   source.Span
	Expr Expression
}

func (s *ExprStmt) Span() source.Span { return s.Sp }

type Block struct {
	Sp    source.Span
	Stmts []Statement
}

func (s *Block) Span() source.Span { return s.Sp }

type IfStmt struct {
	Sp   source.Span
	Cond Expression
	Then *Block
	Else Statement // *Block, *IfStmt or nil
}

func (s *IfStmt) Span() source.Span { return s.Sp }

type WhileStmt struct {
	Sp   source.Span
	Cond Expression
	Body *Block
}

func (s *WhileStmt) Span() source.Span { return s.Sp }

type DoWhileStmt struct {
	Sp   source.Span
	Body *Block
	Cond Expression
}

func (s *DoWhileStmt) Span() source.Span { return s.Sp }

// ForStmt is for (init; cond; next) body. Every header slot may be nil.
type ForStmt struct {
	Sp   source.Span
	Init Statement // *DeclStmt or *ExprStmt
	Cond Expression
	Next Expression
	Body *Block
}

func (s *ForStmt) Span() source.Span { return s.Sp }

type ReturnStmt struct {
	Sp     source.Span
	Values []Expression
}

func (s *ReturnStmt) Span() source.Span { return s.Sp }

type BreakStmt struct {
	Sp source.Span
}

func (s *BreakStmt) Span() source.Span { return s.Sp }

type ContinueStmt struct {
	Sp source.Span
}

func (s *ContinueStmt) Span() source.Span { return s.Sp }

// EmitStmt is emit Event(args).
type EmitStmt struct {
	Sp    source.Span
	Event *Ident
	Args  []Expression
}

func (s *EmitStmt) Span() source.Span { return s.Sp }

// CatchKind distinguishes the two supported catch clause shapes.
type CatchKind uint8

const (
	// CatchError is catch Error(string reason).
	CatchError CatchKind = iota
	// CatchBytes is catch (bytes raw).
	CatchBytes
)

type CatchClause struct {
	Sp    source.Span
	Kind  CatchKind
	Param *Parameter // may be nil for catch Error() without binding
	Body  *Block
}

func (c *CatchClause) Span() source.Span { return c.Sp }

// TryCatchStmt wraps an external call or constructor call. The success block
// sees the Returns bindings; each catch clause gets its own scope.
type TryCatchStmt struct {
	Sp      source.Span
	Call    Expression
	Returns []*Parameter
	Success *Block
	Catches []*CatchClause
}

func (s *TryCatchStmt) Span() source.Span { return s.Sp }
