// Package ast holds the location-tagged parse tree produced by the parser.
// The tree is immutable once built: resolution reads it and produces its own
// typed representation without touching these nodes.
package ast

import "silica/internal/source"

type Node interface {
	Span() source.Span
}

// SourceUnit is one parsed file: an ordered sequence of top-level items.
type SourceUnit struct {
	Sp    source.Span
	Items []SourceItem
}

func (u *SourceUnit) Span() source.Span { return u.Sp }

// SourceItem is anything that may appear at the top level of a file.
type SourceItem interface {
	Node
	isSourceItem()
}

func (*ContractDef) isSourceItem() {}
func (*FunctionDef) isSourceItem() {}
func (*StructDef) isSourceItem()   {}
func (*EnumDef) isSourceItem()     {}
func (*EventDef) isSourceItem()    {}

// ContractPart is anything that may appear inside a contract body.
type ContractPart interface {
	Node
	isContractPart()
}

func (*VariableDef) isContractPart() {}
func (*FunctionDef) isContractPart() {}
func (*StructDef) isContractPart()   {}
func (*EnumDef) isContractPart()     {}
func (*EventDef) isContractPart()    {}
func (*UsingDef) isContractPart()    {}

// Ident is a name with its location.
type Ident struct {
	Sp   source.Span
	Name string
}

func (i *Ident) Span() source.Span { return i.Sp }

// Annotation is an @name("value") marker before a declaration, e.g. the
// deployment identity @program_id("...") on SVM contracts.
type Annotation struct {
	Sp    source.Span
	Name  string
	Value string
}

func (a *Annotation) Span() source.Span { return a.Sp }

// ContractDef declares a contract with optional base contracts.
type ContractDef struct {
	Sp          source.Span
	Annotations []*Annotation
	Name        *Ident
	Bases       []*Ident
	Parts       []ContractPart
}

func (c *ContractDef) Span() source.Span { return c.Sp }

// ProgramID returns the @program_id annotation value, if present.
func (c *ContractDef) ProgramID() (string, bool) {
	for _, a := range c.Annotations {
		if a.Name == "program_id" {
			return a.Value, true
		}
	}
	return "", false
}

// Mutability is a function's declared state access.
type Mutability uint8

const (
	MutNonpayable Mutability = iota
	MutView
	MutPure
	MutPayable
)

func (m Mutability) String() string {
	switch m {
	case MutView:
		return "view"
	case MutPure:
		return "pure"
	case MutPayable:
		return "payable"
	}
	return "nonpayable"
}

// Visibility of a function or state variable.
type Visibility uint8

const (
	VisInternal Visibility = iota
	VisPublic
	VisPrivate
	VisExternal
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "public"
	case VisPrivate:
		return "private"
	case VisExternal:
		return "external"
	}
	return "internal"
}

// Parameter is one function parameter or return slot. The name is optional
// for returns and for external interface declarations.
type Parameter struct {
	Sp   source.Span
	Type TypeName
	Name *Ident
}

func (p *Parameter) Span() source.Span { return p.Sp }

// FunctionDef declares a function or constructor. Body is nil for bodyless
// declarations.
type FunctionDef struct {
	Sp            source.Span
	IsConstructor bool
	Name          *Ident // nil for constructors
	Params        []*Parameter
	Returns       []*Parameter
	Mutability    Mutability
	Visibility    Visibility
	Body          *Block
}

func (f *FunctionDef) Span() source.Span { return f.Sp }

// VariableDef declares a contract state variable.
type VariableDef struct {
	Sp       source.Span
	Type     TypeName
	Name     *Ident
	Public   bool
	Constant bool
	Init     Expression
}

func (v *VariableDef) Span() source.Span { return v.Sp }

// StructDef declares a struct type.
type StructDef struct {
	Sp     source.Span
	Name   *Ident
	Fields []*StructField
}

func (s *StructDef) Span() source.Span { return s.Sp }

type StructField struct {
	Sp   source.Span
	Type TypeName
	Name *Ident
}

func (f *StructField) Span() source.Span { return f.Sp }

// EnumDef declares an enum type with its variants in source order.
type EnumDef struct {
	Sp     source.Span
	Name   *Ident
	Values []*Ident
}

func (e *EnumDef) Span() source.Span { return e.Sp }

// EventDef declares an event signature.
type EventDef struct {
	Sp     source.Span
	Name   *Ident
	Fields []*EventField
}

func (e *EventDef) Span() source.Span { return e.Sp }

type EventField struct {
	Sp      source.Span
	Type    TypeName
	Indexed bool
	Name    *Ident
}

func (f *EventField) Span() source.Span { return f.Sp }

// UsingDef binds library functions to a type, either wholesale
// (`using Lib for T;`) or as operator overloads (`using {f as +} for T;`).
type UsingDef struct {
	Sp        source.Span
	Library   *Ident
	Operators []*UsingOperator
	Type      TypeName
}

func (u *UsingDef) Span() source.Span { return u.Sp }

type UsingOperator struct {
	Sp       source.Span
	Function *Ident
	Operator string
}

func (u *UsingOperator) Span() source.Span { return u.Sp }
