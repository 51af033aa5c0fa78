package ast

import "silica/internal/source"

// TypeName is an unresolved type written in source. Resolution maps it to a
// concrete sema type.
type TypeName interface {
	Node
	isTypeName()
}

func (*ElementaryType) isTypeName() {}
func (*UserType) isTypeName()       {}
func (*ArrayType) isTypeName()      {}
func (*MappingType) isTypeName()    {}
func (*FunctionType) isTypeName()   {}

// ElementaryType is a builtin type keyword: bool, uintN, intN, bytesN,
// bytes, string, address, address payable.
type ElementaryType struct {
	Sp      source.Span
	Name    string
	Payable bool // address payable
}

func (t *ElementaryType) Span() source.Span { return t.Sp }

// UserType names a contract, struct or enum; which one is decided during
// resolution.
type UserType struct {
	Sp   source.Span
	Name *Ident
}

func (t *UserType) Span() source.Span { return t.Sp }

// ArrayType is T[] or T[n]; a nil Length means a dynamic dimension. Nested
// dimensions parse as nested ArrayTypes.
type ArrayType struct {
	Sp     source.Span
	Elem   TypeName
	Length Expression
}

func (t *ArrayType) Span() source.Span { return t.Sp }

// MappingType is mapping(K => V).
type MappingType struct {
	Sp    source.Span
	Key   TypeName
	Value TypeName
}

func (t *MappingType) Span() source.Span { return t.Sp }

// FunctionType is a function pointer type:
// function (params) [mutability] [external] returns (rets).
type FunctionType struct {
	Sp         source.Span
	Params     []*Parameter
	Returns    []*Parameter
	Mutability Mutability
	External   bool
}

func (t *FunctionType) Span() source.Span { return t.Sp }
