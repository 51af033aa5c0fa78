package sema

import (
	"silica/internal/ast"
	"silica/internal/source"
	"silica/internal/target"
)

// Namespace is the resolved view of one source unit: every declaration with
// its type, plus the resolved function bodies. It is the input to code
// generation and to editor tooling.
type Namespace struct {
	Target    target.Target
	Contracts []*Contract
	Structs   []*Struct
	Enums     []*Enum
	Events    []*Event
	Functions []*Function

	byName map[string]any
}

func (ns *Namespace) lookup(name string) any {
	return ns.byName[name]
}

// ContractByName finds a top-level contract.
func (ns *Namespace) ContractByName(name string) *Contract {
	c, _ := ns.byName[name].(*Contract)
	return c
}

// Contract is a resolved contract declaration.
type Contract struct {
	Name      string
	Def       *ast.ContractDef
	Bases     []*Contract
	Variables []*Variable
	Functions []*Function
	Ctor      *Function
	Structs   []*Struct
	Enums     []*Enum
	Events    []*Event
	ProgramID string

	// Creates records which contracts this one instantiates with new,
	// in resolution order. Circularity checks walk these edges.
	Creates []*Contract

	// Operators maps a binary or unary operator token to the function
	// bound by a using directive, keyed by operator then operand type.
	Operators []*BoundOperator
	Libraries []*BoundLibrary
}

// DerivesFrom reports whether c is other or transitively inherits from it.
func (c *Contract) DerivesFrom(other *Contract) bool {
	if c == other {
		return true
	}
	for _, base := range c.Bases {
		if base.DerivesFrom(other) {
			return true
		}
	}
	return false
}

// creates reports whether c transitively constructs other via the edges
// recorded so far.
func (c *Contract) creates(other *Contract, seen map[*Contract]bool) bool {
	if seen[c] {
		return false
	}
	seen[c] = true
	for _, created := range c.Creates {
		if created == other || created.creates(other, seen) {
			return true
		}
	}
	return false
}

// FunctionsNamed collects functions with the given name from the contract
// and its bases, nearest first. Overridden bases still contribute overload
// candidates with distinct signatures.
func (c *Contract) FunctionsNamed(name string) []*Function {
	var out []*Function
	c.collectFunctions(name, &out, map[*Contract]bool{})
	return out
}

func (c *Contract) collectFunctions(name string, out *[]*Function, seen map[*Contract]bool) {
	if seen[c] {
		return
	}
	seen[c] = true
	for _, fn := range c.Functions {
		if fn.Name == name && !hasSignature(*out, fn) {
			*out = append(*out, fn)
		}
	}
	for _, base := range c.Bases {
		base.collectFunctions(name, out, seen)
	}
}

func hasSignature(fns []*Function, fn *Function) bool {
	for _, have := range fns {
		if len(have.Params) != len(fn.Params) {
			continue
		}
		same := true
		for i := range have.Params {
			if !SameType(have.Params[i].Type, fn.Params[i].Type) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// VariableByName finds a state variable in the contract or its bases.
func (c *Contract) VariableByName(name string) *Variable {
	for _, v := range c.Variables {
		if v.Name == name {
			return v
		}
	}
	for _, base := range c.Bases {
		if v := base.VariableByName(name); v != nil {
			return v
		}
	}
	return nil
}

// memberDecl finds a nested struct, enum or event by name, searching bases.
func (c *Contract) memberDecl(name string) any {
	for _, s := range c.Structs {
		if s.Name == name {
			return s
		}
	}
	for _, e := range c.Enums {
		if e.Name == name {
			return e
		}
	}
	for _, ev := range c.Events {
		if ev.Name == name {
			return ev
		}
	}
	for _, base := range c.Bases {
		if d := base.memberDecl(name); d != nil {
			return d
		}
	}
	return nil
}

// Variable is a resolved contract state variable.
type Variable struct {
	Name     string
	Type     Type
	Public   bool
	Constant bool
	Def      *ast.VariableDef
	Owner    *Contract
	Init     Expression

	// Usage marks feed the unused and uninitialized-read warnings.
	Read     bool
	Assigned bool
}

// Param is one resolved parameter or return slot.
type Param struct {
	Name string // empty for unnamed return slots
	Type Type
	Span source.Span
}

// Function is a resolved function, constructor or free function.
type Function struct {
	Name          string
	Def           *ast.FunctionDef
	Contract      *Contract // nil for free functions
	Params        []*Param
	Returns       []*Param
	Mutability    ast.Mutability
	Visibility    ast.Visibility
	IsConstructor bool
	Body          *Block // nil until bodies resolve, or for bodyless decls
}

// Type builds the function pointer type of fn.
func (fn *Function) Type(external bool) *FunctionType {
	ft := &FunctionType{External: external}
	for _, p := range fn.Params {
		ft.Params = append(ft.Params, p.Type)
	}
	for _, r := range fn.Returns {
		ft.Returns = append(ft.Returns, r.Type)
	}
	return ft
}

// singleReturn is the expression type of a call to fn: Void for none, the
// type itself for one, a tuple is not a first-class value so multi-return
// calls only appear in declaration and try contexts.
func (fn *Function) singleReturn() Type {
	if len(fn.Returns) == 1 {
		return fn.Returns[0].Type
	}
	return VoidType{}
}

type Struct struct {
	Name   string
	Def    *ast.StructDef
	Fields []*Field
}

type Field struct {
	Name string
	Type Type
	Span source.Span
}

// FieldByName returns the field and its index, or nil and -1.
func (s *Struct) FieldByName(name string) (*Field, int) {
	for i, f := range s.Fields {
		if f.Name == name {
			return f, i
		}
	}
	return nil, -1
}

type Enum struct {
	Name   string
	Def    *ast.EnumDef
	Values []string
}

// ValueIndex returns the ordinal of a variant, or -1.
func (e *Enum) ValueIndex(name string) int {
	for i, v := range e.Values {
		if v == name {
			return i
		}
	}
	return -1
}

type Event struct {
	Name   string
	Def    *ast.EventDef
	Owner  *Contract
	Fields []*EventField
}

type EventField struct {
	Name    string
	Type    Type
	Indexed bool
}

// BoundOperator is one entry of `using {f as +} for T`: operator token plus
// the operand type the binding applies to.
type BoundOperator struct {
	Operator string
	Operand  Type
	Fn       *Function
	Span     source.Span
}

// BoundLibrary is `using Lib for T`: every function of Lib whose first
// parameter matches T becomes callable as a method on T values.
type BoundLibrary struct {
	Library *Contract
	Operand Type
	Span    source.Span
}
