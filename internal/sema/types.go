// Package sema resolves parsed source into a typed representation: it builds
// the namespace of declarations, resolves expression and statement types,
// selects overloads and checks reachability, accumulating diagnostics along
// the way.
package sema

import (
	"fmt"
	"strings"
)

// Type is the resolved type of an expression or declaration. The concrete
// implementations form a closed sum; resolution code switches exhaustively
// over them.
type Type interface {
	isType()
	String() string
}

func (BoolType) isType()        {}
func (IntegerType) isType()     {}
func (RationalType) isType()    {}
func (FixedBytesType) isType()  {}
func (BytesType) isType()       {}
func (StringType) isType()      {}
func (AddressType) isType()     {}
func (*ContractType) isType()   {}
func (*StructType) isType()     {}
func (*EnumType) isType()       {}
func (ArrayType) isType()       {}
func (MappingType) isType()     {}
func (*FunctionType) isType()   {}
func (RefType) isType()         {}
func (StorageRefType) isType()  {}
func (VoidType) isType()        {}
func (UnreachableType) isType() {}
func (UnresolvedType) isType()  {}

type BoolType struct{}

func (BoolType) String() string { return "bool" }

// IntegerType covers intN and uintN for N in 8..256 step 8.
type IntegerType struct {
	Bits   int
	Signed bool
}

func (t IntegerType) String() string {
	if t.Signed {
		return fmt.Sprintf("int%d", t.Bits)
	}
	return fmt.Sprintf("uint%d", t.Bits)
}

// RationalType is the compile-time type of non-integer numeric literals.
// It never survives into a declaration; every use site must force it into a
// concrete type.
type RationalType struct{}

func (RationalType) String() string { return "rational" }

// FixedBytesType is bytes1..bytes32.
type FixedBytesType struct {
	Length int
}

func (t FixedBytesType) String() string { return fmt.Sprintf("bytes%d", t.Length) }

// BytesType is the dynamic bytes type.
type BytesType struct{}

func (BytesType) String() string { return "bytes" }

type StringType struct{}

func (StringType) String() string { return "string" }

type AddressType struct {
	Payable bool
}

func (t AddressType) String() string {
	if t.Payable {
		return "address payable"
	}
	return "address"
}

type ContractType struct {
	Decl *Contract
}

func (t *ContractType) String() string { return "contract " + t.Decl.Name }

type StructType struct {
	Decl *Struct
}

func (t *StructType) String() string { return "struct " + t.Decl.Name }

type EnumType struct {
	Decl *Enum
}

func (t *EnumType) String() string { return "enum " + t.Decl.Name }

// ArrayType is a fixed (Length >= 0) or dynamic (Length < 0) array.
type ArrayType struct {
	Elem   Type
	Length int64
}

const DynamicLength int64 = -1

func (t ArrayType) String() string {
	if t.Length < 0 {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Length)
}

type MappingType struct {
	Key   Type
	Value Type
}

func (t MappingType) String() string {
	return fmt.Sprintf("mapping(%s => %s)", t.Key.String(), t.Value.String())
}

// FunctionType is the type of a function pointer. External pointers carry an
// address at runtime, internal ones a code reference.
type FunctionType struct {
	Params   []Type
	Returns  []Type
	External bool
}

func (t *FunctionType) String() string {
	var b strings.Builder
	b.WriteString("function(")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	if t.External {
		b.WriteString(" external")
	}
	if len(t.Returns) > 0 {
		b.WriteString(" returns (")
		for i, r := range t.Returns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// RefType is a reference to a memory value; produced for struct and array
// locals so that element assignment writes through.
type RefType struct {
	Elem Type
}

func (t RefType) String() string { return t.Elem.String() }

// StorageRefType is a reference into contract storage. Immutable refs come
// from constant state variables and reject assignment.
type StorageRefType struct {
	Elem      Type
	Immutable bool
}

func (t StorageRefType) String() string { return t.Elem.String() }

// VoidType is the type of expressions with no value, such as assignments and
// calls to functions without returns.
type VoidType struct{}

func (VoidType) String() string { return "void" }

// UnreachableType marks expressions that never produce a value because they
// abort execution, like revert(). Statement flow treats them as terminal.
type UnreachableType struct{}

func (UnreachableType) String() string { return "unreachable" }

// UnresolvedType is the error type. It compares compatible with everything
// so one mistake does not cascade.
type UnresolvedType struct{}

func (UnresolvedType) String() string { return "<error>" }

// Deref unwraps reference types down to the value type.
func Deref(t Type) Type {
	for {
		switch ref := t.(type) {
		case RefType:
			t = ref.Elem
		case StorageRefType:
			t = ref.Elem
		default:
			return t
		}
	}
}

// SameType reports structural equality after dereferencing. Payability is
// ignored for addresses; named types compare by declaration identity.
func SameType(a, b Type) bool {
	a, b = Deref(a), Deref(b)
	switch at := a.(type) {
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case IntegerType:
		bt, ok := b.(IntegerType)
		return ok && at == bt
	case RationalType:
		_, ok := b.(RationalType)
		return ok
	case FixedBytesType:
		bt, ok := b.(FixedBytesType)
		return ok && at == bt
	case BytesType:
		_, ok := b.(BytesType)
		return ok
	case StringType:
		_, ok := b.(StringType)
		return ok
	case AddressType:
		_, ok := b.(AddressType)
		return ok
	case *ContractType:
		bt, ok := b.(*ContractType)
		return ok && at.Decl == bt.Decl
	case *StructType:
		bt, ok := b.(*StructType)
		return ok && at.Decl == bt.Decl
	case *EnumType:
		bt, ok := b.(*EnumType)
		return ok && at.Decl == bt.Decl
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && at.Length == bt.Length && SameType(at.Elem, bt.Elem)
	case MappingType:
		bt, ok := b.(MappingType)
		return ok && SameType(at.Key, bt.Key) && SameType(at.Value, bt.Value)
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok || at.External != bt.External {
			return false
		}
		if len(at.Params) != len(bt.Params) || len(at.Returns) != len(bt.Returns) {
			return false
		}
		for i := range at.Params {
			if !SameType(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		for i := range at.Returns {
			if !SameType(at.Returns[i], bt.Returns[i]) {
				return false
			}
		}
		return true
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case UnreachableType:
		_, ok := b.(UnreachableType)
		return ok
	case UnresolvedType:
		return true
	}
	if _, ok := b.(UnresolvedType); ok {
		return true
	}
	return false
}

// IsUnresolved reports whether t is the error type, after dereferencing.
func IsUnresolved(t Type) bool {
	_, ok := Deref(t).(UnresolvedType)
	return ok
}
