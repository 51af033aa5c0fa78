package sema

import "silica/internal/target"

// implicitCast reports whether a value of type from may be used where to is
// expected without an explicit conversion.
func implicitCast(from, to Type) bool {
	from, to = Deref(from), Deref(to)

	if IsUnresolved(from) || IsUnresolved(to) {
		return true
	}
	if SameType(from, to) {
		// address payable still narrows only one way.
		fa, fok := from.(AddressType)
		ta, tok := to.(AddressType)
		if fok && tok {
			return fa.Payable || !ta.Payable
		}
		return true
	}

	switch f := from.(type) {
	case IntegerType:
		t, ok := to.(IntegerType)
		if !ok {
			return false
		}
		if f.Signed == t.Signed {
			return t.Bits >= f.Bits
		}
		// Unsigned widens into a strictly larger signed type; the other
		// direction always loses values.
		return !f.Signed && t.Signed && t.Bits > f.Bits
	case FixedBytesType:
		t, ok := to.(FixedBytesType)
		return ok && t.Length >= f.Length
	case *ContractType:
		t, ok := to.(*ContractType)
		return ok && f.Decl.DerivesFrom(t.Decl)
	case ArrayType:
		t, ok := to.(ArrayType)
		if !ok {
			return false
		}
		// A fixed array converts to a dynamic one of the same element type.
		if !SameType(f.Elem, t.Elem) {
			return false
		}
		return t.Length == DynamicLength || t.Length == f.Length
	}
	return false
}

// explicitCast reports whether T(x) is a valid conversion, and whether it can
// discard information and deserves a truncation warning.
func explicitCast(from, to Type, tgt target.Target) (ok, truncates bool) {
	from, to = Deref(from), Deref(to)

	if IsUnresolved(from) || IsUnresolved(to) {
		return true, false
	}
	if implicitCast(from, to) {
		return true, false
	}

	switch f := from.(type) {
	case IntegerType:
		switch t := to.(type) {
		case IntegerType:
			return true, t.Bits < f.Bits || (f.Signed && !t.Signed)
		case *EnumType:
			return true, false
		case AddressType:
			return castsToAddress(f, tgt), false
		case FixedBytesType:
			return t.Length*8 == f.Bits, false
		case BoolType:
			return false, false
		}
	case *EnumType:
		if _, ok := to.(IntegerType); ok {
			return true, false
		}
	case AddressType:
		switch t := to.(type) {
		case AddressType:
			return true, false
		case IntegerType:
			return castsToAddress(t, tgt), false
		case FixedBytesType:
			return t.Length == tgt.AddressLength(), false
		case *ContractType:
			return true, false
		}
	case FixedBytesType:
		switch t := to.(type) {
		case FixedBytesType:
			return true, t.Length < f.Length
		case IntegerType:
			return !t.Signed && t.Bits == f.Length*8, false
		case AddressType:
			return f.Length == tgt.AddressLength(), false
		}
	case *ContractType:
		switch to.(type) {
		case AddressType:
			return true, false
		case *ContractType:
			// Downcasts are a programmer assertion.
			return true, false
		}
	case StringType:
		if _, ok := to.(BytesType); ok {
			return true, false
		}
	case BytesType:
		if _, ok := to.(StringType); ok {
			return true, false
		}
	case RationalType:
		if _, ok := to.(IntegerType); ok {
			return true, true
		}
	}
	return false, false
}

// castsToAddress reports whether an integer type matches the target's
// address width, which gates address<->integer conversions.
func castsToAddress(t IntegerType, tgt target.Target) bool {
	return !t.Signed && t.Bits == tgt.AddressLength()*8
}
