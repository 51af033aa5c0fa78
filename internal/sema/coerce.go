package sema

import "math/big"

// coerce computes the common type two operand types converge to in a binary
// operation, or reports failure. The result is asymmetric on purpose: mixing
// signed and unsigned integers widens past the unsigned operand instead of
// rejecting the expression.
//
// allowBytes admits fixed-bytes operands; bitwise and comparison operators
// set it, arithmetic does not.
func coerce(left, right Type, allowBytes bool) (Type, bool) {
	left, right = Deref(left), Deref(right)

	if IsUnresolved(left) || IsUnresolved(right) {
		return UnresolvedType{}, true
	}

	// Addresses come first: SameType ignores payability, so relying on it
	// would keep whichever payability the left operand happens to carry.
	// The pair unifies to payable only when both sides are payable.
	la, laok := left.(AddressType)
	ra, raok := right.(AddressType)
	if laok && raok {
		return AddressType{Payable: la.Payable && ra.Payable}, true
	}

	if SameType(left, right) {
		return left, true
	}

	if allowBytes {
		lb, lok := left.(FixedBytesType)
		rb, rok := right.(FixedBytesType)
		if lok && rok {
			if lb.Length > rb.Length {
				return lb, true
			}
			return rb, true
		}
	}

	// A rational on either side wins: the integer operand converts to the
	// compile-time rational and the use site must force a concrete type.
	if isRational(left) && isNumeric(right) {
		return RationalType{}, true
	}
	if isRational(right) && isNumeric(left) {
		return RationalType{}, true
	}

	li, lok := left.(IntegerType)
	ri, rok := right.(IntegerType)

	// Bool beside an integer converts to that integer type.
	if _, ok := left.(BoolType); ok && rok {
		return ri, true
	}
	if _, ok := right.(BoolType); ok && lok {
		return li, true
	}

	if lok && rok {
		return coerceNumber(li, ri), true
	}

	return UnresolvedType{}, false
}

// coerceNumber merges two integer types. Same signedness takes the wider
// width. Mixed signedness widens the unsigned operand by one step, capped at
// 256 bits, and the result is signed: uint8 with int8 gives int16, uint256
// with int8 gives int256.
func coerceNumber(a, b IntegerType) IntegerType {
	if a.Signed == b.Signed {
		return IntegerType{Bits: maxBits(a.Bits, b.Bits), Signed: a.Signed}
	}
	unsigned, signed := a, b
	if a.Signed {
		unsigned, signed = b, a
	}
	widened := unsigned.Bits + 8
	if widened > 256 {
		widened = 256
	}
	return IntegerType{Bits: maxBits(widened, signed.Bits), Signed: true}
}

func maxBits(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func isRational(t Type) bool {
	_, ok := Deref(t).(RationalType)
	return ok
}

func isInteger(t Type) bool {
	_, ok := Deref(t).(IntegerType)
	return ok
}

func isNumeric(t Type) bool {
	switch Deref(t).(type) {
	case IntegerType, RationalType:
		return true
	}
	return false
}

// literalWidths are the admissible widths of untyped integer literals.
var literalWidths = [...]int{8, 16, 32, 64, 128, 256}

// literalType picks the narrowest admissible integer type holding value.
// Widths align to powers of two starting at 8; a value needing more than 256
// bits does not fit any type and reports failure.
func literalType(value *big.Int) (IntegerType, bool) {
	signed := value.Sign() < 0
	for _, w := range literalWidths {
		if signed {
			if fitsSigned(value, w) {
				return IntegerType{Bits: w, Signed: true}, true
			}
		} else if fitsUnsigned(value, w) {
			return IntegerType{Bits: w, Signed: false}, true
		}
	}
	return IntegerType{}, false
}

func fitsUnsigned(value *big.Int, bits int) bool {
	if value.Sign() < 0 {
		return false
	}
	return value.BitLen() <= bits
}

func fitsSigned(value *big.Int, bits int) bool {
	min := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min.Neg(min)
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	max.Sub(max, big.NewInt(1))
	return value.Cmp(min) >= 0 && value.Cmp(max) <= 0
}

// fitsInteger reports whether value is representable in t.
func fitsInteger(value *big.Int, t IntegerType) bool {
	if t.Signed {
		return fitsSigned(value, t.Bits)
	}
	return fitsUnsigned(value, t.Bits)
}
