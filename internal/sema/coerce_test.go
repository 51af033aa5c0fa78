package sema

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silica/internal/target"
)

func TestCoerceSameSignednessTakesWiderWidth(t *testing.T) {
	got, ok := coerce(IntegerType{Bits: 8}, IntegerType{Bits: 64}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 64}, got)

	got, ok = coerce(IntegerType{Bits: 128, Signed: true}, IntegerType{Bits: 16, Signed: true}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 128, Signed: true}, got)
}

func TestCoerceMixedSignednessWidensPastUnsigned(t *testing.T) {
	// uint8 with int8: the unsigned side widens one step and the result is
	// signed.
	got, ok := coerce(IntegerType{Bits: 8}, IntegerType{Bits: 8, Signed: true}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 16, Signed: true}, got)

	// uint64 with int16 needs int72 worth of range; rounded into int72's
	// cover, which is uint64+8 bits.
	got, ok = coerce(IntegerType{Bits: 64}, IntegerType{Bits: 16, Signed: true}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 72, Signed: true}, got)

	// The widening step caps at 256 bits.
	got, ok = coerce(IntegerType{Bits: 256}, IntegerType{Bits: 8, Signed: true}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 256, Signed: true}, got)
}

func TestCoerceRationalWins(t *testing.T) {
	got, ok := coerce(RationalType{}, IntegerType{Bits: 256}, false)
	require.True(t, ok)
	assert.Equal(t, RationalType{}, got)

	got, ok = coerce(IntegerType{Bits: 8, Signed: true}, RationalType{}, false)
	require.True(t, ok)
	assert.Equal(t, RationalType{}, got)
}

func TestCoerceBoolBesideInteger(t *testing.T) {
	got, ok := coerce(BoolType{}, IntegerType{Bits: 32}, false)
	require.True(t, ok)
	assert.Equal(t, IntegerType{Bits: 32}, got)
}

func TestCoerceAddressPayabilityUnifiesDownward(t *testing.T) {
	// Mixed payability meets at plain address, whichever side is payable.
	got, ok := coerce(AddressType{Payable: true}, AddressType{}, false)
	require.True(t, ok)
	assert.Equal(t, AddressType{}, got)

	got, ok = coerce(AddressType{}, AddressType{Payable: true}, false)
	require.True(t, ok)
	assert.Equal(t, AddressType{}, got)

	got, ok = coerce(AddressType{Payable: true}, AddressType{Payable: true}, false)
	require.True(t, ok)
	assert.Equal(t, AddressType{Payable: true}, got)
}

func TestCoerceFixedBytesNeedsPermission(t *testing.T) {
	_, ok := coerce(FixedBytesType{Length: 4}, FixedBytesType{Length: 8}, false)
	assert.False(t, ok, "arithmetic context rejects fixed bytes")

	got, ok := coerce(FixedBytesType{Length: 4}, FixedBytesType{Length: 8}, true)
	require.True(t, ok)
	assert.Equal(t, FixedBytesType{Length: 8}, got)
}

func TestCoerceIncompatible(t *testing.T) {
	_, ok := coerce(BoolType{}, StringType{}, false)
	assert.False(t, ok)
	_, ok = coerce(AddressType{}, IntegerType{Bits: 256}, false)
	assert.False(t, ok)
}

func TestLiteralTypePowerOfTwoWidths(t *testing.T) {
	cases := []struct {
		value string
		want  IntegerType
	}{
		{"0", IntegerType{Bits: 8}},
		{"255", IntegerType{Bits: 8}},
		{"256", IntegerType{Bits: 16}},
		{"65535", IntegerType{Bits: 16}},
		{"65536", IntegerType{Bits: 32}},
		{"-1", IntegerType{Bits: 8, Signed: true}},
		{"-128", IntegerType{Bits: 8, Signed: true}},
		{"-129", IntegerType{Bits: 16, Signed: true}},
	}
	for _, tc := range cases {
		v, ok := new(big.Int).SetString(tc.value, 10)
		require.True(t, ok)
		got, fits := literalType(v)
		require.True(t, fits, tc.value)
		assert.Equal(t, tc.want, got, tc.value)
	}
}

func TestLiteralTypeOverflow(t *testing.T) {
	v := new(big.Int).Lsh(big.NewInt(1), 256)
	_, fits := literalType(v)
	assert.False(t, fits, "2^256 needs more than 256 bits")

	v.Sub(v, big.NewInt(1))
	got, fits := literalType(v)
	require.True(t, fits)
	assert.Equal(t, IntegerType{Bits: 256}, got)
}

func TestImplicitCastRules(t *testing.T) {
	assert.True(t, implicitCast(IntegerType{Bits: 8}, IntegerType{Bits: 16}))
	assert.False(t, implicitCast(IntegerType{Bits: 16}, IntegerType{Bits: 8}))
	assert.True(t, implicitCast(IntegerType{Bits: 8}, IntegerType{Bits: 16, Signed: true}))
	assert.False(t, implicitCast(IntegerType{Bits: 8}, IntegerType{Bits: 8, Signed: true}))
	assert.False(t, implicitCast(IntegerType{Bits: 8, Signed: true}, IntegerType{Bits: 16}))

	assert.True(t, implicitCast(AddressType{Payable: true}, AddressType{}))
	assert.False(t, implicitCast(AddressType{}, AddressType{Payable: true}))

	fixed := ArrayType{Elem: IntegerType{Bits: 8}, Length: 3}
	dynamic := ArrayType{Elem: IntegerType{Bits: 8}, Length: DynamicLength}
	assert.True(t, implicitCast(fixed, dynamic))
	assert.False(t, implicitCast(dynamic, fixed))
}

func TestExplicitCastAddressWidthFollowsTarget(t *testing.T) {
	u160 := IntegerType{Bits: 160}
	u256 := IntegerType{Bits: 256}

	ok, _ := explicitCast(u160, AddressType{}, target.EVM)
	assert.True(t, ok, "uint160 matches the 20-byte EVM address")
	ok, _ = explicitCast(u256, AddressType{}, target.EVM)
	assert.False(t, ok)

	ok, _ = explicitCast(u256, AddressType{}, target.SVM)
	assert.True(t, ok, "uint256 matches the 32-byte SVM address")
	ok, _ = explicitCast(AddressType{}, FixedBytesType{Length: 20}, target.EVM)
	assert.True(t, ok)
	ok, _ = explicitCast(AddressType{}, FixedBytesType{Length: 20}, target.Wasm)
	assert.False(t, ok)
}

func TestExplicitCastTruncationFlag(t *testing.T) {
	ok, truncates := explicitCast(IntegerType{Bits: 256}, IntegerType{Bits: 8}, target.EVM)
	assert.True(t, ok)
	assert.True(t, truncates)

	ok, truncates = explicitCast(IntegerType{Bits: 8}, IntegerType{Bits: 256}, target.EVM)
	assert.True(t, ok)
	assert.False(t, truncates)

	ok, truncates = explicitCast(IntegerType{Bits: 8, Signed: true}, IntegerType{Bits: 256}, target.EVM)
	assert.True(t, ok)
	assert.True(t, truncates, "sign change can lose values")
}

func TestEnumCastsAreExplicitOnly(t *testing.T) {
	e := &EnumType{Decl: &Enum{Name: "Side", Values: []string{"Buy", "Sell"}}}
	assert.False(t, implicitCast(IntegerType{Bits: 8}, e))
	assert.False(t, implicitCast(e, IntegerType{Bits: 8}))
	ok, _ := explicitCast(IntegerType{Bits: 8}, e, target.EVM)
	assert.True(t, ok)
	ok, _ = explicitCast(e, IntegerType{Bits: 8}, target.EVM)
	assert.True(t, ok)
}
