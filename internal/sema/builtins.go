package sema

import "silica/internal/target"

// targetMask selects which deployment targets a builtin exists on.
type targetMask uint8

const (
	onEVM  targetMask = 1 << target.EVM
	onWasm targetMask = 1 << target.Wasm
	onSVM  targetMask = 1 << target.SVM

	onAll = onEVM | onWasm | onSVM
)

func (m targetMask) includes(t target.Target) bool {
	return m&(1<<t) != 0
}

// Builtin describes one builtin function or environment value. Functions
// with several admissible shapes appear once per shape and go through the
// regular overload outcome policy.
type Builtin struct {
	Namespace string // "" for globals, else msg/block/tx
	Name      string
	Params    []Type
	Result    Type
	Targets   targetMask
	IsValue   bool // environment value rather than a function
	// NoReturn marks builtins that abort; calls to them resolve to the
	// Unreachable type.
	NoReturn bool
}

func (b *Builtin) FullName() string {
	if b.Namespace == "" {
		return b.Name
	}
	return b.Namespace + "." + b.Name
}

var builtinRegistry = buildBuiltins()

func buildBuiltins() []*Builtin {
	u256 := IntegerType{Bits: 256}
	u64 := IntegerType{Bits: 64}
	b32 := FixedBytesType{Length: 32}

	return []*Builtin{
		// Hashing.
		{Name: "keccak256", Params: []Type{BytesType{}}, Result: b32, Targets: onAll},
		{Name: "sha256", Params: []Type{BytesType{}}, Result: b32, Targets: onAll},
		{Name: "ripemd160", Params: []Type{BytesType{}}, Result: FixedBytesType{Length: 20}, Targets: onEVM | onWasm},
		{Name: "blockhash", Params: []Type{u64}, Result: b32, Targets: onEVM},

		// Assertions. require and revert come in bare and reasoned shapes.
		{Name: "require", Params: []Type{BoolType{}}, Result: VoidType{}, Targets: onAll},
		{Name: "require", Params: []Type{BoolType{}, StringType{}}, Result: VoidType{}, Targets: onAll},
		{Name: "assert", Params: []Type{BoolType{}}, Result: VoidType{}, Targets: onAll},
		{Name: "revert", Params: nil, Result: UnreachableType{}, Targets: onAll, NoReturn: true},
		{Name: "revert", Params: []Type{StringType{}}, Result: UnreachableType{}, Targets: onAll, NoReturn: true},

		// Wide modular arithmetic.
		{Name: "addmod", Params: []Type{u256, u256, u256}, Result: u256, Targets: onAll},
		{Name: "mulmod", Params: []Type{u256, u256, u256}, Result: u256, Targets: onAll},

		// Debug printing; no deployed EVM equivalent.
		{Name: "print", Params: []Type{StringType{}}, Result: VoidType{}, Targets: onWasm | onSVM},

		// Transaction environment.
		{Namespace: "msg", Name: "sender", Result: AddressType{Payable: true}, Targets: onAll, IsValue: true},
		{Namespace: "msg", Name: "value", Result: u256, Targets: onEVM | onWasm, IsValue: true},
		{Namespace: "msg", Name: "data", Result: BytesType{}, Targets: onAll, IsValue: true},
		{Namespace: "block", Name: "number", Result: u64, Targets: onAll, IsValue: true},
		{Namespace: "block", Name: "timestamp", Result: u64, Targets: onAll, IsValue: true},
		{Namespace: "block", Name: "coinbase", Result: AddressType{Payable: true}, Targets: onEVM, IsValue: true},
		{Namespace: "tx", Name: "gasprice", Result: u256, Targets: onEVM | onWasm, IsValue: true},
		{Namespace: "tx", Name: "accounts", Result: ArrayType{Elem: AddressType{}, Length: DynamicLength}, Targets: onSVM, IsValue: true},
	}
}

// builtinNamespaces gates bare identifiers msg/block/tx.
var builtinNamespaces = map[string]bool{"msg": true, "block": true, "tx": true}

// lookupBuiltins returns the registered shapes for a global name on the
// given target, plus whether the name exists on any target at all, which
// distinguishes "unknown name" from "not available on this target".
func lookupBuiltins(namespace, name string, tgt target.Target) (matches []*Builtin, knownElsewhere bool) {
	for _, b := range builtinRegistry {
		if b.Namespace != namespace || b.Name != name {
			continue
		}
		if b.Targets.includes(tgt) {
			matches = append(matches, b)
		} else {
			knownElsewhere = true
		}
	}
	return matches, knownElsewhere
}
