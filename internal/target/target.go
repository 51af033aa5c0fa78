package target

// Target identifies the backend the compilation is aimed at. Resolution reads
// it to decide which builtins, casts and call-argument keys are legal; it is
// never mutated.
type Target uint8

const (
	// EVM targets Ethereum-style chains.
	EVM Target = iota
	// Wasm targets WebAssembly contract chains with salted instantiation.
	Wasm
	// SVM targets account-model chains where cross-program calls carry an
	// explicit account list and contracts deploy under a fixed program id.
	SVM
)

func (t Target) String() string {
	switch t {
	case EVM:
		return "evm"
	case Wasm:
		return "wasm"
	case SVM:
		return "svm"
	}
	return "unknown"
}

// Parse maps a manifest or CLI string to a target.
func Parse(name string) (Target, bool) {
	switch name {
	case "evm":
		return EVM, true
	case "wasm":
		return Wasm, true
	case "svm":
		return SVM, true
	}
	return EVM, false
}

// AddressLength returns the byte width of the address type on this target.
// Cast legality between address and fixed-byte or integer types depends on it.
func (t Target) AddressLength() int {
	if t == EVM {
		return 20
	}
	return 32
}

// CallArg is a key in the call-argument block of an external call or
// constructor, e.g. addr.f{value: v}(...).
type CallArg uint8

const (
	CallArgValue CallArg = iota
	CallArgGas
	CallArgSalt
	CallArgAccounts
)

func (c CallArg) String() string {
	switch c {
	case CallArgValue:
		return "value"
	case CallArgGas:
		return "gas"
	case CallArgSalt:
		return "salt"
	case CallArgAccounts:
		return "accounts"
	}
	return "unknown"
}

// ParseCallArg maps a call-argument key name to its enum value.
func ParseCallArg(name string) (CallArg, bool) {
	switch name {
	case "value":
		return CallArgValue, true
	case "gas":
		return CallArgGas, true
	case "salt":
		return CallArgSalt, true
	case "accounts":
		return CallArgAccounts, true
	}
	return CallArgValue, false
}

// SupportsCallArg reports whether the key is legal on this target.
func (t Target) SupportsCallArg(arg CallArg) bool {
	switch t {
	case EVM:
		return arg == CallArgValue || arg == CallArgGas
	case Wasm:
		return arg == CallArgValue || arg == CallArgGas || arg == CallArgSalt
	case SVM:
		return arg == CallArgAccounts
	}
	return false
}

// RequiresProgramID reports whether constructing a contract on this target
// needs the contract to declare its deployment identity up front.
func (t Target) RequiresProgramID() bool {
	return t == SVM
}
