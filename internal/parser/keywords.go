package parser

import "strconv"

// Reserved words that can never be identifiers.
var keywords = map[string]bool{
	"contract": true, "is": true, "function": true, "constructor": true,
	"returns": true, "return": true, "if": true, "else": true,
	"while": true, "do": true, "for": true, "break": true, "continue": true,
	"emit": true, "try": true, "catch": true, "new": true,
	"struct": true, "enum": true, "event": true, "using": true,
	"mapping": true, "indexed": true,
	"public": true, "private": true, "internal": true, "external": true,
	"view": true, "pure": true, "payable": true, "constant": true,
	"true": true, "false": true,
	"bool": true, "string": true, "bytes": true, "address": true,
}

func isKeyword(name string) bool {
	if keywords[name] {
		return true
	}
	_, _, ok := parseIntTypeName(name)
	if ok {
		return true
	}
	_, ok = parseBytesTypeName(name)
	return ok
}

// parseIntTypeName recognizes int/uint/intN/uintN for N in 8..256 step 8.
// It returns the bit width and whether the type is signed.
func parseIntTypeName(name string) (bits int, signed bool, ok bool) {
	rest := ""
	switch {
	case len(name) >= 3 && name[:3] == "int":
		signed = true
		rest = name[3:]
	case len(name) >= 4 && name[:4] == "uint":
		rest = name[4:]
	default:
		return 0, false, false
	}
	if rest == "" {
		return 256, signed, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 8 || n > 256 || n%8 != 0 {
		return 0, false, false
	}
	return n, signed, true
}

// parseBytesTypeName recognizes bytes1..bytes32 and returns the byte length.
func parseBytesTypeName(name string) (length int, ok bool) {
	if len(name) <= 5 || name[:5] != "bytes" {
		return 0, false
	}
	n, err := strconv.Atoi(name[5:])
	if err != nil || n < 1 || n > 32 {
		return 0, false
	}
	return n, true
}

// isElementaryTypeName reports whether name starts an elementary type.
func isElementaryTypeName(name string) bool {
	switch name {
	case "bool", "string", "bytes", "address":
		return true
	}
	if _, _, ok := parseIntTypeName(name); ok {
		return true
	}
	_, ok := parseBytesTypeName(name)
	return ok
}
