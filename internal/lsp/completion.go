package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var keywordCompletions = []string{
	"contract", "struct", "enum", "event", "function", "constructor",
	"mapping", "using", "for", "is", "returns", "return", "if", "else",
	"while", "do", "break", "continue", "emit", "try", "catch", "new",
	"public", "private", "internal", "external", "view", "pure", "payable",
	"constant", "indexed", "true", "false",
}

var typeCompletions = []string{
	"bool", "address", "string", "bytes", "uint8", "uint16", "uint32",
	"uint64", "uint128", "uint256", "int8", "int16", "int32", "int64",
	"int128", "int256", "bytes4", "bytes20", "bytes32",
}

var builtinCompletions = []string{
	"require", "assert", "revert", "keccak256", "sha256", "addmod",
	"mulmod", "msg.sender", "msg.value", "msg.data", "block.number",
	"block.timestamp", "tx.gasprice", "tx.accounts",
}

// completionItems is the static completion set: keywords, elementary types
// and builtins. Symbol-aware completion would need cursor context and is not
// wired up yet.
func completionItems() []protocol.CompletionItem {
	var items []protocol.CompletionItem
	add := func(labels []string, kind protocol.CompletionItemKind) {
		for _, label := range labels {
			k := kind
			items = append(items, protocol.CompletionItem{Label: label, Kind: &k})
		}
	}
	add(keywordCompletions, protocol.CompletionItemKindKeyword)
	add(typeCompletions, protocol.CompletionItemKindClass)
	add(builtinCompletions, protocol.CompletionItemKindFunction)
	return items
}
