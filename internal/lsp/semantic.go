package lsp

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"silica/internal/ast"
	"silica/internal/source"
)

// SemanticTokenTypes is the legend advertised at initialize time. Token
// collection below indexes into this slice.
var SemanticTokenTypes = []string{
	"type",
	"enum",
	"enumMember",
	"function",
	"parameter",
	"property",
	"event",
	"namespace",
}

const (
	tokType = iota
	tokEnum
	tokEnumMember
	tokFunction
	tokParameter
	tokProperty
	tokEvent
	tokNamespace
)

// SemanticTokenModifiers is the modifier legend; values combine as a bitset.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

const (
	modDeclaration = 1 << iota
	modReadonly
)

// semanticToken is one classified identifier before wire encoding.
type semanticToken struct {
	Line      uint32 // 0-based
	StartChar uint32 // 0-based
	Length    uint32
	Type      uint32
	Modifiers uint32
}

// collectTokens classifies the declaration identifiers of a parse tree.
func collectTokens(unit *ast.SourceUnit, file *source.File) []semanticToken {
	c := &tokenCollector{file: file}
	for _, item := range unit.Items {
		switch item := item.(type) {
		case *ast.ContractDef:
			c.contract(item)
		case *ast.FunctionDef:
			c.function(item)
		case *ast.StructDef:
			c.structDef(item)
		case *ast.EnumDef:
			c.enumDef(item)
		case *ast.EventDef:
			c.eventDef(item)
		}
	}
	sort.SliceStable(c.tokens, func(i, j int) bool {
		a, b := c.tokens[i], c.tokens[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.StartChar < b.StartChar
	})
	return c.tokens
}

type tokenCollector struct {
	file   *source.File
	tokens []semanticToken
}

func (c *tokenCollector) add(ident *ast.Ident, kind uint32, modifiers uint32) {
	if ident == nil {
		return
	}
	pos := c.file.Position(ident.Sp.Start)
	c.tokens = append(c.tokens, semanticToken{
		Line:      uint32(pos.Line - 1),
		StartChar: uint32(pos.Column - 1),
		Length:    ident.Sp.Len(),
		Type:      kind,
		Modifiers: modifiers,
	})
}

func (c *tokenCollector) contract(def *ast.ContractDef) {
	c.add(def.Name, tokType, modDeclaration)
	for _, base := range def.Bases {
		c.add(base, tokType, 0)
	}
	for _, part := range def.Parts {
		switch part := part.(type) {
		case *ast.VariableDef:
			mods := uint32(modDeclaration)
			if part.Constant {
				mods |= modReadonly
			}
			c.add(part.Name, tokProperty, mods)
		case *ast.FunctionDef:
			c.function(part)
		case *ast.StructDef:
			c.structDef(part)
		case *ast.EnumDef:
			c.enumDef(part)
		case *ast.EventDef:
			c.eventDef(part)
		case *ast.UsingDef:
			c.add(part.Library, tokNamespace, 0)
			for _, op := range part.Operators {
				c.add(op.Function, tokFunction, 0)
			}
		}
	}
}

func (c *tokenCollector) function(def *ast.FunctionDef) {
	c.add(def.Name, tokFunction, modDeclaration)
	for _, p := range def.Params {
		c.add(p.Name, tokParameter, modDeclaration)
	}
	for _, r := range def.Returns {
		c.add(r.Name, tokParameter, modDeclaration)
	}
}

func (c *tokenCollector) structDef(def *ast.StructDef) {
	c.add(def.Name, tokType, modDeclaration)
	for _, f := range def.Fields {
		c.add(f.Name, tokProperty, modDeclaration)
	}
}

func (c *tokenCollector) enumDef(def *ast.EnumDef) {
	c.add(def.Name, tokEnum, modDeclaration)
	for _, v := range def.Values {
		c.add(v, tokEnumMember, modDeclaration|modReadonly)
	}
}

func (c *tokenCollector) eventDef(def *ast.EventDef) {
	c.add(def.Name, tokEvent, modDeclaration)
	for _, f := range def.Fields {
		c.add(f.Name, tokProperty, modDeclaration)
	}
}

// encodeTokens packs tokens into the LSP wire format: five integers per token
// with line and start deltas against the previous token.
func encodeTokens(tokens []semanticToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.StartChar
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, tok.Length, tok.Type, tok.Modifiers)
		prevLine = tok.Line
		prevStart = tok.StartChar
	}
	return data
}
