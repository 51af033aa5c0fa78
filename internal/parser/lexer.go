package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"silica/internal/diag"
	"silica/internal/source"
)

// Token rules are declared with the participle lexer. Order matters: comments
// and string literals first, rationals before plain integers, hex before
// decimal, multi-character operators before their single-character prefixes.
var silicaLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Rational", Pattern: `[0-9]+\.[0-9]+`},
		{Name: "Hex", Pattern: `0x[0-9a-fA-F]+`},
		{Name: "Number", Pattern: `[0-9]+`},
		{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
		{Name: "Operator", Pattern: `\*\*|<<=|>>=|=>|&&|\|\||==|!=|<=|>=|\+=|-=|\*=|/=|%=|&=|\|=|\^=|<<|>>|[-+*/%&|^<>=!~]`},
		{Name: "Punct", Pattern: `[{}()\[\];,.:?@]`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

// TokenKind classifies scanned tokens for the parser.
type TokenKind uint8

const (
	EOF TokenKind = iota
	IDENT
	NUMBER
	HEX
	RATIONAL
	STRING
	OPERATOR
	PUNCT
)

type Token struct {
	Kind TokenKind
	Text string
	Sp   source.Span
}

var kindByRule = map[string]TokenKind{
	"Ident":    IDENT,
	"Number":   NUMBER,
	"Hex":      HEX,
	"Rational": RATIONAL,
	"String":   STRING,
	"Operator": OPERATOR,
	"Punct":    PUNCT,
}

// scanTokens runs the participle lexer over the file and returns the token
// stream, dropping whitespace and comments. Scan failures become syntax
// diagnostics; scanning stops at the first one since the lexer cannot
// recover its position.
func scanTokens(fileID source.FileID, src string, bag *diag.Bag) []Token {
	var tokens []Token

	ruleNames := make(map[lexer.TokenType]string)
	for name, typ := range silicaLexer.Symbols() {
		ruleNames[typ] = name
	}

	lex, err := silicaLexer.LexString("", src)
	if err != nil {
		bag.Add(diag.Error(diag.CatSyntax, source.Span{File: fileID}, err.Error()))
		return tokens
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			sp := source.Span{File: fileID}
			if perr, ok := err.(participle.Error); ok {
				offset := uint32(perr.Position().Offset)
				sp = source.Span{File: fileID, Start: offset, End: offset + 1}
			}
			bag.Add(diag.Error(diag.CatSyntax, sp, scrubError(err)))
			break
		}
		if tok.EOF() {
			break
		}
		name := ruleNames[tok.Type]
		if name == "Whitespace" || name == "Comment" {
			continue
		}
		start := uint32(tok.Pos.Offset)
		tokens = append(tokens, Token{
			Kind: kindByRule[name],
			Text: tok.Value,
			Sp:   source.Span{File: fileID, Start: start, End: start + uint32(len(tok.Value))},
		})
	}

	eofOffset := uint32(len(src))
	tokens = append(tokens, Token{Kind: EOF, Sp: source.Span{File: fileID, Start: eofOffset, End: eofOffset}})
	return tokens
}

// scrubError strips the lexer's own file:line:col prefix; positions are
// rendered by the reporter from the span.
func scrubError(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
