package parser

import (
	"fmt"

	"silica/internal/ast"
)

var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"|": 5,
	"^": 6,
	"&": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

// Assignment binds loosest and associates to the right.
func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseConditional()
	if left == nil {
		return nil
	}
	tok := p.peek()
	if tok.Kind == OPERATOR && assignOps[tok.Text] {
		p.advance()
		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		return &ast.AssignExpr{
			Sp:     left.Span().Cover(value.Span()),
			Op:     tok.Text,
			Target: left,
			Value:  value,
		}
	}
	return left
}

func (p *Parser) parseConditional() ast.Expression {
	cond := p.parseBinary(1)
	if cond == nil {
		return nil
	}
	if !p.matchWord("?") {
		return cond
	}
	truthy := p.parseExpression()
	if truthy == nil {
		return nil
	}
	p.consumeWord(":", "':' in conditional expression")
	falsy := p.parseConditional()
	if falsy == nil {
		return nil
	}
	return &ast.Conditional{
		Sp:    cond.Span().Cover(falsy.Span()),
		Cond:  cond,
		True:  truthy,
		False: falsy,
	}
}

// parseBinary is standard precedence climbing; ** associates to the right,
// everything else to the left.
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		tok := p.peek()
		if tok.Kind != OPERATOR {
			break
		}
		prec, ok := binaryPrecedence[tok.Text]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		next := prec + 1
		if tok.Text == "**" {
			next = prec
		}
		right := p.parseBinary(next)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Sp:    left.Span().Cover(right.Span()),
			Op:    tok.Text,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.peek()
	if tok.Kind == OPERATOR && (tok.Text == "!" || tok.Text == "~" || tok.Text == "-") {
		p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Sp: tok.Sp.Cover(operand.Span()), Op: tok.Text, Operand: operand}
	}
	return p.parsePostfix()
}

// parsePostfix handles call, member, index and call-option suffixes. A call
// options block `{value: v, gas: g}` must be immediately followed by the call
// it configures.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	var pendingCallArgs []*ast.CallArgEntry
	for {
		switch {
		case p.checkWord("("):
			expr = p.parseCallSuffix(expr, pendingCallArgs)
			pendingCallArgs = nil
			if expr == nil {
				return nil
			}
		case p.checkWord("{") && p.peekAt(1).Kind == IDENT && p.peekAt(2).Text == ":":
			pendingCallArgs = p.parseCallArgsBlock()
		case p.checkWord("."):
			p.advance()
			member := p.consumeIdent("member name after '.'")
			expr = &ast.MemberAccess{Sp: expr.Span().Cover(member.Sp), Target: expr, Member: member}
		case p.checkWord("["):
			p.advance()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			end := p.consumeWord("]", "']' to close index expression")
			expr = &ast.IndexAccess{Sp: expr.Span().Cover(end.Sp), Target: expr, Index: index}
		default:
			if pendingCallArgs != nil {
				p.errorAtCurrent("call options must be followed by a call")
			}
			return expr
		}
	}
}

// parseCallSuffix consumes '(' args ')'. Arguments are either positional or
// a single `{name: value, ...}` named block, never a mixture.
func (p *Parser) parseCallSuffix(callee ast.Expression, callArgs []*ast.CallArgEntry) ast.Expression {
	p.advance() // (
	call := &ast.CallExpr{Callee: callee, CallArgs: callArgs}

	if p.checkWord("{") {
		p.advance()
		if !p.checkWord("}") {
			for {
				name := p.consumeIdent("argument name")
				p.consumeWord(":", "':' after argument name")
				value := p.parseExpression()
				if value == nil {
					return nil
				}
				call.NamedArgs = append(call.NamedArgs, &ast.NamedArg{
					Sp:    name.Sp.Cover(value.Span()),
					Name:  name,
					Value: value,
				})
				if !p.matchWord(",") {
					break
				}
			}
		}
		p.consumeWord("}", "'}' to close named argument list")
	} else if !p.checkWord(")") {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if !p.matchWord(",") {
				break
			}
		}
	}

	end := p.consumeWord(")", "')' to close call")
	call.Sp = callee.Span().Cover(end.Sp)
	return call
}

func (p *Parser) parseCallArgsBlock() []*ast.CallArgEntry {
	p.advance() // {
	var entries []*ast.CallArgEntry
	for {
		name := p.consumeIdent("call option name")
		p.consumeWord(":", "':' after call option name")
		value := p.parseExpression()
		if value == nil {
			break
		}
		entries = append(entries, &ast.CallArgEntry{
			Sp:    name.Sp.Cover(value.Span()),
			Name:  name,
			Value: value,
		})
		if !p.matchWord(",") {
			break
		}
	}
	p.consumeWord("}", "'}' to close call options")
	return entries
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case NUMBER, HEX:
		p.advance()
		return &ast.NumberLiteral{Sp: tok.Sp, Text: tok.Text}
	case RATIONAL:
		p.advance()
		return &ast.RationalLiteral{Sp: tok.Sp, Text: tok.Text}
	case STRING:
		p.advance()
		return &ast.StringLiteral{Sp: tok.Sp, Value: unquote(tok.Text)}
	}

	switch {
	case p.matchWord("true"):
		return &ast.BoolLiteral{Sp: tok.Sp, Value: true}
	case p.matchWord("false"):
		return &ast.BoolLiteral{Sp: tok.Sp, Value: false}
	case p.checkWord("new"):
		start := p.advance()
		ty := p.parseTypeName()
		if ty == nil {
			p.errorAtCurrent("expected type after 'new'")
			return nil
		}
		return &ast.NewExpr{Sp: start.Sp.Cover(ty.Span()), Type: ty}
	case p.checkWord("("):
		p.advance()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		p.consumeWord(")", "')' to close parenthesized expression")
		return expr
	case p.checkWord("["):
		start := p.advance()
		lit := &ast.ArrayLiteral{}
		if !p.checkWord("]") {
			for {
				elem := p.parseExpression()
				if elem == nil {
					return nil
				}
				lit.Elems = append(lit.Elems, elem)
				if !p.matchWord(",") {
					break
				}
			}
		}
		end := p.consumeWord("]", "']' to close array literal")
		lit.Sp = start.Sp.Cover(end.Sp)
		return lit
	}

	// Elementary type names act as cast callees: uint8(x), address(x).
	if tok.Kind == IDENT && (!isKeyword(tok.Text) || isElementaryTypeName(tok.Text)) {
		p.advance()
		return &ast.IdentExpr{Sp: tok.Sp, Name: tok.Text}
	}

	p.errorAtCurrent(fmt.Sprintf("expected expression, found '%s'", p.describe(tok)))
	return nil
}
