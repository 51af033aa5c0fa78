package parser

import (
	"silica/internal/ast"
	"silica/internal/diag"
)

// parseTypeName speculatively parses a type. On failure it restores the
// token position and returns nil without emitting diagnostics, which lets
// statement parsing disambiguate declarations from expressions by trying a
// type first. Diagnostics produced along a successful parse are kept.
func (p *Parser) parseTypeName() ast.TypeName {
	saved := p.current
	outer := p.bag
	scratch := diag.NewBag()
	p.bag = scratch

	ty := p.parseTypeNameInner()

	p.bag = outer
	if ty == nil {
		p.current = saved
		return nil
	}
	p.bag.Extend(scratch.Items())
	return ty
}

func (p *Parser) parseTypeNameInner() ast.TypeName {
	var base ast.TypeName
	tok := p.peek()
	switch {
	case p.checkWord("mapping"):
		base = p.parseMappingType()
	case p.checkWord("function"):
		base = p.parseFunctionType()
	case tok.Kind == IDENT && isElementaryTypeName(tok.Text):
		p.advance()
		el := &ast.ElementaryType{Sp: tok.Sp, Name: tok.Text}
		if tok.Text == "address" && p.checkWord("payable") {
			end := p.advance()
			el.Payable = true
			el.Sp = el.Sp.Cover(end.Sp)
		}
		base = el
	case tok.Kind == IDENT && !isKeyword(tok.Text):
		base = &ast.UserType{Sp: tok.Sp, Name: p.parseIdent()}
	default:
		return nil
	}
	if base == nil {
		return nil
	}

	// Array suffixes nest left to right: uint8[2][] is an array of uint8[2].
	for p.checkWord("[") {
		p.advance()
		var length ast.Expression
		if !p.checkWord("]") {
			length = p.parseExpression()
			if length == nil {
				return nil
			}
		}
		if !p.checkWord("]") {
			return nil
		}
		end := p.advance()
		base = &ast.ArrayType{Sp: base.Span().Cover(end.Sp), Elem: base, Length: length}
	}
	return base
}

func (p *Parser) parseMappingType() ast.TypeName {
	start := p.advance() // mapping
	if !p.matchWord("(") {
		p.errorAtCurrent("expected '(' after mapping")
		return nil
	}
	key := p.parseTypeNameInner()
	if key == nil {
		p.errorAtCurrent("expected mapping key type")
		return nil
	}
	if !p.matchWord("=>") {
		p.errorAtCurrent("expected '=>' between mapping key and value types")
		return nil
	}
	value := p.parseTypeNameInner()
	if value == nil {
		p.errorAtCurrent("expected mapping value type")
		return nil
	}
	end := p.consumeWord(")", "')' to close mapping type")
	return &ast.MappingType{Sp: start.Sp.Cover(end.Sp), Key: key, Value: value}
}

func (p *Parser) parseFunctionType() ast.TypeName {
	start := p.advance() // function
	if !p.matchWord("(") {
		p.errorAtCurrent("expected '(' in function type")
		return nil
	}
	ft := &ast.FunctionType{Params: p.parseParameterList()}
	for {
		switch {
		case p.matchWord("view"):
			ft.Mutability = ast.MutView
			continue
		case p.matchWord("pure"):
			ft.Mutability = ast.MutPure
			continue
		case p.matchWord("payable"):
			ft.Mutability = ast.MutPayable
			continue
		case p.matchWord("external"):
			ft.External = true
			continue
		case p.matchWord("internal"):
			continue
		}
		break
	}
	if p.matchWord("returns") {
		p.consumeWord("(", "'(' after returns")
		ft.Returns = p.parseParameterList()
	}
	ft.Sp = start.Sp.Cover(p.previous().Sp)
	return ft
}
