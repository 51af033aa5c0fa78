package parser

import "silica/internal/ast"

func (p *Parser) parseBlock() *ast.Block {
	start := p.consumeWord("{", "'{' to open block")
	block := &ast.Block{}
	for !p.checkWord("}") && !p.atEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		} else {
			p.syncToStatement()
		}
	}
	end := p.consumeWord("}", "'}' to close block")
	block.Sp = start.Sp.Cover(end.Sp)
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.checkWord("{"):
		return p.parseBlock()
	case p.checkWord("if"):
		return p.parseIf()
	case p.checkWord("while"):
		return p.parseWhile()
	case p.checkWord("do"):
		return p.parseDoWhile()
	case p.checkWord("for"):
		return p.parseFor()
	case p.checkWord("return"):
		return p.parseReturn()
	case p.checkWord("break"):
		start := p.advance()
		end := p.consumeWord(";", "';' after break")
		return &ast.BreakStmt{Sp: start.Sp.Cover(end.Sp)}
	case p.checkWord("continue"):
		start := p.advance()
		end := p.consumeWord(";", "';' after continue")
		return &ast.ContinueStmt{Sp: start.Sp.Cover(end.Sp)}
	case p.checkWord("emit"):
		return p.parseEmit()
	case p.checkWord("try"):
		return p.parseTry()
	}
	return p.parseDeclOrExprStatement()
}

// parseDeclOrExprStatement tries a local declaration first; if the tokens do
// not form `Type Ident`, it reparses them as an expression statement.
func (p *Parser) parseDeclOrExprStatement() ast.Statement {
	if stmt := p.tryParseDeclaration(); stmt != nil {
		return stmt
	}
	start := p.peek()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	end := p.consumeWord(";", "';' after expression statement")
	return &ast.ExprStmt{Sp: start.Sp.Cover(end.Sp), Expr: expr}
}

func (p *Parser) tryParseDeclaration() ast.Statement {
	saved := p.current
	ty := p.parseTypeName()
	if ty == nil {
		return nil
	}
	if p.peek().Kind != IDENT || isKeyword(p.peek().Text) {
		p.current = saved
		return nil
	}
	name := p.parseIdent()
	decl := &ast.DeclStmt{Type: ty, Name: name}
	if p.matchWord("=") {
		decl.Init = p.parseExpression()
	}
	end := p.consumeWord(";", "';' after declaration")
	decl.Sp = ty.Span().Cover(end.Sp)
	return decl
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance() // if
	p.consumeWord("(", "'(' after if")
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	p.consumeWord(")", "')' after if condition")
	then := p.parseBlock()
	stmt := &ast.IfStmt{Sp: start.Sp.Cover(then.Sp), Cond: cond, Then: then}
	if p.matchWord("else") {
		if p.checkWord("if") {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
		if stmt.Else != nil {
			stmt.Sp = stmt.Sp.Cover(stmt.Else.Span())
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.advance() // while
	p.consumeWord("(", "'(' after while")
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	p.consumeWord(")", "')' after while condition")
	body := p.parseBlock()
	return &ast.WhileStmt{Sp: start.Sp.Cover(body.Sp), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Statement {
	start := p.advance() // do
	body := p.parseBlock()
	p.consumeWord("while", "'while' after do body")
	p.consumeWord("(", "'(' after while")
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	p.consumeWord(")", "')' after do-while condition")
	end := p.consumeWord(";", "';' after do-while statement")
	return &ast.DoWhileStmt{Sp: start.Sp.Cover(end.Sp), Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Statement {
	start := p.advance() // for
	p.consumeWord("(", "'(' after for")
	stmt := &ast.ForStmt{}
	if !p.matchWord(";") {
		stmt.Init = p.parseDeclOrExprStatement() // consumes the ';'
	}
	if !p.checkWord(";") {
		stmt.Cond = p.parseExpression()
	}
	p.consumeWord(";", "';' after for condition")
	if !p.checkWord(")") {
		stmt.Next = p.parseExpression()
	}
	p.consumeWord(")", "')' to close for header")
	stmt.Body = p.parseBlock()
	stmt.Sp = start.Sp.Cover(stmt.Body.Sp)
	return stmt
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance() // return
	stmt := &ast.ReturnStmt{}
	if !p.checkWord(";") {
		for {
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			stmt.Values = append(stmt.Values, value)
			if !p.matchWord(",") {
				break
			}
		}
	}
	end := p.consumeWord(";", "';' after return statement")
	stmt.Sp = start.Sp.Cover(end.Sp)
	return stmt
}

func (p *Parser) parseEmit() ast.Statement {
	start := p.advance() // emit
	event := p.consumeIdent("event name after emit")
	p.consumeWord("(", "'(' after event name")
	stmt := &ast.EmitStmt{Event: event}
	if !p.checkWord(")") {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			stmt.Args = append(stmt.Args, arg)
			if !p.matchWord(",") {
				break
			}
		}
	}
	p.consumeWord(")", "')' to close emit arguments")
	end := p.consumeWord(";", "';' after emit statement")
	stmt.Sp = start.Sp.Cover(end.Sp)
	return stmt
}

func (p *Parser) parseTry() ast.Statement {
	start := p.advance() // try
	call := p.parseExpression()
	if call == nil {
		return nil
	}
	stmt := &ast.TryCatchStmt{Call: call}
	if p.matchWord("returns") {
		p.consumeWord("(", "'(' after returns")
		stmt.Returns = p.parseParameterList()
	}
	stmt.Success = p.parseBlock()
	for p.checkWord("catch") {
		clause := p.parseCatchClause()
		if clause == nil {
			break
		}
		stmt.Catches = append(stmt.Catches, clause)
	}
	if len(stmt.Catches) == 0 {
		p.errorAtCurrent("try statement requires at least one catch clause")
	}
	stmt.Sp = start.Sp.Cover(p.previous().Sp)
	return stmt
}

func (p *Parser) parseCatchClause() *ast.CatchClause {
	start := p.advance() // catch
	clause := &ast.CatchClause{}
	switch {
	case p.peek().Kind == IDENT && p.peek().Text == "Error":
		p.advance()
		clause.Kind = ast.CatchError
		p.consumeWord("(", "'(' after Error")
		if !p.checkWord(")") {
			clause.Param = p.parseParameter()
		}
		p.consumeWord(")", "')' to close catch parameter")
	case p.checkWord("("):
		p.advance()
		clause.Kind = ast.CatchBytes
		if !p.checkWord(")") {
			clause.Param = p.parseParameter()
		}
		p.consumeWord(")", "')' to close catch parameter")
	default:
		clause.Kind = ast.CatchBytes
	}
	clause.Body = p.parseBlock()
	clause.Sp = start.Sp.Cover(clause.Body.Sp)
	return clause
}

// syncToStatement skips past the next ';' or stops before a '}' or a token
// that can start a statement.
func (p *Parser) syncToStatement() {
	for !p.atEnd() {
		if p.matchWord(";") {
			return
		}
		switch p.peek().Text {
		case "}", "{", "if", "while", "do", "for", "return", "break", "continue", "emit", "try":
			return
		}
		p.advance()
	}
}
