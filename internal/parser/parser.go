package parser

import (
	"fmt"
	"strings"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/source"
)

// Parser is a recursive-descent parser over the scanned token stream. Parse
// errors go into the shared diagnostics bag; the parser recovers at the next
// declaration or statement boundary so one run reports as much as possible.
type Parser struct {
	fileID  source.FileID
	tokens  []Token
	current int
	bag     *diag.Bag
}

// ParseSource scans and parses one file. The returned tree may be partial
// when the bag contains syntax errors.
func ParseSource(fileID source.FileID, src string, bag *diag.Bag) *ast.SourceUnit {
	tokens := scanTokens(fileID, src, bag)
	p := &Parser{fileID: fileID, tokens: tokens, bag: bag}
	return p.parseSourceUnit()
}

func (p *Parser) parseSourceUnit() *ast.SourceUnit {
	unit := &ast.SourceUnit{Sp: source.Span{File: p.fileID, End: p.tokens[len(p.tokens)-1].Sp.End}}

	for !p.atEnd() {
		item := p.parseSourceItem()
		if item != nil {
			unit.Items = append(unit.Items, item)
		} else {
			p.syncToTopLevel()
		}
	}
	if len(unit.Items) > 0 {
		unit.Sp = unit.Items[0].Span().Cover(unit.Items[len(unit.Items)-1].Span())
	}
	return unit
}

func (p *Parser) parseSourceItem() ast.SourceItem {
	annotations := p.parseAnnotations()

	switch {
	case p.checkWord("contract"):
		return p.parseContract(annotations)
	case p.checkWord("struct"):
		return p.parseStruct()
	case p.checkWord("enum"):
		return p.parseEnum()
	case p.checkWord("event"):
		return p.parseEvent()
	case p.checkWord("function"):
		return p.parseFunction(false)
	}
	p.errorAtCurrent(fmt.Sprintf("expected declaration, found '%s'", p.describe(p.peek())))
	return nil
}

func (p *Parser) parseAnnotations() []*ast.Annotation {
	var annotations []*ast.Annotation
	for p.checkWord("@") {
		start := p.advance()
		name := p.consumeIdent("annotation name")
		p.consumeWord("(", "'(' after annotation name")
		value := ""
		if p.peek().Kind == STRING {
			value = unquote(p.advance().Text)
		} else {
			p.errorAtCurrent("annotation value must be a string literal")
		}
		end := p.consumeWord(")", "')' after annotation value")
		annotations = append(annotations, &ast.Annotation{
			Sp:    start.Sp.Cover(end.Sp),
			Name:  name.Name,
			Value: value,
		})
	}
	return annotations
}

func (p *Parser) parseContract(annotations []*ast.Annotation) ast.SourceItem {
	start := p.advance() // contract
	name := p.consumeIdent("contract name")

	var bases []*ast.Ident
	if p.matchWord("is") {
		for {
			bases = append(bases, p.consumeIdent("base contract name"))
			if !p.matchWord(",") {
				break
			}
		}
	}

	p.consumeWord("{", "'{' to open contract body")
	def := &ast.ContractDef{Annotations: annotations, Name: name, Bases: bases}
	for !p.checkWord("}") && !p.atEnd() {
		part := p.parseContractPart()
		if part != nil {
			def.Parts = append(def.Parts, part)
		} else {
			p.syncToContractPart()
		}
	}
	end := p.consumeWord("}", "'}' to close contract body")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

func (p *Parser) parseContractPart() ast.ContractPart {
	switch {
	case p.checkWord("function"):
		return p.parseFunction(false)
	case p.checkWord("constructor"):
		return p.parseFunction(true)
	case p.checkWord("struct"):
		return p.parseStruct()
	case p.checkWord("enum"):
		return p.parseEnum()
	case p.checkWord("event"):
		return p.parseEvent()
	case p.checkWord("using"):
		return p.parseUsing()
	}
	return p.parseStateVariable()
}

func (p *Parser) parseStateVariable() ast.ContractPart {
	start := p.peek()
	ty := p.parseTypeName()
	if ty == nil {
		p.errorAtCurrent(fmt.Sprintf("expected contract member, found '%s'", p.describe(p.peek())))
		return nil
	}

	def := &ast.VariableDef{Type: ty}
	for {
		switch {
		case p.matchWord("public"):
			def.Public = true
			continue
		case p.matchWord("private"), p.matchWord("internal"):
			continue
		case p.matchWord("constant"):
			def.Constant = true
			continue
		}
		break
	}

	def.Name = p.consumeIdent("state variable name")
	if p.matchWord("=") {
		def.Init = p.parseExpression()
	}
	end := p.consumeWord(";", "';' after state variable declaration")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

func (p *Parser) parseFunction(isConstructor bool) *ast.FunctionDef {
	start := p.advance() // function or constructor
	def := &ast.FunctionDef{IsConstructor: isConstructor}
	if !isConstructor {
		def.Name = p.consumeIdent("function name")
	}

	p.consumeWord("(", "'(' to open parameter list")
	def.Params = p.parseParameterList()

	// Modifier keywords in any order; later duplicates win silently, the
	// resolver does not care about repetition.
	for {
		switch {
		case p.matchWord("public"):
			def.Visibility = ast.VisPublic
			continue
		case p.matchWord("private"):
			def.Visibility = ast.VisPrivate
			continue
		case p.matchWord("internal"):
			def.Visibility = ast.VisInternal
			continue
		case p.matchWord("external"):
			def.Visibility = ast.VisExternal
			continue
		case p.matchWord("view"):
			def.Mutability = ast.MutView
			continue
		case p.matchWord("pure"):
			def.Mutability = ast.MutPure
			continue
		case p.matchWord("payable"):
			def.Mutability = ast.MutPayable
			continue
		}
		break
	}

	if p.matchWord("returns") {
		p.consumeWord("(", "'(' after returns")
		def.Returns = p.parseParameterList()
	}

	if p.checkWord("{") {
		def.Body = p.parseBlock()
	} else {
		p.consumeWord(";", "function body or ';'")
	}

	endSp := p.previous().Sp
	def.Sp = start.Sp.Cover(endSp)
	return def
}

// parseParameterList parses up to and including the closing parenthesis.
func (p *Parser) parseParameterList() []*ast.Parameter {
	var params []*ast.Parameter
	if p.matchWord(")") {
		return params
	}
	for {
		param := p.parseParameter()
		if param == nil {
			break
		}
		params = append(params, param)
		if !p.matchWord(",") {
			break
		}
	}
	p.consumeWord(")", "')' to close parameter list")
	return params
}

func (p *Parser) parseParameter() *ast.Parameter {
	start := p.peek()
	ty := p.parseTypeName()
	if ty == nil {
		p.errorAtCurrent(fmt.Sprintf("expected parameter type, found '%s'", p.describe(p.peek())))
		return nil
	}
	param := &ast.Parameter{Type: ty, Sp: start.Sp.Cover(p.previous().Sp)}
	if p.peek().Kind == IDENT && !isKeyword(p.peek().Text) {
		param.Name = p.parseIdent()
		param.Sp = param.Sp.Cover(param.Name.Sp)
	}
	return param
}

func (p *Parser) parseStruct() *ast.StructDef {
	start := p.advance() // struct
	def := &ast.StructDef{Name: p.consumeIdent("struct name")}
	p.consumeWord("{", "'{' to open struct body")
	for !p.checkWord("}") && !p.atEnd() {
		fieldStart := p.peek()
		ty := p.parseTypeName()
		if ty == nil {
			p.errorAtCurrent(fmt.Sprintf("expected field type, found '%s'", p.describe(p.peek())))
			p.syncToContractPart()
			break
		}
		name := p.consumeIdent("field name")
		end := p.consumeWord(";", "';' after struct field")
		def.Fields = append(def.Fields, &ast.StructField{
			Sp:   fieldStart.Sp.Cover(end.Sp),
			Type: ty,
			Name: name,
		})
	}
	end := p.consumeWord("}", "'}' to close struct body")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

func (p *Parser) parseEnum() *ast.EnumDef {
	start := p.advance() // enum
	def := &ast.EnumDef{Name: p.consumeIdent("enum name")}
	p.consumeWord("{", "'{' to open enum body")
	for {
		def.Values = append(def.Values, p.consumeIdent("enum variant name"))
		if !p.matchWord(",") {
			break
		}
	}
	end := p.consumeWord("}", "'}' to close enum body")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

func (p *Parser) parseEvent() *ast.EventDef {
	start := p.advance() // event
	def := &ast.EventDef{Name: p.consumeIdent("event name")}
	p.consumeWord("(", "'(' after event name")
	if !p.matchWord(")") {
		for {
			fieldStart := p.peek()
			ty := p.parseTypeName()
			if ty == nil {
				p.errorAtCurrent(fmt.Sprintf("expected event field type, found '%s'", p.describe(p.peek())))
				break
			}
			field := &ast.EventField{Type: ty, Sp: fieldStart.Sp.Cover(p.previous().Sp)}
			if p.matchWord("indexed") {
				field.Indexed = true
			}
			if p.peek().Kind == IDENT && !isKeyword(p.peek().Text) {
				field.Name = p.parseIdent()
				field.Sp = field.Sp.Cover(field.Name.Sp)
			}
			def.Fields = append(def.Fields, field)
			if !p.matchWord(",") {
				break
			}
		}
		p.consumeWord(")", "')' to close event parameter list")
	}
	end := p.consumeWord(";", "';' after event declaration")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

func (p *Parser) parseUsing() *ast.UsingDef {
	start := p.advance() // using
	def := &ast.UsingDef{}

	if p.matchWord("{") {
		for {
			fn := p.consumeIdent("function name in using list")
			op := ""
			if p.matchWord("as") {
				op = p.advance().Text
			}
			def.Operators = append(def.Operators, &ast.UsingOperator{
				Sp:       fn.Sp,
				Function: fn,
				Operator: op,
			})
			if !p.matchWord(",") {
				break
			}
		}
		p.consumeWord("}", "'}' to close using list")
	} else {
		def.Library = p.consumeIdent("library name")
	}

	p.consumeWordIdent("for", "'for' in using directive")
	def.Type = p.parseTypeName()
	if def.Type == nil {
		p.errorAtCurrent("expected type in using directive")
	}
	end := p.consumeWord(";", "';' after using directive")
	def.Sp = start.Sp.Cover(end.Sp)
	return def
}

// Token helpers, in the usual advance/check/match/consume shape.

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.atEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == EOF
}

// checkWord matches operators, punctuation and keywords by text.
func (p *Parser) checkWord(text string) bool {
	return p.peek().Text == text
}

func (p *Parser) matchWord(text string) bool {
	if p.checkWord(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumeWord(text, what string) Token {
	if p.checkWord(text) {
		return p.advance()
	}
	p.errorAtCurrent(fmt.Sprintf("expected %s, found '%s'", what, p.describe(p.peek())))
	return Token{Kind: p.peek().Kind, Sp: p.peek().Sp}
}

// consumeWordIdent is consumeWord for contextual keywords that scan as plain
// identifiers ("for" inside using directives).
func (p *Parser) consumeWordIdent(text, what string) {
	if p.peek().Kind == IDENT && p.peek().Text == text {
		p.advance()
		return
	}
	p.errorAtCurrent(fmt.Sprintf("expected %s, found '%s'", what, p.describe(p.peek())))
}

func (p *Parser) parseIdent() *ast.Ident {
	tok := p.advance()
	return &ast.Ident{Sp: tok.Sp, Name: tok.Text}
}

func (p *Parser) consumeIdent(what string) *ast.Ident {
	if p.peek().Kind == IDENT && !isKeyword(p.peek().Text) {
		return p.parseIdent()
	}
	p.errorAtCurrent(fmt.Sprintf("expected %s, found '%s'", what, p.describe(p.peek())))
	return &ast.Ident{Sp: p.peek().Sp, Name: ""}
}

func (p *Parser) errorAtCurrent(message string) {
	p.bag.Add(diag.Error(diag.CatSyntax, p.peek().Sp, message))
}

func (p *Parser) describe(tok Token) string {
	if tok.Kind == EOF {
		return "end of file"
	}
	return tok.Text
}

// syncToTopLevel skips tokens until something that can start a declaration.
func (p *Parser) syncToTopLevel() {
	for !p.atEnd() {
		switch p.peek().Text {
		case "contract", "struct", "enum", "event", "function", "@":
			return
		}
		p.advance()
	}
}

// syncToContractPart skips to the next ';' or the closing brace.
func (p *Parser) syncToContractPart() {
	for !p.atEnd() {
		if p.matchWord(";") {
			return
		}
		if p.checkWord("}") || p.checkWord("function") || p.checkWord("constructor") {
			return
		}
		p.advance()
	}
}

func unquote(text string) string {
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t", `\r`, "\r")
	return replacer.Replace(text)
}
