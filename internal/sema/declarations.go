package sema

import (
	"fmt"
	"math/big"
	"strings"

	"silica/internal/ast"
	"silica/internal/diag"
)

// collectDeclarations registers every top-level and contract-level name
// before any type is resolved, so declaration order never matters.
func (a *analyzer) collectDeclarations(unit *ast.SourceUnit) {
	for _, item := range unit.Items {
		switch d := item.(type) {
		case *ast.ContractDef:
			c := &Contract{Name: d.Name.Name, Def: d}
			if id, ok := d.ProgramID(); ok {
				c.ProgramID = id
			}
			if a.declareTop(c.Name, d.Name.Sp, c, topDeclSpan) {
				a.ns.Contracts = append(a.ns.Contracts, c)
			}
			a.collectContractMembers(c)
		case *ast.StructDef:
			s := &Struct{Name: d.Name.Name, Def: d}
			if a.declareTop(s.Name, d.Name.Sp, s, topDeclSpan) {
				a.ns.Structs = append(a.ns.Structs, s)
			}
		case *ast.EnumDef:
			e := a.collectEnum(d)
			if a.declareTop(e.Name, d.Name.Sp, e, topDeclSpan) {
				a.ns.Enums = append(a.ns.Enums, e)
			}
		case *ast.EventDef:
			ev := &Event{Name: d.Name.Name, Def: d}
			if a.declareTop(ev.Name, d.Name.Sp, ev, topDeclSpan) {
				a.ns.Events = append(a.ns.Events, ev)
			}
		case *ast.FunctionDef:
			fn := &Function{
				Name:       d.Name.Name,
				Def:        d,
				Mutability: d.Mutability,
				Visibility: d.Visibility,
			}
			a.declareFreeFunction(fn)
		}
	}
}

// declareFreeFunction allows several functions under one name as overloads
// but rejects clashes with non-function declarations.
func (a *analyzer) declareFreeFunction(fn *Function) {
	if prior, ok := a.ns.byName[fn.Name]; ok {
		if _, isFn := prior.(*Function); !isFn {
			a.bag.Add(diag.Error(diag.CatDeclaration, fn.Def.Name.Sp,
				fmt.Sprintf("'%s' is already declared", fn.Name)).
				WithNote(topDeclSpan(prior), "previous declaration is here"))
			return
		}
	} else {
		a.ns.byName[fn.Name] = fn
	}
	a.ns.Functions = append(a.ns.Functions, fn)
}

func (a *analyzer) collectContractMembers(c *Contract) {
	names := map[string]ast.Node{}

	checkName := func(ident *ast.Ident, allowOverload bool) bool {
		if prior, ok := names[ident.Name]; ok {
			if allowOverload {
				if _, isFn := prior.(*ast.FunctionDef); isFn {
					return true
				}
			}
			a.bag.Add(diag.Error(diag.CatDeclaration, ident.Sp,
				fmt.Sprintf("'%s' is already declared in contract '%s'", ident.Name, c.Name)).
				WithNote(prior.Span(), "previous declaration is here"))
			return false
		}
		return true
	}

	for _, part := range c.Def.Parts {
		switch d := part.(type) {
		case *ast.VariableDef:
			if !checkName(d.Name, false) {
				continue
			}
			names[d.Name.Name] = d.Name
			c.Variables = append(c.Variables, &Variable{
				Name:     d.Name.Name,
				Public:   d.Public,
				Constant: d.Constant,
				Def:      d,
				Owner:    c,
			})
		case *ast.FunctionDef:
			fn := &Function{
				Def:           d,
				Contract:      c,
				Mutability:    d.Mutability,
				Visibility:    d.Visibility,
				IsConstructor: d.IsConstructor,
			}
			if d.IsConstructor {
				if c.Ctor != nil {
					a.bag.Add(diag.Error(diag.CatDeclaration, d.Sp,
						fmt.Sprintf("contract '%s' already has a constructor", c.Name)).
						WithNote(c.Ctor.Def.Sp, "previous constructor is here"))
					continue
				}
				c.Ctor = fn
				continue
			}
			fn.Name = d.Name.Name
			if !checkName(d.Name, true) {
				continue
			}
			names[d.Name.Name] = d
			c.Functions = append(c.Functions, fn)
		case *ast.StructDef:
			if !checkName(d.Name, false) {
				continue
			}
			names[d.Name.Name] = d.Name
			c.Structs = append(c.Structs, &Struct{Name: d.Name.Name, Def: d})
		case *ast.EnumDef:
			if !checkName(d.Name, false) {
				continue
			}
			names[d.Name.Name] = d.Name
			c.Enums = append(c.Enums, a.collectEnum(d))
		case *ast.EventDef:
			if !checkName(d.Name, false) {
				continue
			}
			names[d.Name.Name] = d.Name
			c.Events = append(c.Events, &Event{Name: d.Name.Name, Def: d, Owner: c})
		}
	}
}

func (a *analyzer) collectEnum(d *ast.EnumDef) *Enum {
	e := &Enum{Name: d.Name.Name, Def: d}
	seen := map[string]*ast.Ident{}
	for _, v := range d.Values {
		if prior, ok := seen[v.Name]; ok {
			a.bag.Add(diag.Error(diag.CatDeclaration, v.Sp,
				fmt.Sprintf("duplicate enum variant '%s'", v.Name)).
				WithNote(prior.Sp, "previous variant is here"))
			continue
		}
		seen[v.Name] = v
		e.Values = append(e.Values, v.Name)
	}
	return e
}

// linkBases resolves inheritance lists and rejects cycles.
func (a *analyzer) linkBases() {
	for _, c := range a.ns.Contracts {
		for _, baseName := range c.Def.Bases {
			base := a.ns.ContractByName(baseName.Name)
			if base == nil {
				a.errorf(diag.CatDeclaration, baseName.Sp,
					"unknown base contract '%s'", baseName.Name)
				continue
			}
			if base == c {
				a.errorf(diag.CatDeclaration, baseName.Sp,
					"contract '%s' cannot inherit from itself", c.Name)
				continue
			}
			c.Bases = append(c.Bases, base)
		}
	}
	for _, c := range a.ns.Contracts {
		if a.inheritanceCycle(c, c, map[*Contract]bool{}) {
			a.errorf(diag.CatDeclaration, c.Def.Name.Sp,
				"inheritance of contract '%s' is cyclic", c.Name)
			c.Bases = nil
		}
	}
}

func (a *analyzer) inheritanceCycle(origin, c *Contract, seen map[*Contract]bool) bool {
	if seen[c] {
		return false
	}
	seen[c] = true
	for _, base := range c.Bases {
		if base == origin || a.inheritanceCycle(origin, base, seen) {
			return true
		}
	}
	return false
}

// resolveDeclarationTypes runs after all names exist: struct fields, enum
// and event payloads, state variable types, function signatures, using
// directives. Bodies come later.
func (a *analyzer) resolveDeclarationTypes() {
	for _, s := range a.ns.Structs {
		a.resolveStructFields(s, nil)
	}
	for _, ev := range a.ns.Events {
		a.resolveEventFields(ev, nil)
	}
	for _, fn := range a.ns.Functions {
		a.resolveSignature(fn, nil)
	}
	for _, c := range a.ns.Contracts {
		for _, s := range c.Structs {
			a.resolveStructFields(s, c)
		}
		for _, ev := range c.Events {
			a.resolveEventFields(ev, c)
		}
		for _, v := range c.Variables {
			v.Type = a.typeFromAST(v.Def.Type, c)
			if _, isMapping := Deref(v.Type).(MappingType); isMapping && v.Constant {
				a.errorf(diag.CatDeclaration, v.Def.Name.Sp,
					"mapping state variable '%s' cannot be constant", v.Name)
			}
		}
		for _, fn := range c.Functions {
			a.resolveSignature(fn, c)
		}
		if c.Ctor != nil {
			a.resolveSignature(c.Ctor, c)
			if len(c.Ctor.Returns) > 0 {
				a.errorf(diag.CatDeclaration, c.Ctor.Def.Sp,
					"constructor cannot declare return values")
			}
		}
	}
	// Using directives need resolved signatures.
	for _, c := range a.ns.Contracts {
		for _, part := range c.Def.Parts {
			if u, ok := part.(*ast.UsingDef); ok {
				a.resolveUsing(c, u)
			}
		}
	}
}

func (a *analyzer) resolveStructFields(s *Struct, ctx *Contract) {
	seen := map[string]*ast.Ident{}
	for _, f := range s.Def.Fields {
		if prior, ok := seen[f.Name.Name]; ok {
			a.bag.Add(diag.Error(diag.CatDeclaration, f.Name.Sp,
				fmt.Sprintf("duplicate field '%s' in struct '%s'", f.Name.Name, s.Name)).
				WithNote(prior.Sp, "previous field is here"))
			continue
		}
		seen[f.Name.Name] = f.Name
		ty := a.typeFromAST(f.Type, ctx)
		if inner, ok := Deref(ty).(*StructType); ok && inner.Decl == s {
			a.errorf(diag.CatDeclaration, f.Sp,
				"struct '%s' cannot contain itself", s.Name)
			ty = UnresolvedType{}
		}
		s.Fields = append(s.Fields, &Field{Name: f.Name.Name, Type: ty, Span: f.Sp})
	}
}

func (a *analyzer) resolveEventFields(ev *Event, ctx *Contract) {
	for _, f := range ev.Def.Fields {
		name := ""
		if f.Name != nil {
			name = f.Name.Name
		}
		ev.Fields = append(ev.Fields, &EventField{
			Name:    name,
			Type:    a.typeFromAST(f.Type, ctx),
			Indexed: f.Indexed,
		})
	}
}

func (a *analyzer) resolveSignature(fn *Function, ctx *Contract) {
	seen := map[string]*ast.Ident{}
	for _, p := range fn.Def.Params {
		param := &Param{Type: a.typeFromAST(p.Type, ctx), Span: p.Sp}
		if p.Name != nil {
			if prior, ok := seen[p.Name.Name]; ok {
				a.bag.Add(diag.Error(diag.CatDeclaration, p.Name.Sp,
					fmt.Sprintf("duplicate parameter '%s'", p.Name.Name)).
					WithNote(prior.Sp, "previous parameter is here"))
			} else {
				seen[p.Name.Name] = p.Name
			}
			param.Name = p.Name.Name
		} else {
			a.errorf(diag.CatDeclaration, p.Sp, "parameter needs a name")
		}
		fn.Params = append(fn.Params, param)
	}
	for _, r := range fn.Def.Returns {
		ret := &Param{Type: a.typeFromAST(r.Type, ctx), Span: r.Sp}
		if r.Name != nil {
			if prior, ok := seen[r.Name.Name]; ok {
				a.bag.Add(diag.Error(diag.CatDeclaration, r.Name.Sp,
					fmt.Sprintf("return value '%s' clashes with a parameter", r.Name.Name)).
					WithNote(prior.Sp, "parameter is here"))
			} else {
				seen[r.Name.Name] = r.Name
			}
			ret.Name = r.Name.Name
		}
		fn.Returns = append(fn.Returns, ret)
	}
}

var overloadableOperators = map[string]int{
	"+": 2, "-": 2, "*": 2, "/": 2, "%": 2,
	"==": 2, "!=": 2, "<": 2, ">": 2, "<=": 2, ">=": 2,
	"&": 2, "|": 2, "^": 2,
	"!": 1, "~": 1,
}

func (a *analyzer) resolveUsing(c *Contract, u *ast.UsingDef) {
	operand := a.typeFromAST(u.Type, c)
	if IsUnresolved(operand) {
		return
	}

	if u.Library != nil {
		lib := a.ns.ContractByName(u.Library.Name)
		if lib == nil {
			a.errorf(diag.CatDeclaration, u.Library.Sp,
				"unknown library '%s' in using directive", u.Library.Name)
			return
		}
		c.Libraries = append(c.Libraries, &BoundLibrary{Library: lib, Operand: operand, Span: u.Sp})
		return
	}

	for _, op := range u.Operators {
		arity, ok := overloadableOperators[op.Operator]
		if op.Operator == "" || !ok {
			a.errorf(diag.CatDeclaration, op.Sp,
				"operator '%s' cannot be user-defined", op.Operator)
			continue
		}
		fn := a.freeFunctionForOperator(op.Function.Name, operand, arity)
		if fn == nil {
			a.errorf(diag.CatDeclaration, op.Function.Sp,
				"no function '%s' taking %s matches operator '%s'",
				op.Function.Name, describeOperands(operand, arity), op.Operator)
			continue
		}
		for _, prior := range c.Operators {
			if prior.Operator == op.Operator && SameType(prior.Operand, operand) {
				a.bag.Add(diag.Error(diag.CatDeclaration, op.Sp,
					fmt.Sprintf("operator '%s' is already bound for %s", op.Operator, operand.String())).
					WithNote(prior.Span, "previous binding is here"))
			}
		}
		c.Operators = append(c.Operators, &BoundOperator{
			Operator: op.Operator,
			Operand:  operand,
			Fn:       fn,
			Span:     op.Sp,
		})
	}
}

func describeOperands(operand Type, arity int) string {
	parts := make([]string, arity)
	for i := range parts {
		parts[i] = operand.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// freeFunctionForOperator finds a free function whose parameters are all the
// operand type with the required arity and exactly one return value.
func (a *analyzer) freeFunctionForOperator(name string, operand Type, arity int) *Function {
	for _, fn := range a.ns.Functions {
		if fn.Name != name || len(fn.Params) != arity || len(fn.Returns) != 1 {
			continue
		}
		match := true
		for _, p := range fn.Params {
			if !SameType(p.Type, operand) {
				match = false
				break
			}
		}
		if match {
			return fn
		}
	}
	return nil
}

// typeFromAST resolves a written type name in an optional contract context.
func (a *analyzer) typeFromAST(tn ast.TypeName, ctx *Contract) Type {
	switch t := tn.(type) {
	case *ast.ElementaryType:
		return a.elementaryType(t)
	case *ast.UserType:
		return a.userType(t, ctx)
	case *ast.ArrayType:
		elem := a.typeFromAST(t.Elem, ctx)
		length := DynamicLength
		if t.Length != nil {
			n, ok := constArrayLength(t.Length)
			if !ok {
				a.errorf(diag.CatType, t.Length.Span(),
					"array length must be a positive integer constant")
				return UnresolvedType{}
			}
			length = n
		}
		if _, isMapping := Deref(elem).(MappingType); isMapping {
			a.errorf(diag.CatType, t.Sp, "arrays of mappings are not supported")
			return UnresolvedType{}
		}
		return ArrayType{Elem: elem, Length: length}
	case *ast.MappingType:
		key := a.typeFromAST(t.Key, ctx)
		if !validMappingKey(key) {
			a.errorf(diag.CatType, t.Key.Span(),
				"'%s' cannot be a mapping key", key.String())
			key = UnresolvedType{}
		}
		value := a.typeFromAST(t.Value, ctx)
		return MappingType{Key: key, Value: value}
	case *ast.FunctionType:
		ft := &FunctionType{External: t.External}
		for _, p := range t.Params {
			ft.Params = append(ft.Params, a.typeFromAST(p.Type, ctx))
		}
		for _, r := range t.Returns {
			ft.Returns = append(ft.Returns, a.typeFromAST(r.Type, ctx))
		}
		return ft
	}
	return UnresolvedType{}
}

func (a *analyzer) elementaryType(t *ast.ElementaryType) Type {
	switch t.Name {
	case "bool":
		return BoolType{}
	case "string":
		return StringType{}
	case "bytes":
		return BytesType{}
	case "address":
		return AddressType{Payable: t.Payable}
	}
	if bits, signed, ok := parseIntName(t.Name); ok {
		return IntegerType{Bits: bits, Signed: signed}
	}
	if n, ok := parseBytesName(t.Name); ok {
		return FixedBytesType{Length: n}
	}
	a.errorf(diag.CatType, t.Sp, "unknown type '%s'", t.Name)
	return UnresolvedType{}
}

func (a *analyzer) userType(t *ast.UserType, ctx *Contract) Type {
	if ctx != nil {
		if d := ctx.memberDecl(t.Name.Name); d != nil {
			if ty := declToType(d); ty != nil {
				return ty
			}
		}
	}
	switch d := a.ns.lookup(t.Name.Name).(type) {
	case *Contract:
		return &ContractType{Decl: d}
	case *Struct:
		return &StructType{Decl: d}
	case *Enum:
		return &EnumType{Decl: d}
	}
	a.errorf(diag.CatType, t.Sp, "unknown type '%s'", t.Name.Name)
	return UnresolvedType{}
}

func declToType(d any) Type {
	switch decl := d.(type) {
	case *Struct:
		return &StructType{Decl: decl}
	case *Enum:
		return &EnumType{Decl: decl}
	}
	return nil
}

func validMappingKey(t Type) bool {
	switch Deref(t).(type) {
	case BoolType, IntegerType, AddressType, FixedBytesType, StringType, BytesType, *EnumType, *ContractType, UnresolvedType:
		return true
	}
	return false
}

// constArrayLength evaluates the restricted constant grammar admitted in
// array bounds: decimal and hex literals, optionally parenthesized.
func constArrayLength(e ast.Expression) (int64, bool) {
	lit, ok := e.(*ast.NumberLiteral)
	if !ok {
		return 0, false
	}
	v, ok := parseNumberText(lit.Text)
	if !ok || v.Sign() <= 0 || !v.IsInt64() {
		return 0, false
	}
	return v.Int64(), true
}

// parseNumberText parses decimal or 0x hex literal text.
func parseNumberText(text string) (*big.Int, bool) {
	v := new(big.Int)
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		_, ok := v.SetString(text[2:], 16)
		return v, ok
	}
	_, ok := v.SetString(text, 10)
	return v, ok
}

// parseIntName recognizes int/uint/intN/uintN with N in 8..256 step 8.
func parseIntName(name string) (bits int, signed bool, ok bool) {
	rest := ""
	switch {
	case strings.HasPrefix(name, "uint"):
		rest = name[4:]
	case strings.HasPrefix(name, "int"):
		signed = true
		rest = name[3:]
	default:
		return 0, false, false
	}
	if rest == "" {
		return 256, signed, true
	}
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 8 || n > 256 || n%8 != 0 {
		return 0, false, false
	}
	return n, signed, true
}

// parseBytesName recognizes bytes1..bytes32.
func parseBytesName(name string) (length int, ok bool) {
	if !strings.HasPrefix(name, "bytes") || len(name) == 5 {
		return 0, false
	}
	n := 0
	for _, r := range name[5:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 1 || n > 32 {
		return 0, false
	}
	return n, true
}
