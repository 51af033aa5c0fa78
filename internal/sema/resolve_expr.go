package sema

import (
	"math/big"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/source"
)

func (r *funcResolver) resolveExpr(e ast.Expression, h hint) Expression {
	switch n := e.(type) {
	case *ast.BoolLiteral:
		return &BoolConst{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Value: n.Value}
	case *ast.NumberLiteral:
		return r.resolveNumber(n, h)
	case *ast.RationalLiteral:
		return r.resolveRational(n, h)
	case *ast.StringLiteral:
		ty := Type(StringType{})
		if h.kind == hintType {
			if _, ok := Deref(h.ty).(BytesType); ok {
				ty = BytesType{}
			}
		}
		return &StringConst{exprBase: exprBase{Ty: ty, Sp: n.Sp}, Value: n.Value}
	case *ast.ArrayLiteral:
		return r.resolveArrayLiteral(n, h)
	case *ast.IdentExpr:
		return r.resolveIdent(n)
	case *ast.MemberAccess:
		return r.resolveMember(n)
	case *ast.IndexAccess:
		return r.resolveIndex(n)
	case *ast.UnaryExpr:
		return r.resolveUnary(n, h)
	case *ast.BinaryExpr:
		return r.resolveBinary(n, h)
	case *ast.Conditional:
		return r.resolveConditional(n, h)
	case *ast.AssignExpr:
		return r.resolveAssign(n)
	case *ast.CallExpr:
		return r.resolveCall(n, h)
	case *ast.NewExpr:
		r.errorf(diag.CatType, n.Sp, "'new' must be followed by constructor arguments")
		return r.badExpr(n.Sp)
	}
	return r.badExpr(e.Span())
}

// resolveNumber types an integer literal. A concrete integer expectation
// wins when the value fits; otherwise the literal takes its natural width,
// the smallest power-of-two-aligned size from 8 bits up.
func (r *funcResolver) resolveNumber(n *ast.NumberLiteral, h hint) Expression {
	value, ok := parseNumberText(n.Text)
	if !ok {
		r.errorf(diag.CatSyntax, n.Sp, "malformed number literal '%s'", n.Text)
		return r.badExpr(n.Sp)
	}

	if h.kind == hintType {
		switch want := Deref(h.ty).(type) {
		case IntegerType:
			if fitsInteger(value, want) {
				return &NumberConst{exprBase: exprBase{Ty: want, Sp: n.Sp}, Value: value}
			}
			r.errorf(diag.CatType, n.Sp,
				"literal %s does not fit in '%s'", value.String(), want.String())
			return r.badExpr(n.Sp)
		case FixedBytesType:
			if fitsUnsigned(value, want.Length*8) {
				return &NumberConst{exprBase: exprBase{Ty: want, Sp: n.Sp}, Value: value}
			}
		}
	}

	lt, fits := literalType(value)
	if !fits {
		r.errorf(diag.CatType, n.Sp, "literal %s needs more than 256 bits", value.String())
		return r.badExpr(n.Sp)
	}
	return &NumberConst{exprBase: exprBase{Ty: lt, Sp: n.Sp}, Value: value}
}

func (r *funcResolver) resolveRational(n *ast.RationalLiteral, h hint) Expression {
	value, ok := new(big.Rat).SetString(n.Text)
	if !ok {
		r.errorf(diag.CatSyntax, n.Sp, "malformed number literal '%s'", n.Text)
		return r.badExpr(n.Sp)
	}
	konst := &RationalConst{exprBase: exprBase{Ty: RationalType{}, Sp: n.Sp}, Value: value}
	if h.kind == hintType && isInteger(h.ty) {
		return r.convert(konst, h.ty, n.Sp)
	}
	return konst
}

// resolveArrayLiteral unifies every element to the type of the first one.
func (r *funcResolver) resolveArrayLiteral(n *ast.ArrayLiteral, h hint) Expression {
	var elemHint hint
	if h.kind == hintType {
		if at, ok := Deref(h.ty).(ArrayType); ok {
			elemHint = typeHint(at.Elem)
		}
	}
	if len(n.Elems) == 0 {
		if elemHint.kind == hintType {
			return &ArrayLit{exprBase: exprBase{Ty: ArrayType{Elem: elemHint.ty, Length: 0}, Sp: n.Sp}}
		}
		r.errorf(diag.CatType, n.Sp, "cannot infer the type of an empty array literal")
		return r.badExpr(n.Sp)
	}

	first := r.concreteType(r.resolveExpr(n.Elems[0], elemHint))
	elemType := Deref(first.Type())
	elems := []Expression{first}
	for _, raw := range n.Elems[1:] {
		elem := r.resolveExpr(raw, typeHint(elemType))
		elems = append(elems, r.convert(elem, elemType, raw.Span()))
	}
	return &ArrayLit{
		exprBase: exprBase{Ty: ArrayType{Elem: elemType, Length: int64(len(elems))}, Sp: n.Sp},
		Elems:    elems,
	}
}

func (r *funcResolver) resolveIdent(n *ast.IdentExpr) Expression {
	if local := r.st.lookup(n.Name); local != nil {
		local.Read = true
		return &LocalRef{exprBase: exprBase{Ty: local.Type, Sp: n.Sp}, Local: local}
	}

	if r.contract != nil {
		if v := r.contract.VariableByName(n.Name); v != nil {
			v.Read = true
			ty := StorageRefType{Elem: v.Type, Immutable: v.Constant}
			return &StateRef{exprBase: exprBase{Ty: ty, Sp: n.Sp}, Variable: v}
		}
		if d := r.contract.memberDecl(n.Name); d != nil {
			if ty := declToType(d); ty != nil {
				return r.typeRef(ty, n.Sp)
			}
			r.errorf(diag.CatType, n.Sp, "event '%s' can only be used in an emit statement", n.Name)
			return r.badExpr(n.Sp)
		}
		if fns := r.contract.FunctionsNamed(n.Name); len(fns) > 0 {
			return r.funcValue(fns, n.Sp, n.Name)
		}
	}

	if ty := elementaryByName(n.Name); ty != nil {
		return r.typeRef(ty, n.Sp)
	}

	switch d := r.a.ns.lookup(n.Name).(type) {
	case *Contract:
		return r.typeRef(&ContractType{Decl: d}, n.Sp)
	case *Struct:
		return r.typeRef(&StructType{Decl: d}, n.Sp)
	case *Enum:
		return r.typeRef(&EnumType{Decl: d}, n.Sp)
	case *Event:
		r.errorf(diag.CatType, n.Sp, "event '%s' can only be used in an emit statement", n.Name)
		return r.badExpr(n.Sp)
	case *Function:
		return r.funcValue(r.a.ns.freeFunctionsNamed(n.Name), n.Sp, n.Name)
	}

	if builtinNamespaces[n.Name] {
		return &TypeRef{exprBase: exprBase{Ty: VoidType{}, Sp: n.Sp}, Referent: n.Name}
	}
	if matches, elsewhere := lookupBuiltins("", n.Name, r.a.tgt); len(matches) > 0 || elsewhere {
		if len(matches) == 0 {
			r.errorf(diag.CatTarget, n.Sp,
				"'%s' is not available on target %s", n.Name, r.a.tgt)
		} else {
			r.errorf(diag.CatType, n.Sp, "builtin '%s' can only be called", n.Name)
		}
		return r.badExpr(n.Sp)
	}

	r.errorf(diag.CatDeclaration, n.Sp, "unknown identifier '%s'", n.Name)
	return r.badExpr(n.Sp)
}

func (r *funcResolver) typeRef(ty Type, sp source.Span) Expression {
	return &TypeRef{exprBase: exprBase{Ty: VoidType{}, Sp: sp}, Referent: ty}
}

// funcValue turns a function name used as a value into an internal function
// pointer; an overloaded name has no single pointer type.
func (r *funcResolver) funcValue(fns []*Function, sp source.Span, name string) Expression {
	if len(fns) > 1 {
		r.errorf(diag.CatAmbiguity, sp,
			"'%s' is overloaded; a function value needs a unique signature", name)
		return r.badExpr(sp)
	}
	fn := fns[0]
	return &FuncRef{exprBase: exprBase{Ty: fn.Type(false), Sp: sp}, Fn: fn}
}

func (ns *Namespace) freeFunctionsNamed(name string) []*Function {
	var out []*Function
	for _, fn := range ns.Functions {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	return out
}

func elementaryByName(name string) Type {
	switch name {
	case "bool":
		return BoolType{}
	case "string":
		return StringType{}
	case "bytes":
		return BytesType{}
	case "address":
		return AddressType{}
	}
	if bits, signed, ok := parseIntName(name); ok {
		return IntegerType{Bits: bits, Signed: signed}
	}
	if n, ok := parseBytesName(name); ok {
		return FixedBytesType{Length: n}
	}
	return nil
}

// isBuiltinNamespaceIdent reports whether the expression is a bare msg/block/tx
// not shadowed by a local or state variable.
func (r *funcResolver) isBuiltinNamespaceIdent(e ast.Expression) (string, bool) {
	id, ok := e.(*ast.IdentExpr)
	if !ok || !builtinNamespaces[id.Name] {
		return "", false
	}
	if r.st.lookup(id.Name) != nil {
		return "", false
	}
	if r.contract != nil && r.contract.VariableByName(id.Name) != nil {
		return "", false
	}
	return id.Name, true
}

func (r *funcResolver) resolveMember(n *ast.MemberAccess) Expression {
	if space, ok := r.isBuiltinNamespaceIdent(n.Target); ok {
		matches, elsewhere := lookupBuiltins(space, n.Member.Name, r.a.tgt)
		if len(matches) == 1 && matches[0].IsValue {
			b := matches[0]
			return &BuiltinValue{exprBase: exprBase{Ty: b.Result, Sp: n.Sp}, Builtin: b}
		}
		if elsewhere {
			r.errorf(diag.CatTarget, n.Sp,
				"'%s.%s' is not available on target %s", space, n.Member.Name, r.a.tgt)
		} else {
			r.errorf(diag.CatDeclaration, n.Sp,
				"'%s' has no member '%s'", space, n.Member.Name)
		}
		return r.badExpr(n.Sp)
	}

	target := r.resolveExpr(n.Target, hint{})
	if IsUnresolved(target.Type()) {
		return r.badExpr(n.Sp)
	}

	if tr, ok := target.(*TypeRef); ok {
		if et, ok := tr.Referent.(*EnumType); ok {
			idx := et.Decl.ValueIndex(n.Member.Name)
			if idx < 0 {
				r.errorf(diag.CatDeclaration, n.Member.Sp,
					"enum '%s' has no variant '%s'", et.Decl.Name, n.Member.Name)
				return r.badExpr(n.Sp)
			}
			return &EnumConst{exprBase: exprBase{Ty: et, Sp: n.Sp}, Enum: et.Decl, Index: idx}
		}
		if ty, ok := tr.Referent.(Type); ok {
			r.errorf(diag.CatType, n.Sp, "'%s' has no member '%s'", ty.String(), n.Member.Name)
		} else {
			r.errorf(diag.CatType, n.Sp, "no member '%s' here", n.Member.Name)
		}
		return r.badExpr(n.Sp)
	}

	switch tt := Deref(target.Type()).(type) {
	case *StructType:
		field, idx := tt.Decl.FieldByName(n.Member.Name)
		if field == nil {
			r.errorf(diag.CatDeclaration, n.Member.Sp,
				"struct '%s' has no field '%s'", tt.Decl.Name, n.Member.Name)
			return r.badExpr(n.Sp)
		}
		ty := field.Type
		if sr, ok := target.Type().(StorageRefType); ok {
			ty = StorageRefType{Elem: field.Type, Immutable: sr.Immutable}
		}
		return &FieldAccess{exprBase: exprBase{Ty: ty, Sp: n.Sp}, Target: target, Field: field, Index: idx}
	case ArrayType, BytesType:
		if n.Member.Name == "length" {
			return &ArrayLength{exprBase: exprBase{Ty: IntegerType{Bits: 256}, Sp: n.Sp}, Target: target}
		}
	case *ContractType:
		fns := externallyVisible(tt.Decl.FunctionsNamed(n.Member.Name))
		if len(fns) == 1 {
			fn := fns[0]
			return &FuncRef{
				exprBase: exprBase{Ty: fn.Type(true), Sp: n.Sp},
				Fn:       fn,
				External: true,
				Receiver: target,
			}
		}
		if len(fns) > 1 {
			r.errorf(diag.CatAmbiguity, n.Sp,
				"'%s.%s' is overloaded; a function value needs a unique signature",
				tt.Decl.Name, n.Member.Name)
			return r.badExpr(n.Sp)
		}
	}

	r.errorf(diag.CatType, n.Member.Sp,
		"'%s' has no member '%s'", Deref(target.Type()).String(), n.Member.Name)
	return r.badExpr(n.Sp)
}

func externallyVisible(fns []*Function) []*Function {
	var out []*Function
	for _, fn := range fns {
		if fn.Visibility == ast.VisPublic || fn.Visibility == ast.VisExternal {
			out = append(out, fn)
		}
	}
	return out
}

func (r *funcResolver) resolveIndex(n *ast.IndexAccess) Expression {
	target := r.resolveExpr(n.Target, hint{})
	switch tt := Deref(target.Type()).(type) {
	case ArrayType:
		index := r.resolveExpr(n.Index, hint{kind: hintInteger})
		if !isInteger(index.Type()) && !IsUnresolved(index.Type()) {
			r.errorf(diag.CatType, n.Index.Span(),
				"array index must be an integer, not '%s'", index.Type().String())
		}
		ty := tt.Elem
		if sr, ok := target.Type().(StorageRefType); ok {
			ty = StorageRefType{Elem: tt.Elem, Immutable: sr.Immutable}
		}
		return &ArrayIndex{exprBase: exprBase{Ty: ty, Sp: n.Sp}, Target: target, Index: index}
	case MappingType:
		key := r.resolveExpr(n.Index, typeHint(tt.Key))
		key = r.convert(key, tt.Key, n.Index.Span())
		ty := Type(tt.Value)
		if sr, ok := target.Type().(StorageRefType); ok {
			ty = StorageRefType{Elem: tt.Value, Immutable: sr.Immutable}
		}
		return &MappingIndex{exprBase: exprBase{Ty: ty, Sp: n.Sp}, Target: target, Key: key}
	case UnresolvedType:
		return r.badExpr(n.Sp)
	}
	r.errorf(diag.CatType, n.Sp,
		"'%s' cannot be indexed", Deref(target.Type()).String())
	return r.badExpr(n.Sp)
}

func (r *funcResolver) resolveUnary(n *ast.UnaryExpr, h hint) Expression {
	operand := r.resolveExpr(n.Operand, unaryOperandHint(n.Op, h))
	ot := Deref(operand.Type())
	if IsUnresolved(ot) {
		return r.badExpr(n.Sp)
	}

	if bound := r.userOperator(n.Op, ot, 1); bound != nil {
		return &OperatorCall{
			exprBase: exprBase{Ty: bound.Fn.Returns[0].Type, Sp: n.Sp},
			Op:       n.Op,
			Fn:       bound.Fn,
			Args:     []Expression{operand},
		}
	}

	switch n.Op {
	case "!":
		operand = r.requireBool(operand)
		return &Unary{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Op: n.Op, Operand: operand}
	case "~":
		switch ot.(type) {
		case IntegerType, FixedBytesType:
			return &Unary{exprBase: exprBase{Ty: ot, Sp: n.Sp}, Op: n.Op, Operand: operand}
		}
	case "-":
		if konst, ok := operand.(*NumberConst); ok {
			neg := new(big.Int).Neg(konst.Value)
			return r.retypeConstant(neg, h, n.Sp)
		}
		if konst, ok := operand.(*RationalConst); ok {
			return &RationalConst{
				exprBase: exprBase{Ty: RationalType{}, Sp: n.Sp},
				Value:    new(big.Rat).Neg(konst.Value),
			}
		}
		if it, ok := ot.(IntegerType); ok {
			if !it.Signed {
				r.errorf(diag.CatType, n.Sp,
					"unary minus needs a signed operand, not '%s'", it.String())
				return r.badExpr(n.Sp)
			}
			return &Unary{exprBase: exprBase{Ty: it, Sp: n.Sp}, Op: n.Op, Operand: operand}
		}
	}
	r.errorf(diag.CatType, n.Sp,
		"operator '%s' cannot be applied to '%s'", n.Op, ot.String())
	return r.badExpr(n.Sp)
}

func unaryOperandHint(op string, h hint) hint {
	if op == "-" || op == "~" {
		if h.kind == hintType && isInteger(h.ty) {
			return h
		}
		return hint{kind: hintInteger}
	}
	return hint{}
}

// retypeConstant types a folded integer constant, honoring an integer hint
// when the value fits.
func (r *funcResolver) retypeConstant(v *big.Int, h hint, sp source.Span) Expression {
	if h.kind == hintType {
		if it, ok := Deref(h.ty).(IntegerType); ok && fitsInteger(v, it) {
			return &NumberConst{exprBase: exprBase{Ty: it, Sp: sp}, Value: v}
		}
	}
	lt, fits := literalType(v)
	if !fits {
		r.errorf(diag.CatType, sp, "literal %s needs more than 256 bits", v.String())
		return r.badExpr(sp)
	}
	return &NumberConst{exprBase: exprBase{Ty: lt, Sp: sp}, Value: v}
}

func (r *funcResolver) userOperator(op string, operand Type, arity int) *BoundOperator {
	if r.contract == nil {
		return nil
	}
	return r.contract.operatorFor(op, operand)
}

func (c *Contract) operatorFor(op string, operand Type) *BoundOperator {
	for _, b := range c.Operators {
		if b.Operator == op && SameType(b.Operand, operand) {
			return b
		}
	}
	for _, base := range c.Bases {
		if b := base.operatorFor(op, operand); b != nil {
			return b
		}
	}
	return nil
}

func (r *funcResolver) resolveBinary(n *ast.BinaryExpr, h hint) Expression {
	operandHint := hint{}
	switch n.Op {
	case "+", "-", "*", "/", "%", "**", "&", "|", "^":
		if h.kind == hintType && isInteger(h.ty) {
			operandHint = h
		} else {
			operandHint = hint{kind: hintInteger}
		}
	case "&&", "||":
		operandHint = typeHint(BoolType{})
	}

	left := r.resolveExpr(n.Left, operandHint)
	lt := Deref(left.Type())
	if IsUnresolved(lt) {
		return r.badExpr(n.Sp)
	}

	// A user-bound operator fixes the right operand's expected type.
	if bound := r.userOperator(n.Op, lt, 2); bound != nil {
		right := r.resolveExpr(n.Right, typeHint(bound.Operand))
		right = r.convert(right, bound.Operand, n.Right.Span())
		return &OperatorCall{
			exprBase: exprBase{Ty: bound.Fn.Returns[0].Type, Sp: n.Sp},
			Op:       n.Op,
			Fn:       bound.Fn,
			Args:     []Expression{left, right},
		}
	}

	rightHint := operandHint
	if rightHint.kind == hintUnknown {
		rightHint = hint{kind: hintInteger}
	}
	right := r.resolveExpr(n.Right, rightHint)
	rt := Deref(right.Type())
	if IsUnresolved(rt) {
		return r.badExpr(n.Sp)
	}

	switch n.Op {
	case "&&", "||":
		left, right = r.requireBool(left), r.requireBool(right)
		return &Binary{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}

	case "==", "!=":
		if isTextual(lt) || isTextual(rt) {
			if (isTextual(lt) && isTextual(rt)) || IsUnresolved(lt) || IsUnresolved(rt) {
				return &StringCompare{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}
			}
			r.errorf(diag.CatType, n.Sp,
				"cannot compare '%s' with '%s'", lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		common, ok := coerce(lt, rt, true)
		if !ok || !equalityComparable(common) {
			r.errorf(diag.CatType, n.Sp,
				"cannot compare '%s' with '%s'", lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		left = r.convert(left, common, n.Left.Span())
		right = r.convert(right, common, n.Right.Span())
		return &Binary{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}

	case "<", ">", "<=", ">=":
		common, ok := coerce(lt, rt, true)
		if !ok || !orderComparable(common) {
			r.errorf(diag.CatType, n.Sp,
				"cannot order '%s' against '%s'", lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		left = r.convert(left, common, n.Left.Span())
		right = r.convert(right, common, n.Right.Span())
		return &Binary{exprBase: exprBase{Ty: BoolType{}, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}

	case "<<", ">>":
		if !isInteger(lt) || !isInteger(rt) {
			r.errorf(diag.CatType, n.Sp,
				"shift needs integer operands, not '%s' and '%s'", lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		if folded := r.foldIntegers(n.Op, left, right, h, n.Sp); folded != nil {
			return folded
		}
		return &Binary{exprBase: exprBase{Ty: lt, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}

	case "&", "|", "^":
		common, ok := coerce(lt, rt, true)
		if !ok || !bitwiseCapable(common) {
			r.errorf(diag.CatType, n.Sp,
				"operator '%s' cannot combine '%s' and '%s'", n.Op, lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		if folded := r.foldIntegers(n.Op, left, right, h, n.Sp); folded != nil {
			return folded
		}
		left = r.convert(left, common, n.Left.Span())
		right = r.convert(right, common, n.Right.Span())
		return &Binary{exprBase: exprBase{Ty: common, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}

	case "+", "-", "*", "/", "%", "**":
		if folded := r.foldArithmetic(n.Op, left, right, h, n.Sp); folded != nil {
			return folded
		}
		common, ok := coerce(lt, rt, false)
		if !ok || !isNumeric(common) {
			r.errorf(diag.CatType, n.Sp,
				"operator '%s' cannot combine '%s' and '%s'", n.Op, lt.String(), rt.String())
			return r.badExpr(n.Sp)
		}
		if isRational(common) {
			r.errorf(diag.CatType, n.Sp, "rational value needs a concrete type")
			return r.badExpr(n.Sp)
		}
		left = r.convert(left, common, n.Left.Span())
		right = r.convert(right, common, n.Right.Span())
		return &Binary{exprBase: exprBase{Ty: common, Sp: n.Sp}, Op: n.Op, Left: left, Right: right}
	}

	r.errorf(diag.CatType, n.Sp, "unsupported operator '%s'", n.Op)
	return r.badExpr(n.Sp)
}

func isTextual(t Type) bool {
	switch Deref(t).(type) {
	case StringType, BytesType:
		return true
	}
	return false
}

func equalityComparable(t Type) bool {
	switch Deref(t).(type) {
	case BoolType, IntegerType, AddressType, FixedBytesType, *EnumType, *ContractType:
		return true
	case UnresolvedType:
		return true
	}
	return false
}

func orderComparable(t Type) bool {
	switch Deref(t).(type) {
	case IntegerType, FixedBytesType, RationalType, UnresolvedType:
		return true
	}
	return false
}

func bitwiseCapable(t Type) bool {
	switch Deref(t).(type) {
	case IntegerType, FixedBytesType, UnresolvedType:
		return true
	}
	return false
}

// foldArithmetic evaluates constant integer and rational arithmetic at
// compile time. It returns nil when either operand is not a constant.
func (r *funcResolver) foldArithmetic(op string, left, right Expression, h hint, sp source.Span) Expression {
	lr, lok := constRat(left)
	rr, rok := constRat(right)
	if !lok || !rok {
		return nil
	}
	_, leftInt := left.(*NumberConst)
	_, rightInt := right.(*NumberConst)
	bothInt := leftInt && rightInt

	out := new(big.Rat)
	switch op {
	case "+":
		out.Add(lr, rr)
	case "-":
		out.Sub(lr, rr)
	case "*":
		out.Mul(lr, rr)
	case "/":
		if rr.Sign() == 0 {
			r.errorf(diag.CatType, sp, "division by zero")
			return r.badExpr(sp)
		}
		if bothInt {
			q := new(big.Int).Quo(lr.Num(), rr.Num())
			return r.retypeConstant(q, h, sp)
		}
		out.Quo(lr, rr)
	case "%":
		if !bothInt {
			return nil
		}
		if rr.Sign() == 0 {
			r.errorf(diag.CatType, sp, "division by zero")
			return r.badExpr(sp)
		}
		return r.retypeConstant(new(big.Int).Rem(lr.Num(), rr.Num()), h, sp)
	case "**":
		if !rightInt || rr.Sign() < 0 || !rr.Num().IsInt64() || rr.Num().Int64() > 512 {
			return nil
		}
		exp := int(rr.Num().Int64())
		if bothInt {
			v := new(big.Int).Exp(lr.Num(), big.NewInt(int64(exp)), nil)
			return r.retypeConstant(v, h, sp)
		}
		return nil
	default:
		return nil
	}

	if bothInt {
		return r.retypeConstant(out.Num(), h, sp)
	}
	if out.IsInt() && h.kind == hintType && isInteger(h.ty) {
		return r.retypeConstant(out.Num(), h, sp)
	}
	return &RationalConst{exprBase: exprBase{Ty: RationalType{}, Sp: sp}, Value: out}
}

// foldIntegers evaluates constant shifts and bitwise combinations.
func (r *funcResolver) foldIntegers(op string, left, right Expression, h hint, sp source.Span) Expression {
	lc, lok := left.(*NumberConst)
	rc, rok := right.(*NumberConst)
	if !lok || !rok {
		return nil
	}
	out := new(big.Int)
	switch op {
	case "<<", ">>":
		if !rc.Value.IsUint64() || rc.Value.Uint64() > 256 {
			r.errorf(diag.CatType, sp, "shift amount %s is out of range", rc.Value.String())
			return r.badExpr(sp)
		}
		shift := uint(rc.Value.Uint64())
		if op == "<<" {
			out.Lsh(lc.Value, shift)
		} else {
			out.Rsh(lc.Value, shift)
		}
	case "&":
		out.And(lc.Value, rc.Value)
	case "|":
		out.Or(lc.Value, rc.Value)
	case "^":
		out.Xor(lc.Value, rc.Value)
	default:
		return nil
	}
	return r.retypeConstant(out, h, sp)
}

func constRat(e Expression) (*big.Rat, bool) {
	switch konst := e.(type) {
	case *NumberConst:
		return new(big.Rat).SetInt(konst.Value), true
	case *RationalConst:
		return konst.Value, true
	}
	return nil, false
}

func (r *funcResolver) resolveConditional(n *ast.Conditional, h hint) Expression {
	cond := r.requireBool(r.resolveExpr(n.Cond, typeHint(BoolType{})))
	truthy := r.resolveExpr(n.True, h)
	falsy := r.resolveExpr(n.False, h)

	common, ok := coerce(truthy.Type(), falsy.Type(), true)
	if !ok {
		r.errorf(diag.CatType, n.Sp,
			"conditional branches have incompatible types '%s' and '%s'",
			Deref(truthy.Type()).String(), Deref(falsy.Type()).String())
		return r.badExpr(n.Sp)
	}
	if isRational(common) {
		if h.kind == hintType && isInteger(h.ty) {
			common = Deref(h.ty)
		} else {
			r.errorf(diag.CatType, n.Sp, "rational value needs a concrete type")
			return r.badExpr(n.Sp)
		}
	}
	truthy = r.convert(truthy, common, n.True.Span())
	falsy = r.convert(falsy, common, n.False.Span())
	return &ConditionalExpr{
		exprBase: exprBase{Ty: common, Sp: n.Sp},
		Cond:     cond,
		True:     truthy,
		False:    falsy,
	}
}

func (r *funcResolver) resolveAssign(n *ast.AssignExpr) Expression {
	compound := n.Op != "="
	target := r.resolveAssignTarget(n.Target, compound)
	tt := target.Type()

	if sr, ok := tt.(StorageRefType); ok && sr.Immutable {
		r.errorf(diag.CatType, n.Target.Span(), "cannot assign to a constant")
		return r.badExpr(n.Sp)
	}
	if !isAssignable(target) && !IsUnresolved(tt) {
		r.errorf(diag.CatType, n.Target.Span(), "expression is not assignable")
		return r.badExpr(n.Sp)
	}

	valueType := Deref(tt)
	value := r.resolveExpr(n.Value, typeHint(valueType))

	if compound {
		op := n.Op[:len(n.Op)-1]
		switch op {
		case "<<", ">>":
			if !isInteger(valueType) && !IsUnresolved(valueType) {
				r.errorf(diag.CatType, n.Sp,
					"operator '%s' needs an integer target", n.Op)
				return r.badExpr(n.Sp)
			}
			if !isInteger(value.Type()) && !IsUnresolved(value.Type()) {
				r.errorf(diag.CatType, n.Value.Span(),
					"shift amount must be an integer")
				return r.badExpr(n.Sp)
			}
		case "&", "|", "^":
			if !bitwiseCapable(valueType) {
				r.errorf(diag.CatType, n.Sp,
					"operator '%s' cannot apply to '%s'", n.Op, valueType.String())
				return r.badExpr(n.Sp)
			}
			value = r.convert(value, valueType, n.Value.Span())
		default:
			if !isNumeric(valueType) && !IsUnresolved(valueType) {
				r.errorf(diag.CatType, n.Sp,
					"operator '%s' cannot apply to '%s'", n.Op, valueType.String())
				return r.badExpr(n.Sp)
			}
			value = r.convert(value, valueType, n.Value.Span())
		}
	} else {
		value = r.convert(r.concreteType(value), valueType, n.Value.Span())
	}

	return &Assign{exprBase: exprBase{Ty: VoidType{}, Sp: n.Sp}, Op: n.Op, Target: target, Value: value}
}

// resolveAssignTarget resolves the left side of an assignment. A plain
// identifier target marks the binding assigned rather than read; compound
// assignment reads it as well.
func (r *funcResolver) resolveAssignTarget(e ast.Expression, compound bool) Expression {
	if id, ok := e.(*ast.IdentExpr); ok {
		if local := r.st.lookup(id.Name); local != nil {
			local.Assigned = true
			if compound {
				local.Read = true
			}
			return &LocalRef{exprBase: exprBase{Ty: local.Type, Sp: id.Sp}, Local: local}
		}
		if r.contract != nil {
			if v := r.contract.VariableByName(id.Name); v != nil {
				v.Assigned = true
				if compound {
					v.Read = true
				}
				ty := StorageRefType{Elem: v.Type, Immutable: v.Constant}
				return &StateRef{exprBase: exprBase{Ty: ty, Sp: id.Sp}, Variable: v}
			}
		}
	}
	target := r.resolveExpr(e, hint{})
	markAssigned(target)
	return target
}

// markAssigned records a write through an element or field access on the
// underlying binding.
func markAssigned(e Expression) {
	switch n := e.(type) {
	case *LocalRef:
		n.Local.Assigned = true
	case *StateRef:
		n.Variable.Assigned = true
	case *FieldAccess:
		markAssigned(n.Target)
	case *ArrayIndex:
		markAssigned(n.Target)
	case *MappingIndex:
		markAssigned(n.Target)
	}
}

func isAssignable(e Expression) bool {
	switch n := e.(type) {
	case *LocalRef, *StateRef, *MappingIndex:
		return true
	case *ArrayIndex:
		return isAssignable(n.Target)
	case *FieldAccess:
		return isAssignable(n.Target)
	case *BadExpr:
		return true
	}
	return false
}
