package sema

import (
	"fmt"
	"strings"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/source"
	"silica/internal/target"
)

// callShape is the unresolved argument list of one call expression. Exactly
// one of args/named is populated; receiver, when set, binds to the first
// parameter ahead of the written arguments.
type callShape struct {
	args     []ast.Expression
	named    []*ast.NamedArg
	receiver Expression
	span     source.Span
}

func shapeOf(n *ast.CallExpr) callShape {
	return callShape{args: n.Args, named: n.NamedArgs, span: n.Sp}
}

// candidate is one callable a call could bind to: a declared function or a
// builtin shape.
type candidate struct {
	fn      *Function
	builtin *Builtin
	params  []Type
	// names aligns with params; empty entries cannot be bound by name.
	names  []string
	result Type
}

func functionCandidate(fn *Function) *candidate {
	c := &candidate{fn: fn, result: fn.singleReturn()}
	for _, p := range fn.Params {
		c.params = append(c.params, p.Type)
		c.names = append(c.names, p.Name)
	}
	return c
}

func builtinCandidate(b *Builtin) *candidate {
	c := &candidate{builtin: b, result: b.Result}
	for _, p := range b.Params {
		c.params = append(c.params, p)
		c.names = append(c.names, "")
	}
	return c
}

func (c *candidate) signature(name string) string {
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

// tryBind resolves the call arguments against one candidate's parameter
// list. All diagnostics of the attempt land in the returned scratch bag; the
// bind failed if the scratch holds errors.
func (r *funcResolver) tryBind(c *candidate, shape callShape) ([]Expression, *diag.Bag) {
	scratch := diag.NewBag()
	outer := r.bag
	r.bag = scratch
	defer func() { r.bag = outer }()

	params := c.params
	resolved := make([]Expression, len(params))
	next := 0

	if shape.receiver != nil {
		if len(params) == 0 {
			r.errorf(diag.CatType, shape.span, "this function takes no receiver")
			return resolved, scratch
		}
		resolved[0] = r.convert(shape.receiver, params[0], shape.span)
		next = 1
	}

	if len(shape.named) > 0 {
		r.bindNamed(c, shape, resolved, next)
		return resolved, scratch
	}

	want := len(params) - next
	if len(shape.args) != want {
		r.errorf(diag.CatType, shape.span,
			"expected %d argument(s), got %d", want, len(shape.args))
		return resolved, scratch
	}
	for i, raw := range shape.args {
		param := params[next+i]
		arg := r.resolveExpr(raw, typeHint(param))
		resolved[next+i] = r.convert(arg, param, raw.Span())
	}
	return resolved, scratch
}

func (r *funcResolver) bindNamed(c *candidate, shape callShape, resolved []Expression, next int) {
	if c.builtin != nil {
		r.errorf(diag.CatType, shape.span, "builtins cannot take named arguments")
		return
	}
	for i := next; i < len(c.names); i++ {
		if c.names[i] == "" {
			r.errorf(diag.CatType, shape.span,
				"this function has unnamed parameters and cannot be called with named arguments")
			return
		}
	}
	byName := map[string]int{}
	for i := next; i < len(c.names); i++ {
		if c.names[i] != "" {
			byName[c.names[i]] = i
		}
	}
	bound := map[int]bool{}
	for _, na := range shape.named {
		idx, ok := byName[na.Name.Name]
		if !ok {
			r.errorf(diag.CatType, na.Name.Sp, "no parameter named '%s'", na.Name.Name)
			continue
		}
		if bound[idx] {
			r.errorf(diag.CatType, na.Name.Sp, "argument '%s' given twice", na.Name.Name)
			continue
		}
		bound[idx] = true
		arg := r.resolveExpr(na.Value, typeHint(c.params[idx]))
		resolved[idx] = r.convert(arg, c.params[idx], na.Value.Span())
	}
	for i := next; i < len(c.params); i++ {
		if !bound[i] {
			r.errorf(diag.CatType, shape.span,
				"missing argument '%s'", c.names[i])
		}
	}
}

// chooseOverload applies the overload outcome policy:
//   - a single candidate reports its own diagnostics directly;
//   - with several candidates, exactly one clean bind wins silently;
//   - none binding gives one generic mismatch error with the candidate
//     signatures as notes;
//   - several binding is an ambiguity error.
func (r *funcResolver) chooseOverload(name string, sp source.Span, candidates []*candidate, shape callShape) (*candidate, []Expression, bool) {
	type attempt struct {
		cand    *candidate
		args    []Expression
		scratch *diag.Bag
	}
	var successes, failures []attempt
	for _, c := range candidates {
		args, scratch := r.tryBind(c, shape)
		at := attempt{cand: c, args: args, scratch: scratch}
		if scratch.HasErrors() {
			failures = append(failures, at)
		} else {
			successes = append(successes, at)
		}
	}

	switch {
	case len(candidates) == 1 && len(successes) == 0:
		r.bag.Extend(failures[0].scratch.Items())
		return nil, nil, false
	case len(successes) == 1:
		r.bag.Extend(successes[0].scratch.Items())
		return successes[0].cand, successes[0].args, true
	case len(successes) == 0:
		d := diag.Error(diag.CatType, sp,
			fmt.Sprintf("no overload of '%s' matches this call", name))
		for _, at := range failures {
			d = d.WithNote(candidateSpan(at.cand, sp), "candidate: "+at.cand.signature(name))
		}
		r.bag.Add(d)
		return nil, nil, false
	default:
		d := diag.Error(diag.CatAmbiguity, sp,
			fmt.Sprintf("call of '%s' is ambiguous", name))
		for _, at := range successes {
			d = d.WithNote(candidateSpan(at.cand, sp), "matches: "+at.cand.signature(name))
		}
		r.bag.Add(d)
		return nil, nil, false
	}
}

func candidateSpan(c *candidate, fallback source.Span) source.Span {
	if c.fn != nil && c.fn.Def != nil {
		if c.fn.Def.Name != nil {
			return c.fn.Def.Name.Sp
		}
		return c.fn.Def.Sp
	}
	return fallback
}

func (r *funcResolver) resolveCall(n *ast.CallExpr, h hint) Expression {
	if newExpr, ok := n.Callee.(*ast.NewExpr); ok {
		return r.resolveConstructorCall(n, newExpr)
	}

	if member, ok := n.Callee.(*ast.MemberAccess); ok {
		return r.resolveMemberCall(n, member)
	}

	if id, ok := n.Callee.(*ast.IdentExpr); ok {
		return r.resolveNamedCall(n, id)
	}

	callee := r.resolveExpr(n.Callee, hint{})
	return r.resolvePointerCall(n, callee)
}

// resolveNamedCall dispatches a bare-identifier call: pointer-typed locals
// first, then type conversions and struct construction, then declared
// functions, then builtins.
func (r *funcResolver) resolveNamedCall(n *ast.CallExpr, id *ast.IdentExpr) Expression {
	if local := r.st.lookup(id.Name); local != nil {
		local.Read = true
		callee := &LocalRef{exprBase: exprBase{Ty: local.Type, Sp: id.Sp}, Local: local}
		return r.resolvePointerCall(n, callee)
	}
	if r.contract != nil {
		if v := r.contract.VariableByName(id.Name); v != nil {
			v.Read = true
			ty := StorageRefType{Elem: v.Type, Immutable: v.Constant}
			callee := &StateRef{exprBase: exprBase{Ty: ty, Sp: id.Sp}, Variable: v}
			return r.resolvePointerCall(n, callee)
		}
	}

	if ty := elementaryByName(id.Name); ty != nil {
		return r.resolveCast(n, ty)
	}

	var userDecl any
	if r.contract != nil {
		userDecl = r.contract.memberDecl(id.Name)
	}
	if userDecl == nil {
		userDecl = r.a.ns.lookup(id.Name)
	}
	switch d := userDecl.(type) {
	case *Struct:
		return r.resolveStructLit(n, d)
	case *Enum:
		return r.resolveCast(n, &EnumType{Decl: d})
	case *Contract:
		return r.resolveCast(n, &ContractType{Decl: d})
	case *Event:
		r.errorf(diag.CatType, id.Sp, "event '%s' can only be used in an emit statement", id.Name)
		return r.badExpr(n.Sp)
	}

	var candidates []*candidate
	if r.contract != nil {
		for _, fn := range r.contract.FunctionsNamed(id.Name) {
			candidates = append(candidates, functionCandidate(fn))
		}
	}
	if len(candidates) == 0 {
		for _, fn := range r.a.ns.freeFunctionsNamed(id.Name) {
			candidates = append(candidates, functionCandidate(fn))
		}
	}
	if len(candidates) > 0 {
		if n.CallArgs != nil {
			r.errorf(diag.CatType, n.Sp, "call options only apply to external calls and construction")
		}
		cand, args, ok := r.chooseOverload(id.Name, n.Sp, candidates, shapeOf(n))
		if !ok {
			return r.badExpr(n.Sp)
		}
		return &InternalCall{
			exprBase: exprBase{Ty: cand.result, Sp: n.Sp},
			Fn:       cand.fn,
			Args:     args,
		}
	}

	matches, elsewhere := lookupBuiltins("", id.Name, r.a.tgt)
	if len(matches) > 0 {
		for _, b := range matches {
			candidates = append(candidates, builtinCandidate(b))
		}
		cand, args, ok := r.chooseOverload(id.Name, n.Sp, candidates, shapeOf(n))
		if !ok {
			return r.badExpr(n.Sp)
		}
		return &BuiltinCall{
			exprBase: exprBase{Ty: cand.result, Sp: n.Sp},
			Builtin:  cand.builtin,
			Args:     args,
		}
	}
	if elsewhere {
		r.errorf(diag.CatTarget, id.Sp,
			"'%s' is not available on target %s", id.Name, r.a.tgt)
		return r.badExpr(n.Sp)
	}

	r.errorf(diag.CatDeclaration, id.Sp, "unknown function '%s'", id.Name)
	return r.badExpr(n.Sp)
}

// resolveMemberCall handles x.f(...): external contract calls and library
// methods bound with using directives.
func (r *funcResolver) resolveMemberCall(n *ast.CallExpr, member *ast.MemberAccess) Expression {
	if space, ok := r.isBuiltinNamespaceIdent(member.Target); ok {
		r.errorf(diag.CatType, n.Sp, "'%s.%s' is a value, not a function", space, member.Member.Name)
		return r.badExpr(n.Sp)
	}

	receiver := r.resolveExpr(member.Target, hint{})
	if IsUnresolved(receiver.Type()) {
		return r.badExpr(n.Sp)
	}

	if ct, ok := Deref(receiver.Type()).(*ContractType); ok {
		return r.resolveExternalCall(n, member, receiver, ct.Decl)
	}

	// Library methods bound to the receiver type.
	if r.contract != nil {
		var candidates []*candidate
		for _, bound := range r.contract.Libraries {
			if !SameType(bound.Operand, receiver.Type()) {
				continue
			}
			for _, fn := range bound.Library.FunctionsNamed(member.Member.Name) {
				if len(fn.Params) > 0 {
					candidates = append(candidates, functionCandidate(fn))
				}
			}
		}
		if len(candidates) > 0 {
			if n.CallArgs != nil {
				r.errorf(diag.CatType, n.Sp, "call options only apply to external calls and construction")
			}
			shape := shapeOf(n)
			shape.receiver = receiver
			cand, args, ok := r.chooseOverload(member.Member.Name, n.Sp, candidates, shape)
			if !ok {
				return r.badExpr(n.Sp)
			}
			return &LibraryCall{
				exprBase: exprBase{Ty: cand.result, Sp: n.Sp},
				Fn:       cand.fn,
				Receiver: args[0],
				Args:     args[1:],
			}
		}
	}

	// Fall back to a member value with a function pointer type.
	callee := r.resolveMember(member)
	return r.resolvePointerCall(n, callee)
}

func (r *funcResolver) resolveExternalCall(n *ast.CallExpr, member *ast.MemberAccess, receiver Expression, contract *Contract) Expression {
	fns := externallyVisible(contract.FunctionsNamed(member.Member.Name))
	if len(fns) == 0 {
		if len(contract.FunctionsNamed(member.Member.Name)) > 0 {
			r.errorf(diag.CatType, member.Member.Sp,
				"function '%s' of contract '%s' is not visible externally",
				member.Member.Name, contract.Name)
		} else {
			r.errorf(diag.CatDeclaration, member.Member.Sp,
				"contract '%s' has no function '%s'", contract.Name, member.Member.Name)
		}
		return r.badExpr(n.Sp)
	}

	candidates := make([]*candidate, len(fns))
	for i, fn := range fns {
		candidates[i] = functionCandidate(fn)
	}
	cand, args, ok := r.chooseOverload(member.Member.Name, n.Sp, candidates, shapeOf(n))
	if !ok {
		return r.badExpr(n.Sp)
	}

	options := r.resolveCallOptions(n.CallArgs)
	r.checkValueOption(options, cand.fn.Mutability, n.Sp)

	return &ExternalCall{
		exprBase: exprBase{Ty: cand.result, Sp: n.Sp},
		Receiver: receiver,
		Fn:       cand.fn,
		Args:     args,
		CallArgs: options,
	}
}

func (r *funcResolver) resolveConstructorCall(n *ast.CallExpr, newExpr *ast.NewExpr) Expression {
	ty := r.a.typeFromAST(newExpr.Type, r.contract)
	ct, ok := Deref(ty).(*ContractType)
	if !ok {
		if !IsUnresolved(ty) {
			r.errorf(diag.CatType, newExpr.Sp,
				"'new' constructs contracts; '%s' is not a contract", ty.String())
		}
		return r.badExpr(n.Sp)
	}
	created := ct.Decl

	if r.a.tgt.RequiresProgramID() && created.ProgramID == "" {
		r.bag.Add(diag.Error(diag.CatTarget, newExpr.Sp,
			fmt.Sprintf("constructing '%s' on target %s requires a @program_id annotation",
				created.Name, r.a.tgt)).
			WithNote(created.Def.Name.Sp, "contract is declared here"))
	}

	if current := r.contract; current != nil {
		if created == current {
			r.errorf(diag.CatDeclaration, newExpr.Sp,
				"contract '%s' cannot construct itself", created.Name)
		} else if created.creates(current, map[*Contract]bool{}) {
			r.bag.Add(diag.Error(diag.CatDeclaration, newExpr.Sp,
				fmt.Sprintf("circular construction: '%s' transitively creates '%s'",
					created.Name, current.Name)).
				WithNote(created.Def.Name.Sp, "counterpart contract is declared here"))
		} else {
			already := false
			for _, c := range current.Creates {
				if c == created {
					already = true
					break
				}
			}
			if !already {
				current.Creates = append(current.Creates, created)
			}
		}
	}

	cand := &candidate{result: ct}
	if created.Ctor != nil {
		cand = functionCandidate(created.Ctor)
		cand.result = ct
	}
	args, scratch := r.tryBind(cand, shapeOf(n))
	r.bag.Extend(scratch.Items())
	if scratch.HasErrors() {
		return r.badExpr(n.Sp)
	}

	options := r.resolveCallOptions(n.CallArgs)
	ctorMut := ast.MutNonpayable
	if created.Ctor != nil {
		ctorMut = created.Ctor.Mutability
	}
	r.checkValueOption(options, ctorMut, n.Sp)

	return &ConstructorCall{
		exprBase: exprBase{Ty: ct, Sp: n.Sp},
		Contract: created,
		Args:     args,
		CallArgs: options,
	}
}

// resolveCast handles T(x) for every named or elementary type T.
func (r *funcResolver) resolveCast(n *ast.CallExpr, to Type) Expression {
	if len(n.NamedArgs) > 0 || len(n.Args) != 1 {
		r.errorf(diag.CatCast, n.Sp, "type conversion takes exactly one argument")
		return r.badExpr(n.Sp)
	}
	if n.CallArgs != nil {
		r.errorf(diag.CatType, n.Sp, "call options only apply to external calls and construction")
	}
	value := r.resolveExpr(n.Args[0], hint{})
	from := value.Type()
	if IsUnresolved(from) {
		return r.badExpr(n.Sp)
	}

	// A constant retypes in place when it fits the destination.
	if konst, ok := value.(*NumberConst); ok {
		if ti, isInt := Deref(to).(IntegerType); isInt {
			if fitsInteger(konst.Value, ti) {
				konst.Ty = ti
				return konst
			}
			r.warnf(n.Sp, "conversion truncates constant %s to '%s'", konst.Value.String(), ti.String())
			return &Cast{exprBase: exprBase{Ty: Deref(to), Sp: n.Sp}, Value: value, Truncates: true}
		}
	}

	ok, truncates := explicitCast(from, to, r.a.tgt)
	if !ok {
		r.errorf(diag.CatCast, n.Sp,
			"cannot convert '%s' to '%s'", Deref(from).String(), Deref(to).String())
		return r.badExpr(n.Sp)
	}
	if truncates {
		r.warnf(n.Sp, "conversion from '%s' to '%s' can truncate",
			Deref(from).String(), Deref(to).String())
	}
	return &Cast{exprBase: exprBase{Ty: Deref(to), Sp: n.Sp}, Value: value, Truncates: truncates}
}

// resolveStructLit handles construction by call syntax, positional or named.
func (r *funcResolver) resolveStructLit(n *ast.CallExpr, s *Struct) Expression {
	if n.CallArgs != nil {
		r.errorf(diag.CatType, n.Sp, "call options only apply to external calls and construction")
	}
	cand := &candidate{result: &StructType{Decl: s}}
	for _, f := range s.Fields {
		cand.params = append(cand.params, f.Type)
		cand.names = append(cand.names, f.Name)
	}
	args, scratch := r.tryBind(cand, shapeOf(n))
	r.bag.Extend(scratch.Items())
	if scratch.HasErrors() {
		return r.badExpr(n.Sp)
	}
	return &StructLit{
		exprBase: exprBase{Ty: &StructType{Decl: s}, Sp: n.Sp},
		Struct:   s,
		Values:   args,
	}
}

func (r *funcResolver) resolvePointerCall(n *ast.CallExpr, callee Expression) Expression {
	if IsUnresolved(callee.Type()) {
		return r.badExpr(n.Sp)
	}

	// Calling a single-function reference is a direct call.
	if ref, ok := callee.(*FuncRef); ok && !ref.External {
		cand := functionCandidate(ref.Fn)
		args, scratch := r.tryBind(cand, shapeOf(n))
		r.bag.Extend(scratch.Items())
		if scratch.HasErrors() {
			return r.badExpr(n.Sp)
		}
		return &InternalCall{exprBase: exprBase{Ty: cand.result, Sp: n.Sp}, Fn: ref.Fn, Args: args}
	}

	ft, ok := Deref(callee.Type()).(*FunctionType)
	if !ok {
		r.errorf(diag.CatType, n.Sp,
			"'%s' is not callable", Deref(callee.Type()).String())
		return r.badExpr(n.Sp)
	}
	if n.CallArgs != nil && !ft.External {
		r.errorf(diag.CatType, n.Sp, "call options only apply to external calls and construction")
	}

	cand := &candidate{params: ft.Params, names: make([]string, len(ft.Params))}
	switch len(ft.Returns) {
	case 0:
		cand.result = VoidType{}
	case 1:
		cand.result = ft.Returns[0]
	default:
		cand.result = VoidType{}
	}
	args, scratch := r.tryBind(cand, shapeOf(n))
	r.bag.Extend(scratch.Items())
	if scratch.HasErrors() {
		return r.badExpr(n.Sp)
	}
	return &PointerCall{exprBase: exprBase{Ty: cand.result, Sp: n.Sp}, Callee: callee, Args: args}
}

// resolveCallOptions checks a {value: ..., gas: ...} block against the
// target's supported keys and types each value.
func (r *funcResolver) resolveCallOptions(entries []*ast.CallArgEntry) []ResolvedCallArg {
	var out []ResolvedCallArg
	seen := map[target.CallArg]bool{}
	for _, entry := range entries {
		kind, ok := target.ParseCallArg(entry.Name.Name)
		if !ok {
			r.errorf(diag.CatType, entry.Name.Sp,
				"unknown call option '%s'", entry.Name.Name)
			continue
		}
		if !r.a.tgt.SupportsCallArg(kind) {
			r.errorf(diag.CatTarget, entry.Name.Sp,
				"call option '%s' is not available on target %s", kind, r.a.tgt)
			continue
		}
		if seen[kind] {
			r.errorf(diag.CatType, entry.Name.Sp,
				"call option '%s' given twice", kind)
			continue
		}
		seen[kind] = true

		want := callOptionType(kind)
		value := r.resolveExpr(entry.Value, typeHint(want))
		out = append(out, ResolvedCallArg{Kind: kind, Value: r.convert(value, want, entry.Value.Span())})
	}
	return out
}

func callOptionType(kind target.CallArg) Type {
	switch kind {
	case target.CallArgValue:
		return IntegerType{Bits: 256}
	case target.CallArgGas:
		return IntegerType{Bits: 64}
	case target.CallArgSalt:
		return FixedBytesType{Length: 32}
	case target.CallArgAccounts:
		return ArrayType{Elem: AddressType{}, Length: DynamicLength}
	}
	return UnresolvedType{}
}

// checkValueOption rejects sending value to a non-payable callee.
func (r *funcResolver) checkValueOption(options []ResolvedCallArg, mut ast.Mutability, sp source.Span) {
	for _, opt := range options {
		if opt.Kind == target.CallArgValue && mut != ast.MutPayable {
			r.errorf(diag.CatType, sp, "cannot send value to a non-payable function")
		}
	}
}
