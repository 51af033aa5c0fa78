package sema

import (
	"fmt"

	"silica/internal/diag"
	"silica/internal/source"
)

// funcResolver resolves one function body. The diagnostics sink is swappable
// so overload candidates can be tried against scratch bags and only the
// winning or relevant diagnostics survive.
type funcResolver struct {
	a        *analyzer
	fn       *Function
	contract *Contract
	st       *symTable
	bag      *diag.Bag
}

func (a *analyzer) resolveBodies() {
	for _, fn := range a.ns.Functions {
		a.resolveBody(fn, nil)
	}
	for _, c := range a.ns.Contracts {
		for _, v := range c.Variables {
			a.resolveStateInit(c, v)
		}
		if c.Ctor != nil {
			a.resolveBody(c.Ctor, c)
		}
		for _, fn := range c.Functions {
			a.resolveBody(fn, c)
		}
	}
}

// resolveStateInit checks a state variable initializer against the declared
// type. Initializers run in a constructor-like context with no locals.
func (a *analyzer) resolveStateInit(c *Contract, v *Variable) {
	if v.Def.Init == nil {
		if v.Constant {
			a.errorf(diag.CatDeclaration, v.Def.Name.Sp,
				"constant '%s' needs an initializer", v.Name)
		}
		return
	}
	r := &funcResolver{a: a, contract: c, st: newSymTable(), bag: a.bag}
	r.st.push(false)
	init := r.resolveExpr(v.Def.Init, typeHint(v.Type))
	v.Init = r.convert(init, v.Type, v.Def.Init.Span())
	v.Assigned = true
	r.st.pop()
}

func (a *analyzer) resolveBody(fn *Function, c *Contract) {
	if fn.Def.Body == nil {
		return
	}
	r := &funcResolver{a: a, fn: fn, contract: c, st: newSymTable(), bag: a.bag}
	r.st.push(false)
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		local, _, _ := r.st.declare(p.Name, p.Type, p.Span)
		local.IsParam = true
		local.Assigned = true
	}
	allNamed := len(fn.Returns) > 0
	var namedReturns []*Local
	for _, ret := range fn.Returns {
		if ret.Name == "" {
			allNamed = false
			continue
		}
		local, _, _ := r.st.declare(ret.Name, ret.Type, ret.Span)
		local.IsParam = true
		namedReturns = append(namedReturns, local)
	}

	body := r.resolveBlock(fn.Def.Body)

	if body.ReachableEnd && len(fn.Returns) > 0 {
		if allNamed {
			// With every return slot named, falling off the end returns the
			// current values of the named variables.
			values := make([]Expression, len(namedReturns))
			for i, local := range namedReturns {
				local.Read = true
				values[i] = &LocalRef{exprBase: exprBase{Ty: local.Type, Sp: body.Sp}, Local: local}
			}
			body.Stmts = append(body.Stmts, &Return{
				stmtBase: stmtBase{Sp: source.Span{File: body.Sp.File, Start: body.Sp.End, End: body.Sp.End}},
				Values:   values,
			})
			body.ReachableEnd = false
		} else {
			what := fmt.Sprintf("function '%s'", fn.Name)
			if fn.IsConstructor {
				what = "a constructor"
			}
			r.errorf(diag.CatType, fn.Def.Sp,
				"%s can reach the end of its body without returning", what)
		}
	}

	r.reportUnusedLocals(r.st.pop())
	fn.Body = body
}

func (r *funcResolver) reportUnusedLocals(locals []*Local) {
	for _, l := range locals {
		if l.IsParam || l.Name == "" || l.Name[0] == '_' {
			continue
		}
		if !l.Read {
			r.warnf(l.Span, "local variable '%s' is never read", l.Name)
		}
	}
}

func (r *funcResolver) errorf(cat diag.Category, sp source.Span, format string, args ...any) {
	r.bag.Add(diag.Error(cat, sp, fmt.Sprintf(format, args...)))
}

func (r *funcResolver) warnf(sp source.Span, format string, args ...any) {
	r.bag.Add(diag.Warning(sp, fmt.Sprintf(format, args...)))
}

func (r *funcResolver) badExpr(sp source.Span) Expression {
	return &BadExpr{exprBase{Ty: UnresolvedType{}, Sp: sp}}
}

// convert coerces e to the expected type, inserting an implicit cast node
// when a representation change is needed. Integer constants retype in place
// when they fit.
func (r *funcResolver) convert(e Expression, to Type, sp source.Span) Expression {
	if e == nil {
		return r.badExpr(sp)
	}
	from := e.Type()
	if IsUnresolved(from) || to == nil || IsUnresolved(to) {
		return e
	}

	switch konst := e.(type) {
	case *NumberConst:
		if ti, ok := Deref(to).(IntegerType); ok {
			if !fitsInteger(konst.Value, ti) {
				r.errorf(diag.CatType, e.Span(),
					"literal %s does not fit in '%s'", konst.Value.String(), ti.String())
				return r.badExpr(sp)
			}
			konst.Ty = ti
			return konst
		}
	case *RationalConst:
		if ti, ok := Deref(to).(IntegerType); ok {
			if !konst.Value.IsInt() {
				r.errorf(diag.CatType, e.Span(),
					"rational value %s cannot implicitly become '%s'", konst.Value.RatString(), ti.String())
				return r.badExpr(sp)
			}
			return r.convert(&NumberConst{
				exprBase: exprBase{Ty: RationalType{}, Sp: konst.Sp},
				Value:    konst.Value.Num(),
			}, to, sp)
		}
	case *StringConst:
		// String literals double as bytes literals.
		if _, ok := Deref(to).(BytesType); ok {
			konst.Ty = BytesType{}
			return konst
		}
	}

	if isRational(from) {
		r.errorf(diag.CatType, e.Span(),
			"rational value needs an explicit conversion to '%s'", to.String())
		return r.badExpr(sp)
	}

	if SameType(from, to) && implicitCast(from, to) {
		return e
	}
	if implicitCast(from, to) {
		return &Cast{exprBase: exprBase{Ty: Deref(to), Sp: e.Span()}, Value: e, Implicit: true}
	}

	d := diag.Error(diag.CatType, sp,
		fmt.Sprintf("cannot implicitly convert '%s' to '%s'", Deref(from).String(), Deref(to).String()))
	if ok, _ := explicitCast(from, to, r.a.tgt); ok {
		d = d.WithNote(sp, fmt.Sprintf("an explicit cast %s(...) is allowed", Deref(to).String()))
	}
	r.bag.Add(d)
	return r.badExpr(sp)
}

// requireBool converts a condition expression to bool.
func (r *funcResolver) requireBool(e Expression) Expression {
	return r.convert(e, BoolType{}, e.Span())
}

// constBool reports whether e is the constant true.
func constTrue(e Expression) bool {
	b, ok := e.(*BoolConst)
	return ok && b.Value
}

// concreteType forces hint-free expressions out of the compile-time rational
// domain; use sites that store or pass a value call it.
func (r *funcResolver) concreteType(e Expression) Expression {
	if isRational(e.Type()) {
		if konst, ok := e.(*RationalConst); ok && konst.Value.IsInt() {
			num := konst.Value.Num()
			if lt, fits := literalType(num); fits {
				return &NumberConst{exprBase: exprBase{Ty: lt, Sp: konst.Sp}, Value: num}
			}
		}
		r.errorf(diag.CatType, e.Span(), "rational value needs a concrete type")
		return r.badExpr(e.Span())
	}
	return e
}
