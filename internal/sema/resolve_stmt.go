package sema

import (
	"fmt"

	"silica/internal/ast"
	"silica/internal/diag"
)

// resolveBlock resolves statements in a fresh scope until the end of the
// block or a terminal statement. Anything written after a terminal statement
// is reported once as unreachable and not resolved further.
func (r *funcResolver) resolveBlock(b *ast.Block) *Block {
	r.st.push(false)
	block := r.resolveStmtsInto(b)
	r.reportUnusedLocals(r.st.pop())
	return block
}

// resolveLoopBody is resolveBlock with a loop scope, so break and continue
// inside bind to this loop and count against it.
func (r *funcResolver) resolveLoopBody(b *ast.Block) (*Block, int) {
	r.st.push(true)
	block := r.resolveStmtsInto(b)
	breaks := r.st.loopBreaks()
	r.reportUnusedLocals(r.st.pop())
	return block, breaks
}

func (r *funcResolver) resolveStmtsInto(b *ast.Block) *Block {
	block := &Block{stmtBase: stmtBase{Sp: b.Sp}, ReachableEnd: true}
	for _, raw := range b.Stmts {
		if !block.ReachableEnd {
			r.errorf(diag.CatType, raw.Span(), "unreachable code")
			break
		}
		stmt := r.resolveStmt(raw)
		if stmt == nil {
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
		if terminal(stmt) {
			block.ReachableEnd = false
		}
	}
	return block
}

// terminal reports whether control never continues past the statement.
func terminal(s Statement) bool {
	switch n := s.(type) {
	case *Return, *Break, *Continue:
		return true
	case *ExprStatement:
		_, unreachable := Deref(n.Expr.Type()).(UnreachableType)
		return unreachable
	case *Block:
		return !n.ReachableEnd
	case *If:
		if n.Else == nil {
			return false
		}
		return terminal(n.Then) && terminal(n.Else)
	case *While:
		return n.CondConstTrue && n.Breaks == 0
	case *DoWhile:
		return n.CondConstTrue && n.Breaks == 0
	case *For:
		return n.CondConstTrue && n.Breaks == 0
	case *TryCatch:
		if n.Success.ReachableEnd {
			return false
		}
		for _, c := range n.Catches {
			if c.Body.ReachableEnd {
				return false
			}
		}
		return true
	}
	return false
}

func (r *funcResolver) resolveStmt(s ast.Statement) Statement {
	switch n := s.(type) {
	case *ast.DeclStmt:
		return r.resolveDecl(n)
	case *ast.ExprStmt:
		expr := r.resolveExpr(n.Expr, hint{kind: hintDiscard})
		return &ExprStatement{stmtBase: stmtBase{Sp: n.Sp}, Expr: expr}
	case *ast.Block:
		return r.resolveBlock(n)
	case *ast.IfStmt:
		return r.resolveIf(n)
	case *ast.WhileStmt:
		cond := r.requireBool(r.resolveExpr(n.Cond, typeHint(BoolType{})))
		body, breaks := r.resolveLoopBody(n.Body)
		return &While{
			stmtBase:      stmtBase{Sp: n.Sp},
			Cond:          cond,
			Body:          body,
			CondConstTrue: constTrue(cond),
			Breaks:        breaks,
		}
	case *ast.DoWhileStmt:
		body, breaks := r.resolveLoopBody(n.Body)
		cond := r.requireBool(r.resolveExpr(n.Cond, typeHint(BoolType{})))
		return &DoWhile{
			stmtBase:      stmtBase{Sp: n.Sp},
			Body:          body,
			Cond:          cond,
			CondConstTrue: constTrue(cond),
			Breaks:        breaks,
		}
	case *ast.ForStmt:
		return r.resolveFor(n)
	case *ast.ReturnStmt:
		return r.resolveReturn(n)
	case *ast.BreakStmt:
		if !r.st.inLoop() {
			r.errorf(diag.CatType, n.Sp, "break outside of a loop")
			return nil
		}
		r.st.noteBreak()
		return &Break{stmtBase{Sp: n.Sp}}
	case *ast.ContinueStmt:
		if !r.st.inLoop() {
			r.errorf(diag.CatType, n.Sp, "continue outside of a loop")
			return nil
		}
		r.st.noteContinue()
		return &Continue{stmtBase{Sp: n.Sp}}
	case *ast.EmitStmt:
		return r.resolveEmit(n)
	case *ast.TryCatchStmt:
		return r.resolveTryCatch(n)
	}
	return nil
}

func (r *funcResolver) resolveDecl(n *ast.DeclStmt) Statement {
	ty := r.a.typeFromAST(n.Type, r.contract)
	if _, isMapping := Deref(ty).(MappingType); isMapping {
		r.errorf(diag.CatType, n.Type.Span(), "mappings only live in contract storage")
		ty = UnresolvedType{}
	}

	var init Expression
	if n.Init != nil {
		init = r.convert(r.resolveExpr(n.Init, typeHint(ty)), ty, n.Init.Span())
	}

	local, shadowed, sameScope := r.st.declare(n.Name.Name, ty, n.Name.Sp)
	if shadowed != nil {
		if sameScope {
			r.bag.Add(diag.Error(diag.CatDeclaration, n.Name.Sp,
				fmt.Sprintf("'%s' is already declared in this scope", n.Name.Name)).
				WithNote(shadowed.Span, "previous declaration is here"))
		} else {
			r.bag.Add(diag.Warning(n.Name.Sp,
				fmt.Sprintf("declaration of '%s' shadows an outer binding", n.Name.Name)).
				WithNote(shadowed.Span, "shadowed binding is here"))
		}
	} else if r.contract != nil && r.contract.VariableByName(n.Name.Name) != nil {
		state := r.contract.VariableByName(n.Name.Name)
		r.bag.Add(diag.Warning(n.Name.Sp,
			fmt.Sprintf("declaration of '%s' shadows a state variable", n.Name.Name)).
			WithNote(state.Def.Name.Sp, "shadowed state variable is here"))
	}
	local.Assigned = init != nil

	return &VarDecl{stmtBase: stmtBase{Sp: n.Sp}, Local: local, Init: init}
}

func (r *funcResolver) resolveIf(n *ast.IfStmt) Statement {
	cond := r.requireBool(r.resolveExpr(n.Cond, typeHint(BoolType{})))
	then := r.resolveBlock(n.Then)
	stmt := &If{stmtBase: stmtBase{Sp: n.Sp}, Cond: cond, Then: then}
	switch elseNode := n.Else.(type) {
	case *ast.Block:
		stmt.Else = r.resolveBlock(elseNode)
	case *ast.IfStmt:
		stmt.Else = r.resolveIf(elseNode)
	}
	return stmt
}

func (r *funcResolver) resolveFor(n *ast.ForStmt) Statement {
	// The header gets its own scope so the induction variable dies with the
	// loop.
	r.st.push(false)
	stmt := &For{stmtBase: stmtBase{Sp: n.Sp}}
	if n.Init != nil {
		stmt.Init = r.resolveStmt(n.Init)
	}
	if n.Cond != nil {
		stmt.Cond = r.requireBool(r.resolveExpr(n.Cond, typeHint(BoolType{})))
		stmt.CondConstTrue = constTrue(stmt.Cond)
	} else {
		stmt.CondConstTrue = true
	}
	if n.Next != nil {
		stmt.Next = r.resolveExpr(n.Next, hint{kind: hintDiscard})
	}
	stmt.Body, stmt.Breaks = r.resolveLoopBody(n.Body)
	r.reportUnusedLocals(r.st.pop())
	return stmt
}

func (r *funcResolver) resolveReturn(n *ast.ReturnStmt) Statement {
	stmt := &Return{stmtBase: stmtBase{Sp: n.Sp}}
	if r.fn == nil {
		r.errorf(diag.CatType, n.Sp, "return outside of a function")
		return stmt
	}
	returns := r.fn.Returns

	if len(n.Values) == 0 {
		if len(returns) > 0 && !allNamedReturns(returns) {
			r.errorf(diag.CatType, n.Sp,
				"function returns %d value(s); a bare return needs them all named", len(returns))
		} else if allNamedReturns(returns) && len(returns) > 0 {
			// A bare return reads the named return variables.
			for _, ret := range returns {
				if local := r.st.lookup(ret.Name); local != nil {
					local.Read = true
					stmt.Values = append(stmt.Values, &LocalRef{
						exprBase: exprBase{Ty: local.Type, Sp: n.Sp},
						Local:    local,
					})
				}
			}
		}
		return stmt
	}

	if len(n.Values) != len(returns) {
		r.errorf(diag.CatType, n.Sp,
			"function returns %d value(s), got %d", len(returns), len(n.Values))
		return stmt
	}
	for i, raw := range n.Values {
		value := r.resolveExpr(raw, typeHint(returns[i].Type))
		stmt.Values = append(stmt.Values, r.convert(value, returns[i].Type, raw.Span()))
	}
	return stmt
}

func allNamedReturns(returns []*Param) bool {
	for _, ret := range returns {
		if ret.Name == "" {
			return false
		}
	}
	return true
}

func (r *funcResolver) resolveEmit(n *ast.EmitStmt) Statement {
	var event *Event
	if r.contract != nil {
		if d, ok := r.contract.memberDecl(n.Event.Name).(*Event); ok {
			event = d
		}
	}
	if event == nil {
		if d, ok := r.a.ns.lookup(n.Event.Name).(*Event); ok {
			event = d
		}
	}
	if event == nil {
		r.errorf(diag.CatDeclaration, n.Event.Sp, "unknown event '%s'", n.Event.Name)
		return nil
	}

	stmt := &Emit{stmtBase: stmtBase{Sp: n.Sp}, Event: event}
	if len(n.Args) != len(event.Fields) {
		r.errorf(diag.CatType, n.Sp,
			"event '%s' has %d field(s), got %d argument(s)",
			event.Name, len(event.Fields), len(n.Args))
		return stmt
	}
	for i, raw := range n.Args {
		arg := r.resolveExpr(raw, typeHint(event.Fields[i].Type))
		stmt.Args = append(stmt.Args, r.convert(arg, event.Fields[i].Type, raw.Span()))
	}
	return stmt
}

func (r *funcResolver) resolveTryCatch(n *ast.TryCatchStmt) Statement {
	call := r.resolveExpr(n.Call, hint{kind: hintDiscard})
	var callReturns []Type
	switch c := call.(type) {
	case *ExternalCall:
		for _, ret := range c.Fn.Returns {
			callReturns = append(callReturns, ret.Type)
		}
	case *ConstructorCall:
		callReturns = []Type{call.Type()}
	case *BadExpr:
	default:
		r.errorf(diag.CatType, n.Call.Span(),
			"try expects an external call or a constructor call")
	}

	stmt := &TryCatch{stmtBase: stmtBase{Sp: n.Sp}, Call: call}

	// Success block scope holds the return bindings.
	r.st.push(false)
	if len(n.Returns) > 0 {
		if len(callReturns) > 0 && len(n.Returns) != len(callReturns) {
			r.errorf(diag.CatType, n.Sp,
				"call yields %d value(s), try binds %d", len(callReturns), len(n.Returns))
		}
		for i, p := range n.Returns {
			declared := r.a.typeFromAST(p.Type, r.contract)
			if i < len(callReturns) && !IsUnresolved(declared) && !implicitCast(callReturns[i], declared) {
				r.errorf(diag.CatType, p.Sp,
					"cannot bind '%s' to '%s'", Deref(callReturns[i]).String(), declared.String())
			}
			if p.Name == nil {
				continue
			}
			local, _, _ := r.st.declare(p.Name.Name, declared, p.Name.Sp)
			local.IsParam = true
			local.Assigned = true
			stmt.Returns = append(stmt.Returns, local)
		}
	}
	stmt.Success = r.resolveStmtsInto(n.Success)
	r.reportUnusedLocals(r.st.pop())

	seenKinds := map[ast.CatchKind]bool{}
	for _, clause := range n.Catches {
		if seenKinds[clause.Kind] {
			r.errorf(diag.CatType, clause.Sp, "duplicate catch clause")
			continue
		}
		seenKinds[clause.Kind] = true
		stmt.Catches = append(stmt.Catches, r.resolveCatch(clause))
	}
	return stmt
}

func (r *funcResolver) resolveCatch(clause *ast.CatchClause) *Catch {
	out := &Catch{}
	var want Type
	switch clause.Kind {
	case ast.CatchError:
		out.Kind = CatchErrorString
		want = StringType{}
	case ast.CatchBytes:
		out.Kind = CatchRawBytes
		want = BytesType{}
	}

	r.st.push(false)
	if clause.Param != nil {
		declared := r.a.typeFromAST(clause.Param.Type, r.contract)
		if !IsUnresolved(declared) && !SameType(declared, want) {
			r.errorf(diag.CatType, clause.Param.Sp,
				"catch binding must be '%s', not '%s'", want.String(), declared.String())
		}
		if clause.Param.Name != nil {
			local, _, _ := r.st.declare(clause.Param.Name.Name, want, clause.Param.Name.Sp)
			local.IsParam = true
			local.Assigned = true
			out.Local = local
		}
	}
	out.Body = r.resolveStmtsInto(clause.Body)
	r.reportUnusedLocals(r.st.pop())
	return out
}
