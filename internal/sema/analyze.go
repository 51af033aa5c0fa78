package sema

import (
	"fmt"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/source"
	"silica/internal/target"
)

// hintKind drives top-down type expectations during expression resolution.
type hintKind uint8

const (
	// hintUnknown resolves bottom-up.
	hintUnknown hintKind = iota
	// hintInteger wants any integer; literals pick their natural width.
	hintInteger
	// hintDiscard marks expression-statement position: the value is dropped,
	// so rationals and untyped shapes need no concrete type.
	hintDiscard
	// hintType expects a specific type.
	hintType
)

type hint struct {
	kind hintKind
	ty   Type
}

func typeHint(t Type) hint {
	if t == nil || IsUnresolved(t) {
		return hint{kind: hintUnknown}
	}
	return hint{kind: hintType, ty: t}
}

// analyzer holds the cross-function resolution state for one source unit.
type analyzer struct {
	tgt target.Target
	bag *diag.Bag
	ns  *Namespace
}

// Analyze resolves one parsed source unit against a deployment target. The
// returned namespace is complete even when the bag holds errors; unresolved
// corners carry the error type.
func Analyze(unit *ast.SourceUnit, tgt target.Target, bag *diag.Bag) *Namespace {
	a := &analyzer{
		tgt: tgt,
		bag: bag,
		ns:  &Namespace{Target: tgt, byName: map[string]any{}},
	}
	a.collectDeclarations(unit)
	a.linkBases()
	a.resolveDeclarationTypes()
	a.resolveBodies()
	a.reportUnusedState()
	return a.ns
}

func (a *analyzer) errorf(cat diag.Category, sp source.Span, format string, args ...any) diag.Diagnostic {
	d := diag.Error(cat, sp, fmt.Sprintf(format, args...))
	a.bag.Add(d)
	return d
}

func (a *analyzer) warnf(sp source.Span, format string, args ...any) {
	a.bag.Add(diag.Warning(sp, fmt.Sprintf(format, args...)))
}

// declareTop registers a top-level name, reporting clashes with a note at
// the prior declaration.
func (a *analyzer) declareTop(name string, sp source.Span, decl any, priorSpan func(any) source.Span) bool {
	if prior, ok := a.ns.byName[name]; ok {
		a.bag.Add(diag.Error(diag.CatDeclaration, sp,
			fmt.Sprintf("'%s' is already declared", name)).
			WithNote(priorSpan(prior), "previous declaration is here"))
		return false
	}
	a.ns.byName[name] = decl
	return true
}

func topDeclSpan(decl any) source.Span {
	switch d := decl.(type) {
	case *Contract:
		return d.Def.Name.Sp
	case *Struct:
		return d.Def.Name.Sp
	case *Enum:
		return d.Def.Name.Sp
	case *Event:
		return d.Def.Name.Sp
	case *Function:
		return d.Def.Name.Sp
	}
	return source.Span{}
}

func (a *analyzer) reportUnusedState() {
	for _, c := range a.ns.Contracts {
		for _, v := range c.Variables {
			if v.Public || v.Constant || len(v.Name) == 0 || v.Name[0] == '_' {
				continue
			}
			if !v.Read && !v.Assigned {
				a.warnf(v.Def.Name.Sp, "state variable '%s' is never used", v.Name)
			}
		}
	}
}
