package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for diagnostics that do not block code generation.
	SevWarning
	// SevError blocks code generation.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Category classifies what went wrong, independent of severity.
type Category uint8

const (
	// CatSyntax covers scanner and parser errors.
	CatSyntax Category = iota
	// CatDeclaration covers duplicate, shadowed or unknown symbols.
	CatDeclaration
	// CatType covers illegal coercions and operand mismatches.
	CatType
	// CatCast covers impossible or lossy conversions.
	CatCast
	// CatAmbiguity covers overload resolution with several matches.
	CatAmbiguity
	// CatTarget covers constructs not available on the active compile target.
	CatTarget
	// CatWarning covers lints: shadowing, unused variables, truncating casts.
	CatWarning
)

func (c Category) String() string {
	switch c {
	case CatSyntax:
		return "syntax error"
	case CatDeclaration:
		return "declaration error"
	case CatType:
		return "type error"
	case CatCast:
		return "cast error"
	case CatAmbiguity:
		return "ambiguity error"
	case CatTarget:
		return "unsupported on target"
	case CatWarning:
		return "warning"
	}
	return "unknown"
}
