// Package types provides domain models shared across percolate components.
//
// Zero-dependency design: the rule-facing types use only the standard
// library so the engine hot path carries no transitive imports. ID helpers
// in ids.go import uuid but are isolated to the service surface.
package types

// DomainKind classifies what values a field may carry.
type DomainKind int

const (
	DomainUnspecified DomainKind = iota

	// DomainSymbol holds a single interned symbol value.
	DomainSymbol

	// DomainInteger holds a single int64 within an inclusive range.
	DomainInteger

	// DomainSymbolList holds an ordered list of symbols.
	DomainSymbolList

	// DomainIntegerList holds an ordered list of int64s, each within range.
	DomainIntegerList
)

// Scalar reports whether the kind carries a single value.
func (k DomainKind) Scalar() bool {
	return k == DomainSymbol || k == DomainInteger
}

// List reports whether the kind carries an ordered list of values.
func (k DomainKind) List() bool {
	return k == DomainSymbolList || k == DomainIntegerList
}

// Integer reports whether the kind's element type is int64.
func (k DomainKind) Integer() bool {
	return k == DomainInteger || k == DomainIntegerList
}

// String returns the wire spelling used by the store and the HTTP API.
func (k DomainKind) String() string {
	switch k {
	case DomainSymbol:
		return "symbol"
	case DomainInteger:
		return "integer"
	case DomainSymbolList:
		return "symbol_list"
	case DomainIntegerList:
		return "integer_list"
	default:
		return "unspecified"
	}
}

// ParseDomainKind converts the wire spelling back to a DomainKind.
// Returns DomainUnspecified for unknown input.
func ParseDomainKind(s string) DomainKind {
	switch s {
	case "symbol":
		return DomainSymbol
	case "integer":
		return DomainInteger
	case "symbol_list":
		return DomainSymbolList
	case "integer_list":
		return DomainIntegerList
	default:
		return DomainUnspecified
	}
}

// Domain is a registered field definition. Min/Max are meaningful only for
// integer-kinded domains. Domains are immutable once registered.
type Domain struct {
	Name     string
	Kind     DomainKind
	Nullable bool
	Min      int64
	Max      int64
}

// Resource limits enforced at compile time to keep evaluation cost bounded.
const (
	// MaxExpressionLength caps expression text size. 64KB accommodates very
	// wide and/or combinators without risking pathological parser input.
	MaxExpressionLength = 64 * 1024

	// MaxSetValues limits bracketed literal sets. 64 values supports
	// enum-style membership checks without degrading set scans.
	MaxSetValues = 64

	// MaxNestingDepth bounds parser recursion over nested combinators.
	MaxNestingDepth = 64
)
