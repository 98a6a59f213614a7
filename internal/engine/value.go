package engine

/*
 * Event value representation.
 *
 * Value is a closed tagged variant over the kinds an event field may carry.
 * Symbol values hold the interned handle of the text (InvalidHandle when the
 * symbol was never interned, which compares unequal to every literal).
 * Integer values keep the raw int64 alongside their lookup handle so ordering
 * comparisons work on never-interned inputs. Lists hold elements of one kind.
 */

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueUnset ValueKind = iota
	ValueSymbol
	ValueInteger
	ValueBoolean
	ValueList
)

// Value is one event field value. Immutable after event construction.
type Value struct {
	Kind   ValueKind
	Handle Handle  // symbol handle; InvalidHandle if never interned
	Int    int64   // integer payload
	Bool   bool    // boolean payload
	List   []Value // ordered element list
}

// Equal compares two values by handle/numeric equality; lists compare
// element-wise and order-sensitive.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueSymbol:
		return v.Handle != InvalidHandle && v.Handle == o.Handle
	case ValueInteger:
		return v.Int == o.Int
	case ValueBoolean:
		return v.Bool == o.Bool
	case ValueList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
