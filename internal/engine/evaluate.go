package engine

/*
 * Memoized graph evaluation.
 *
 * Evaluates every stored expression's root against one event with a single
 * memo table (NodeID -> bool) scoped to the call, so a subexpression shared
 * by many expressions is computed exactly once per event no matter how many
 * roots reach it. The memo is never carried between events.
 *
 * Evaluation is total: a well-formed event never produces an error. Missing
 * fields are data, not failures:
 *   - comparisons, in/not-in, and the list operators are false
 *   - null? is true (absence is the null observation for a nullable field)
 *   - empty? is false (absence cannot witness emptiness; only a present
 *     empty list does)
 *
 * and/or short-circuit in declared child order; the memo table makes the
 * skipped children free on other roots that do reach them.
 */

type evaluator struct {
	interner *interner
	store    *nodeStore
	event    *Event
	memo     map[NodeID]bool
}

func newEvaluator(in *interner, store *nodeStore, event *Event) *evaluator {
	return &evaluator{
		interner: in,
		store:    store,
		event:    event,
		memo:     make(map[NodeID]bool),
	}
}

func (ev *evaluator) eval(id NodeID) bool {
	if r, ok := ev.memo[id]; ok {
		return r
	}
	r := ev.evalNode(ev.store.get(id))
	ev.memo[id] = r
	return r
}

func (ev *evaluator) evalNode(n *node) bool {
	switch n.kind {
	case nodeBool:
		return ev.evalBool(n)
	case nodeCompare:
		return ev.evalCompare(n)
	case nodeSet:
		return ev.evalSet(n)
	case nodeList:
		return ev.evalList(n)
	case nodeNull:
		_, present := ev.event.lookup(n.field)
		return !present
	case nodeEmpty:
		v, present := ev.event.lookup(n.field)
		return present && v.Kind == ValueList && len(v.List) == 0
	default:
		return false
	}
}

func (ev *evaluator) evalBool(n *node) bool {
	switch n.op {
	case opNot:
		return !ev.eval(n.children[0])
	case opAnd:
		for _, c := range n.children {
			if !ev.eval(c) {
				return false
			}
		}
		return true
	default: // opOr
		for _, c := range n.children {
			if ev.eval(c) {
				return true
			}
		}
		return false
	}
}

func (ev *evaluator) evalCompare(n *node) bool {
	v, present := ev.event.lookup(n.field)
	if !present {
		return false
	}
	switch v.Kind {
	case ValueSymbol:
		// Equality only; ordering on symbols is rejected at compile time.
		return n.op == opEq && v.Handle != InvalidHandle && v.Handle == n.lit
	case ValueInteger:
		lit, ok := ev.interner.integerValue(n.lit)
		if !ok {
			return false
		}
		switch n.op {
		case opEq:
			return v.Int == lit
		case opLt:
			return v.Int < lit
		case opLte:
			return v.Int <= lit
		case opGt:
			return v.Int > lit
		case opGte:
			return v.Int >= lit
		}
	}
	return false
}

func (ev *evaluator) evalSet(n *node) bool {
	v, present := ev.event.lookup(n.field)
	if !present {
		// Blanket missing-field rule: not-in is false too, absence is not
		// evidence of non-membership.
		return false
	}
	member := ev.contains(n.operands, v)
	if n.op == opNotIn {
		return !member
	}
	return member
}

func (ev *evaluator) evalList(n *node) bool {
	v, present := ev.event.lookup(n.field)
	if !present || v.Kind != ValueList {
		return false
	}
	switch n.op {
	case opOneOf:
		for _, elem := range v.List {
			if ev.contains(n.operands, elem) {
				return true
			}
		}
		return false
	case opAllOf:
		for _, h := range n.operands {
			if !ev.listHas(v.List, h) {
				return false
			}
		}
		return true
	default: // opNoneOf
		for _, elem := range v.List {
			if ev.contains(n.operands, elem) {
				return false
			}
		}
		return true
	}
}

// contains reports whether v equals any operand literal. Linear scan is
// bounded by MaxSetValues.
func (ev *evaluator) contains(operands []Handle, v Value) bool {
	switch v.Kind {
	case ValueSymbol:
		if v.Handle == InvalidHandle {
			return false
		}
		for _, h := range operands {
			if h == v.Handle {
				return true
			}
		}
	case ValueInteger:
		for _, h := range operands {
			if lit, ok := ev.interner.integerValue(h); ok && lit == v.Int {
				return true
			}
		}
	}
	return false
}

// listHas reports whether the event list contains the literal h.
func (ev *evaluator) listHas(list []Value, h Handle) bool {
	for _, elem := range list {
		switch elem.Kind {
		case ValueSymbol:
			if elem.Handle != InvalidHandle && elem.Handle == h {
				return true
			}
		case ValueInteger:
			if lit, ok := ev.interner.integerValue(h); ok && lit == elem.Int {
				return true
			}
		}
	}
	return false
}
