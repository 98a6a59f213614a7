// Package engine implements the percolation core: a typed field-domain
// registry, an S-expression compiler over a structurally-interned node
// store, and a memoized evaluator that reports which stored expressions
// match an event.
//
// The access pattern is single-writer, many-reader: domain registration,
// Insert, and Remove form the write phase; Evaluate and event building are
// read-only and may run concurrently against a stable engine. A sync.RWMutex
// keeps eviction from freeing nodes an in-flight evaluation still visits.
// Multiple Engine instances are fully independent; there is no process-wide
// state.
package engine

import (
	"sort"
	"sync"

	"github.com/oakmoss/percolate/internal/types"
)

// Engine owns the interner, domain registry, node store, and expression
// table. Construct with New; the zero value is not usable.
type Engine struct {
	mu       sync.RWMutex
	interner *interner
	registry *domainRegistry
	store    *nodeStore
	exprs    map[int64]NodeID // expression table: caller id -> root
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		interner: newInterner(),
		registry: newDomainRegistry(),
		store:    newNodeStore(),
		exprs:    make(map[int64]NodeID),
	}
}

// AddSymbolDomain registers a scalar symbol-valued field.
func (e *Engine) AddSymbolDomain(name string, nullable bool) error {
	return e.addDomain(types.Domain{Name: name, Kind: types.DomainSymbol, Nullable: nullable})
}

// AddIntegerDomain registers a scalar integer-valued field with an
// inclusive [min, max] range.
func (e *Engine) AddIntegerDomain(name string, nullable bool, min, max int64) error {
	return e.addDomain(types.Domain{Name: name, Kind: types.DomainInteger, Nullable: nullable, Min: min, Max: max})
}

// AddSymbolListDomain registers a symbol-list-valued field, the shape the
// one-of/all-of/none-of and empty? operators work over.
func (e *Engine) AddSymbolListDomain(name string, nullable bool) error {
	return e.addDomain(types.Domain{Name: name, Kind: types.DomainSymbolList, Nullable: nullable})
}

// AddIntegerListDomain registers an integer-list-valued field with an
// inclusive per-element [min, max] range.
func (e *Engine) AddIntegerListDomain(name string, nullable bool, min, max int64) error {
	return e.addDomain(types.Domain{Name: name, Kind: types.DomainIntegerList, Nullable: nullable, Min: min, Max: max})
}

func (e *Engine) addDomain(d types.Domain) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.registry.add(d); err != nil {
		return err
	}
	// Interning the name here gives event builders a valid field handle
	// even before any expression references the field.
	e.interner.internSymbol(d.Name)
	return nil
}

// Domains returns all registered domains ordered by name.
func (e *Engine) Domains() []types.Domain {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.list()
}

// Insert compiles text and stores it under the caller-supplied id.
// Fails with the compiler's errors or ErrDuplicateID; on failure the engine
// state is unchanged.
func (e *Engine) Insert(id int64, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.exprs[id]; ok {
		return types.ErrDuplicateID
	}

	c := &compiler{interner: e.interner, registry: e.registry, store: e.store}
	root, err := c.compile(text)
	if err != nil {
		return err
	}

	e.store.retain(root)
	e.exprs[id] = root
	return nil
}

// Remove deletes the expression with the given id, releasing its subtree
// and evicting nodes no other expression references.
func (e *Engine) Remove(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	root, ok := e.exprs[id]
	if !ok {
		return types.ErrUnknownID
	}
	delete(e.exprs, id)
	e.store.release(root)
	return nil
}

// Evaluate runs every stored expression against the event and returns the
// ids whose root evaluated true, ascending. Deterministic and restartable:
// the same event against an unmodified engine yields the same sequence.
// Never errors; missing fields are data, not failures.
func (e *Engine) Evaluate(event *Event) []int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	// One memo table for the whole call: shared subexpressions are
	// evaluated once no matter how many roots reach them.
	ev := newEvaluator(e.interner, e.store, event)

	matched := make([]int64, 0)
	for id, root := range e.exprs {
		if ev.eval(root) {
			matched = append(matched, id)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
	return matched
}

// Len reports the number of stored expressions.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.exprs)
}

// NodeCount reports the number of live nodes in the store. Structural
// sharing is observable here: inserting two expressions with a common
// subexpression grows the count by less than the sum of their node counts.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.count()
}
