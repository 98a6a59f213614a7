package engine

import (
	"github.com/oakmoss/percolate/internal/types"
)

/*
 * Event construction.
 *
 * EventBuilder accumulates field/value pairs and produces an immutable
 * Event. Validation happens at Set* time, against the domain registry, so
 * the first bad value is reported at the call that supplied it and Build
 * cannot fail.
 *
 * Building an event never interns: symbol values are looked up, and a
 * symbol the engine has never seen resolves to the invalid handle, which
 * compares unequal to every compiled literal. Event construction is
 * therefore a pure read phase and safe to run concurrently with Evaluate.
 */

// Event is one immutable field->value record. Events are evaluated and
// discarded; they are never persisted.
type Event struct {
	fields map[Handle]Value
}

// lookup returns the value for a field handle.
func (e *Event) lookup(field Handle) (Value, bool) {
	if e == nil || field == InvalidHandle {
		return Value{}, false
	}
	v, ok := e.fields[field]
	return v, ok
}

// EventBuilder accumulates validated field values for one event.
// Not safe for concurrent use; each evaluation call builds its own.
type EventBuilder struct {
	engine *Engine
	fields map[Handle]Value
}

// NewEvent returns a builder whose Set* calls validate against this
// engine's domain registry. Setting a field twice keeps the last value.
func (e *Engine) NewEvent() *EventBuilder {
	return &EventBuilder{engine: e, fields: make(map[Handle]Value)}
}

// SetSymbol sets a symbol-domain field.
func (b *EventBuilder) SetSymbol(field, value string) error {
	return b.set(field, types.DomainSymbol, func(d types.Domain) (Value, error) {
		return b.symbolValue(value), nil
	})
}

// SetInteger sets an integer-domain field. The value must lie within the
// domain's declared range.
func (b *EventBuilder) SetInteger(field string, value int64) error {
	return b.set(field, types.DomainInteger, func(d types.Domain) (Value, error) {
		if !inRange(d, value) {
			return Value{}, types.ErrOutOfRange
		}
		return Value{Kind: ValueInteger, Int: value}, nil
	})
}

// SetSymbolList sets a symbol-list-domain field. An empty slice is a valid,
// present-but-empty list (observable via the empty? operator).
func (b *EventBuilder) SetSymbolList(field string, values []string) error {
	return b.set(field, types.DomainSymbolList, func(d types.Domain) (Value, error) {
		list := make([]Value, len(values))
		for i, s := range values {
			list[i] = b.symbolValue(s)
		}
		return Value{Kind: ValueList, List: list}, nil
	})
}

// SetIntegerList sets an integer-list-domain field. Every element must lie
// within the domain's declared range.
func (b *EventBuilder) SetIntegerList(field string, values []int64) error {
	return b.set(field, types.DomainIntegerList, func(d types.Domain) (Value, error) {
		list := make([]Value, len(values))
		for i, n := range values {
			if !inRange(d, n) {
				return Value{}, types.ErrOutOfRange
			}
			list[i] = Value{Kind: ValueInteger, Int: n}
		}
		return Value{Kind: ValueList, List: list}, nil
	})
}

// set resolves and type-checks the field, then stores the built value.
func (b *EventBuilder) set(field string, want types.DomainKind, build func(types.Domain) (Value, error)) error {
	b.engine.mu.RLock()
	defer b.engine.mu.RUnlock()

	d, err := b.engine.registry.resolve(field)
	if err != nil {
		return err
	}
	if d.Kind != want {
		return types.ErrTypeMismatch
	}
	v, err := build(d)
	if err != nil {
		return err
	}
	b.fields[b.engine.interner.lookupSymbol(field)] = v
	return nil
}

// symbolValue looks a symbol up without interning. Caller holds the
// engine read lock.
func (b *EventBuilder) symbolValue(s string) Value {
	return Value{Kind: ValueSymbol, Handle: b.engine.interner.lookupSymbol(s)}
}

// Build finalizes the accumulated fields into an immutable Event.
// The builder may be reused afterwards without affecting built events.
func (b *EventBuilder) Build() *Event {
	fields := make(map[Handle]Value, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return &Event{fields: fields}
}
