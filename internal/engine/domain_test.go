package engine

import (
	"errors"
	"testing"

	"github.com/oakmoss/percolate/internal/types"
)

func TestDomainRegistry_AddAndResolve(t *testing.T) {
	r := newDomainRegistry()

	if err := r.add(types.Domain{Name: "status", Kind: types.DomainSymbol}); err != nil {
		t.Fatalf("add(status) error = %v, want nil", err)
	}
	if err := r.add(types.Domain{Name: "age", Kind: types.DomainInteger, Min: 0, Max: 150}); err != nil {
		t.Fatalf("add(age) error = %v, want nil", err)
	}

	d, err := r.resolve("age")
	if err != nil {
		t.Fatalf("resolve(age) error = %v, want nil", err)
	}
	if d.Kind != types.DomainInteger || d.Min != 0 || d.Max != 150 {
		t.Errorf("resolve(age) = %+v, want integer kind with range [0, 150]", d)
	}

	if _, err := r.resolve("missing"); !errors.Is(err, types.ErrUnknownField) {
		t.Errorf("resolve(missing) error = %v, want ErrUnknownField", err)
	}
}

func TestDomainRegistry_DuplicateRejected(t *testing.T) {
	r := newDomainRegistry()

	if err := r.add(types.Domain{Name: "status", Kind: types.DomainSymbol}); err != nil {
		t.Fatalf("add() error = %v, want nil", err)
	}

	// Re-adding the same name fails even with a different kind: domains are
	// immutable once registered.
	err := r.add(types.Domain{Name: "status", Kind: types.DomainInteger, Max: 10})
	if !errors.Is(err, types.ErrDuplicateDomain) {
		t.Errorf("add(duplicate) error = %v, want ErrDuplicateDomain", err)
	}

	d, _ := r.resolve("status")
	if d.Kind != types.DomainSymbol {
		t.Errorf("failed re-add mutated the registry: kind = %v", d.Kind)
	}
}

func TestDomainRegistry_InvalidRange(t *testing.T) {
	r := newDomainRegistry()

	err := r.add(types.Domain{Name: "age", Kind: types.DomainInteger, Min: 10, Max: 5})
	if !errors.Is(err, types.ErrInvalidRange) {
		t.Errorf("add(min > max) error = %v, want ErrInvalidRange", err)
	}
	if _, err := r.resolve("age"); !errors.Is(err, types.ErrUnknownField) {
		t.Errorf("failed add registered the domain anyway")
	}
}

func TestDomainRegistry_ListOrderedByName(t *testing.T) {
	r := newDomainRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.add(types.Domain{Name: name, Kind: types.DomainSymbol}); err != nil {
			t.Fatalf("add(%s) error = %v", name, err)
		}
	}

	got := r.list()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("list() returned %d domains, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("list()[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
}
