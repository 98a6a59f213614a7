package engine

import (
	"sort"

	"github.com/oakmoss/percolate/internal/types"
)

/*
 * Domain registry.
 *
 * Holds the declared set of event fields, each with a kind (symbol or
 * integer, scalar or list-shaped), nullability, and for integer domains an
 * inclusive range. Both expression literals and event values are validated
 * against the registry at the point they enter the system.
 *
 * Append-only: a domain, once added, is immutable and never removed. A
 * field's type therefore never changes under already-compiled expressions,
 * which is what makes structural node sharing safe across inserts.
 */

type domainRegistry struct {
	domains map[string]types.Domain
}

func newDomainRegistry() *domainRegistry {
	return &domainRegistry{domains: make(map[string]types.Domain)}
}

// add registers a domain. ErrDuplicateDomain if the name exists,
// ErrInvalidRange for integer kinds declared with min > max.
func (r *domainRegistry) add(d types.Domain) error {
	if _, ok := r.domains[d.Name]; ok {
		return types.ErrDuplicateDomain
	}
	if d.Kind.Integer() && d.Min > d.Max {
		return types.ErrInvalidRange
	}
	r.domains[d.Name] = d
	return nil
}

// resolve looks a field up by name. ErrUnknownField if absent.
func (r *domainRegistry) resolve(name string) (types.Domain, error) {
	d, ok := r.domains[name]
	if !ok {
		return types.Domain{}, types.ErrUnknownField
	}
	return d, nil
}

// list returns all registered domains ordered by name.
func (r *domainRegistry) list() []types.Domain {
	out := make([]types.Domain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// inRange checks v against the domain's inclusive range.
// Always true for symbol kinds.
func inRange(d types.Domain, v int64) bool {
	if !d.Kind.Integer() {
		return true
	}
	return v >= d.Min && v <= d.Max
}
