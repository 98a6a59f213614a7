package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestInterner_Symbols(t *testing.T) {
	in := newInterner()

	h1 := in.internSymbol("hello")
	h2 := in.internSymbol("world")
	h3 := in.internSymbol("hello")

	if h1 != h3 {
		t.Errorf("same text interned to different handles: %v vs %v", h1, h3)
	}
	if h1 == h2 {
		t.Errorf("distinct texts interned to same handle %v", h1)
	}
	if h1 == InvalidHandle || h2 == InvalidHandle {
		t.Errorf("interner allocated the invalid handle")
	}

	if got := in.symbolText(h1); got != "hello" {
		t.Errorf("symbolText(%v) = %q, want %q", h1, got, "hello")
	}
	if got := in.symbolCount(); got != 2 {
		t.Errorf("symbolCount() = %d, want 2", got)
	}
}

func TestInterner_LookupDoesNotIntern(t *testing.T) {
	in := newInterner()

	if h := in.lookupSymbol("absent"); h != InvalidHandle {
		t.Errorf("lookupSymbol(absent) = %v, want InvalidHandle", h)
	}
	if got := in.symbolCount(); got != 0 {
		t.Errorf("lookup grew the table to %d entries", got)
	}

	h := in.internSymbol("present")
	if got := in.lookupSymbol("present"); got != h {
		t.Errorf("lookupSymbol(present) = %v, want %v", got, h)
	}
}

func TestInterner_Integers(t *testing.T) {
	in := newInterner()

	h1 := in.internInteger(42)
	h2 := in.internInteger(-7)
	h3 := in.internInteger(42)

	if h1 != h3 {
		t.Errorf("same integer interned to different handles: %v vs %v", h1, h3)
	}
	if h1 == h2 {
		t.Errorf("distinct integers interned to same handle %v", h1)
	}

	v, ok := in.integerValue(h2)
	if !ok || v != -7 {
		t.Errorf("integerValue(%v) = (%d, %v), want (-7, true)", h2, v, ok)
	}
	if _, ok := in.integerValue(InvalidHandle); ok {
		t.Errorf("integerValue(InvalidHandle) reported ok")
	}
}

// Property: interning is stable and injective over arbitrary strings.
func TestInterner_PropertyStableInjective(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	in := newInterner()

	properties.Property("same content always yields the same handle", prop.ForAll(
		func(s string) bool {
			return in.internSymbol(s) == in.internSymbol(s)
		},
		gen.AnyString(),
	))

	properties.Property("distinct content never shares a handle", prop.ForAll(
		func(a, b string) bool {
			if a == b {
				return true
			}
			return in.internSymbol(a) != in.internSymbol(b)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
