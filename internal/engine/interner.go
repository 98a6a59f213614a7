package engine

/*
 * String and integer interning.
 *
 * Maps symbol text and integer literals to dense Handle values so the rest
 * of the engine compares and hashes small integers instead of content.
 * Handle 0 is reserved as the invalid handle: event values that were never
 * interned resolve to 0 and can therefore never equal a compiled literal,
 * which is exactly the "missing/unknown matches nothing" policy.
 *
 * Guarantees:
 *   - Same content always yields the same handle for the engine lifetime
 *   - A handle is never reused for different content
 *   - Tables grow monotonically and never shrink
 *
 * The interner is owned exclusively by one Engine and is never exposed;
 * all mutation happens under the Engine write lock (compile, domain
 * registration), all lookup under the read lock (event building).
 */

// Handle is an interned identifier for a symbol or integer literal.
// The zero Handle is invalid and never interned.
type Handle uint32

// InvalidHandle marks content that was never interned.
const InvalidHandle Handle = 0

type interner struct {
	symbolIDs  map[string]Handle
	symbols    []string // symbols[h-1] is the text for handle h
	integerIDs map[int64]Handle
	integers   []int64 // integers[h-1] is the value for handle h
}

func newInterner() *interner {
	return &interner{
		symbolIDs:  make(map[string]Handle),
		integerIDs: make(map[int64]Handle),
	}
}

// internSymbol returns the handle for text, allocating one on first sight.
func (in *interner) internSymbol(text string) Handle {
	if h, ok := in.symbolIDs[text]; ok {
		return h
	}
	in.symbols = append(in.symbols, text)
	h := Handle(len(in.symbols))
	in.symbolIDs[text] = h
	return h
}

// lookupSymbol returns the handle for text without interning.
// Returns InvalidHandle when the text was never seen.
func (in *interner) lookupSymbol(text string) Handle {
	return in.symbolIDs[text]
}

// symbolText resolves a handle back to its text. Empty string for invalid.
func (in *interner) symbolText(h Handle) string {
	if h == InvalidHandle || int(h) > len(in.symbols) {
		return ""
	}
	return in.symbols[h-1]
}

// internInteger returns the handle for v, allocating one on first sight.
// Integers get their own handle space so node operands are uniformly typed.
func (in *interner) internInteger(v int64) Handle {
	if h, ok := in.integerIDs[v]; ok {
		return h
	}
	in.integers = append(in.integers, v)
	h := Handle(len(in.integers))
	in.integerIDs[v] = h
	return h
}

// lookupInteger returns the handle for v without interning.
func (in *interner) lookupInteger(v int64) Handle {
	return in.integerIDs[v]
}

// integerValue resolves an integer handle back to its value.
// The ok result is false for handles never interned.
func (in *interner) integerValue(h Handle) (int64, bool) {
	if h == InvalidHandle || int(h) > len(in.integers) {
		return 0, false
	}
	return in.integers[h-1], true
}

// symbolCount reports how many distinct symbols have been interned.
func (in *interner) symbolCount() int {
	return len(in.symbols)
}
