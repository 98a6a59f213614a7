package engine

import (
	"errors"
	"testing"

	"github.com/oakmoss/percolate/internal/types"
)

// newTestEngine registers the shared fixture domains:
// status (symbol), tier (symbol, nullable), age (integer 0..150),
// tags (symbol list), scores (integer list 0..100, nullable).
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"status", func() error { return e.AddSymbolDomain("status", false) }},
		{"tier", func() error { return e.AddSymbolDomain("tier", true) }},
		{"age", func() error { return e.AddIntegerDomain("age", false, 0, 150) }},
		{"tags", func() error { return e.AddSymbolListDomain("tags", false) }},
		{"scores", func() error { return e.AddIntegerListDomain("scores", true, 0, 100) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Fatalf("registering %s: %v", s.name, err)
		}
	}
	return e
}

func TestInsert_ValidExpressions(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"symbol equality", `(= status "active")`},
		{"integer comparison", `(>= age 18)`},
		{"negated comparison", `(not (< age 21))`},
		{"conjunction", `(and (= status "active") (>= age 18))`},
		{"disjunction", `(or (= status "premium") (>= age 65))`},
		{"set membership", `(in status ["active" "trial"])`},
		{"set exclusion", `(not-in age [13 17 99])`},
		{"list one-of", `(one-of tags ["go" "rust"])`},
		{"list all-of", `(all-of tags ["verified" "active"])`},
		{"list none-of", `(none-of scores [0 13])`},
		{"null check on nullable", `(null? tier)`},
		{"empty check on list", `(empty? tags)`},
		{"comment and whitespace", "; leading comment\n(= status \"active\") ; trailing"},
		{"escaped string", `(= status "a\"b\\c")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			if err := e.Insert(1, tt.text); err != nil {
				t.Errorf("Insert(%q) error = %v, want nil", tt.text, err)
			}
		})
	}
}

func TestInsert_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty input", ``},
		{"unbalanced open", `(and (= status "x")`},
		{"unbalanced close", `(= status "x"))`},
		{"unknown operator", `(between age 1 10)`},
		{"not with two operands", `(not (= status "x") (= status "y"))`},
		{"and with no operands", `(and)`},
		{"compare missing literal", `(= status)`},
		{"compare bare word literal", `(= status active)`},
		{"set without brackets", `(in status "active")`},
		{"empty literal set", `(in status [])`},
		{"unterminated string", `(= status "act`},
		{"unknown escape", `(= status "a\qb")`},
		{"missing field", `(null?)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			err := e.Insert(1, tt.text)
			if !errors.Is(err, types.ErrSyntax) {
				t.Errorf("Insert(%q) error = %v, want a syntax error", tt.text, err)
			}
			var syn *types.SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("Insert(%q) error carries no position", tt.text)
			}
			if syn.Pos < 0 || syn.Pos > len(tt.text) {
				t.Errorf("syntax error position %d outside input of length %d", syn.Pos, len(tt.text))
			}
		})
	}
}

func TestInsert_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"unknown field", `(= country "de")`, types.ErrUnknownField},
		{"integer literal on symbol domain", `(= status 5)`, types.ErrTypeMismatch},
		{"string literal on integer domain", `(>= age "old")`, types.ErrTypeMismatch},
		{"boolean literal", `(= status true)`, types.ErrTypeMismatch},
		{"out of range literal", `(>= age 200)`, types.ErrOutOfRange},
		{"out of range below min", `(< age -1)`, types.ErrOutOfRange},
		{"ordering on symbol domain", `(< status "b")`, types.ErrInvalidOperator},
		{"compare on list domain", `(= tags "go")`, types.ErrInvalidOperator},
		{"set op on list domain", `(in tags ["go"])`, types.ErrInvalidOperator},
		{"list op on scalar domain", `(one-of status ["a"])`, types.ErrInvalidOperator},
		{"null check on non-nullable", `(null? status)`, types.ErrInvalidOperator},
		{"empty check on scalar", `(empty? age)`, types.ErrInvalidOperator},
		{"set element out of range", `(in age [18 200])`, types.ErrOutOfRange},
		{"list element kind mismatch", `(one-of scores ["high"])`, types.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			err := e.Insert(1, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Insert(%q) error = %v, want %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestInsert_FailedCompileLeaksNoNodes(t *testing.T) {
	e := newTestEngine(t)

	before := e.NodeCount()
	// Valid left conjunct, invalid right conjunct: nothing may be interned.
	err := e.Insert(1, `(and (= status "active") (>= age 999))`)
	if !errors.Is(err, types.ErrOutOfRange) {
		t.Fatalf("Insert() error = %v, want ErrOutOfRange", err)
	}
	if got := e.NodeCount(); got != before {
		t.Errorf("failed insert leaked nodes: count %d -> %d", before, got)
	}
	if got := e.Len(); got != 0 {
		t.Errorf("failed insert registered an expression: Len() = %d", got)
	}
}

func TestInsert_StructuralSharing(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Insert(1, `(and (= status "active") (>= age 18))`); err != nil {
		t.Fatalf("Insert(1) error = %v", err)
	}
	after1 := e.NodeCount() // two compares plus the and

	if err := e.Insert(2, `(or (>= age 18) (= status "premium"))`); err != nil {
		t.Fatalf("Insert(2) error = %v", err)
	}
	after2 := e.NodeCount()

	// Expression 2 shares (>= age 18): only the or and its premium compare
	// are new.
	if after1 != 3 {
		t.Errorf("NodeCount() after first insert = %d, want 3", after1)
	}
	if after2 != 5 {
		t.Errorf("NodeCount() after second insert = %d, want 5 (shared subexpression)", after2)
	}
}

func TestInsert_IdenticalTextSharesRoot(t *testing.T) {
	e := newTestEngine(t)

	text := `(and (= status "active") (>= age 18))`
	if err := e.Insert(1, text); err != nil {
		t.Fatalf("Insert(1) error = %v", err)
	}
	n := e.NodeCount()
	if err := e.Insert(2, text); err != nil {
		t.Fatalf("Insert(2) error = %v", err)
	}
	if got := e.NodeCount(); got != n {
		t.Errorf("identical expression grew node count %d -> %d", n, got)
	}
}

func TestInsert_ExpressionTooLarge(t *testing.T) {
	e := newTestEngine(t)

	huge := make([]byte, types.MaxExpressionLength+1)
	for i := range huge {
		huge[i] = ' '
	}
	err := e.Insert(1, string(huge))
	if !errors.Is(err, types.ErrExpressionTooLarge) {
		t.Errorf("Insert(oversized) error = %v, want ErrExpressionTooLarge", err)
	}
}
