package engine

import (
	"strconv"

	"github.com/oakmoss/percolate/internal/types"
)

/*
 * Expression compilation.
 *
 * Compiles the S-expression text form into structurally-interned nodes in
 * three strict phases:
 *
 *   1. Parse   — tokens to a private AST, all arity and shape errors here
 *   2. Validate — every field resolved against the domain registry, every
 *                 literal checked for kind and range
 *   3. Build   — bottom-up node interning, cannot fail
 *
 * Validation runs to completion before a single node or literal is
 * interned, so a failed compile leaves the node store and interner exactly
 * as they were: structural sharing never observes partially-built
 * subexpressions of a failed insert.
 *
 * Validation rules:
 *   - ordering comparisons require an integer scalar domain
 *   - '=' requires a scalar domain matching the literal kind
 *   - in/not-in require a scalar domain; one-of/all-of/none-of a list domain
 *   - null? requires a nullable domain, empty? a list domain
 *   - integer literals must lie within the domain's inclusive range
 */

type astKind uint8

const (
	astBool astKind = iota
	astCompare
	astSet
	astList
	astNullCheck
	astEmptyCheck
)

type litKind uint8

const (
	litString litKind = iota
	litInt
	litBool
)

type literal struct {
	kind litKind
	str  string
	num  int64
	b    bool
	pos  int
}

type astNode struct {
	kind     astKind
	op       opCode
	pos      int // byte offset of the operator
	field    string
	fieldPos int
	lit      literal
	lits     []literal
	children []*astNode
}

// operatorSpec maps grammar spellings to node shape and opcode.
var operatorSpec = map[string]struct {
	kind astKind
	op   opCode
}{
	"and":     {astBool, opAnd},
	"or":      {astBool, opOr},
	"not":     {astBool, opNot},
	"=":       {astCompare, opEq},
	"<":       {astCompare, opLt},
	"<=":      {astCompare, opLte},
	">":       {astCompare, opGt},
	">=":      {astCompare, opGte},
	"in":      {astSet, opIn},
	"not-in":  {astSet, opNotIn},
	"one-of":  {astList, opOneOf},
	"all-of":  {astList, opAllOf},
	"none-of": {astList, opNoneOf},
	"null?":   {astNullCheck, opNone},
	"empty?":  {astEmptyCheck, opNone},
}

type compiler struct {
	interner *interner
	registry *domainRegistry
	store    *nodeStore
}

// compile turns expression text into a root NodeID.
// Caller holds the engine write lock.
func (c *compiler) compile(text string) (NodeID, error) {
	if len(text) > types.MaxExpressionLength {
		return 0, types.ErrExpressionTooLarge
	}

	tokens, err := lex(text)
	if err != nil {
		return 0, err
	}

	p := &parser{toks: tokens}
	root, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if trailing := p.peek(); trailing.typ != tokEOF {
		return 0, &types.SyntaxError{Pos: trailing.pos, Msg: "unexpected " + trailing.typ.String() + " after expression"}
	}

	if err := c.validate(root); err != nil {
		return 0, err
	}

	return c.build(root), nil
}

type parser struct {
	toks []token
	cur  int
}

func (p *parser) peek() token {
	return p.toks[p.cur]
}

func (p *parser) next() token {
	t := p.toks[p.cur]
	if t.typ != tokEOF {
		p.cur++
	}
	return t
}

func (p *parser) expect(typ tokenType) (token, error) {
	t := p.next()
	if t.typ != typ {
		return token{}, &types.SyntaxError{Pos: t.pos, Msg: "expected " + typ.String() + ", found " + t.typ.String()}
	}
	return t, nil
}

func (p *parser) parseExpr(depth int) (*astNode, error) {
	if depth > types.MaxNestingDepth {
		return nil, &types.SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}

	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	opTok, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	spec, ok := operatorSpec[opTok.text]
	if !ok {
		return nil, &types.SyntaxError{Pos: opTok.pos, Msg: "unknown operator " + strconv.Quote(opTok.text)}
	}

	n := &astNode{kind: spec.kind, op: spec.op, pos: opTok.pos}

	switch spec.kind {
	case astBool:
		for p.peek().typ == tokLParen {
			child, err := p.parseExpr(depth + 1)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		if len(n.children) == 0 {
			return nil, &types.SyntaxError{Pos: opTok.pos, Msg: opTok.text + " requires at least one operand"}
		}
		if spec.op == opNot && len(n.children) != 1 {
			return nil, &types.SyntaxError{Pos: opTok.pos, Msg: "not takes exactly one operand"}
		}

	case astCompare:
		if err := p.parseField(n); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		n.lit = lit
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}

	case astSet, astList:
		if err := p.parseField(n); err != nil {
			return nil, err
		}
		lits, err := p.parseLiteralSet()
		if err != nil {
			return nil, err
		}
		n.lits = lits
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}

	case astNullCheck, astEmptyCheck:
		if err := p.parseField(n); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
	}

	return n, nil
}

func (p *parser) parseField(n *astNode) error {
	t, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	n.field = t.text
	n.fieldPos = t.pos
	return nil
}

func (p *parser) parseLiteral() (literal, error) {
	t := p.next()
	switch t.typ {
	case tokString:
		return literal{kind: litString, str: t.text, pos: t.pos}, nil
	case tokInt:
		return literal{kind: litInt, num: t.num, pos: t.pos}, nil
	case tokBool:
		return literal{kind: litBool, b: t.b, pos: t.pos}, nil
	default:
		return literal{}, &types.SyntaxError{Pos: t.pos, Msg: "expected literal, found " + t.typ.String()}
	}
}

func (p *parser) parseLiteralSet() ([]literal, error) {
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	var lits []literal
	for p.peek().typ != tokRBracket {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		lits = append(lits, lit)
	}
	closing := p.next() // consume ']'
	if len(lits) == 0 {
		return nil, &types.SyntaxError{Pos: closing.pos, Msg: "literal set must not be empty"}
	}
	if len(lits) > types.MaxSetValues {
		return nil, types.ErrTooManySetValues
	}
	return lits, nil
}

// validate walks the AST against the domain registry. No interning happens
// here; see the phase discipline in the package comment.
func (c *compiler) validate(n *astNode) error {
	if n.kind == astBool {
		for _, child := range n.children {
			if err := c.validate(child); err != nil {
				return err
			}
		}
		return nil
	}

	d, err := c.registry.resolve(n.field)
	if err != nil {
		return err
	}

	switch n.kind {
	case astCompare:
		if !d.Kind.Scalar() {
			return types.ErrInvalidOperator
		}
		if n.op != opEq && !d.Kind.Integer() {
			// Symbols have identity, not order.
			return types.ErrInvalidOperator
		}
		return validateLiteral(d, n.lit)

	case astSet:
		if !d.Kind.Scalar() {
			return types.ErrInvalidOperator
		}
		for _, lit := range n.lits {
			if err := validateLiteral(d, lit); err != nil {
				return err
			}
		}
		return nil

	case astList:
		if !d.Kind.List() {
			return types.ErrInvalidOperator
		}
		for _, lit := range n.lits {
			if err := validateLiteral(d, lit); err != nil {
				return err
			}
		}
		return nil

	case astNullCheck:
		if !d.Nullable {
			return types.ErrInvalidOperator
		}
		return nil

	case astEmptyCheck:
		if !d.Kind.List() {
			return types.ErrInvalidOperator
		}
		return nil
	}
	return nil
}

// validateLiteral checks a literal's kind and range against the domain.
func validateLiteral(d types.Domain, lit literal) error {
	switch lit.kind {
	case litString:
		if d.Kind.Integer() {
			return types.ErrTypeMismatch
		}
	case litInt:
		if !d.Kind.Integer() {
			return types.ErrTypeMismatch
		}
		if !inRange(d, lit.num) {
			return types.ErrOutOfRange
		}
	case litBool:
		// No boolean-kinded domains exist; booleans never validate.
		return types.ErrTypeMismatch
	}
	return nil
}

// build interns the validated AST bottom-up. Cannot fail.
func (c *compiler) build(n *astNode) NodeID {
	if n.kind == astBool {
		children := make([]NodeID, len(n.children))
		for i, child := range n.children {
			children[i] = c.build(child)
		}
		return c.store.intern(node{kind: nodeBool, op: n.op, children: children})
	}

	field := c.interner.internSymbol(n.field)

	switch n.kind {
	case astCompare:
		return c.store.intern(node{kind: nodeCompare, op: n.op, field: field, lit: c.internLiteral(n.lit)})
	case astSet:
		return c.store.intern(node{kind: nodeSet, op: n.op, field: field, operands: c.internLiterals(n.lits)})
	case astList:
		return c.store.intern(node{kind: nodeList, op: n.op, field: field, operands: c.internLiterals(n.lits)})
	case astNullCheck:
		return c.store.intern(node{kind: nodeNull, field: field})
	default:
		return c.store.intern(node{kind: nodeEmpty, field: field})
	}
}

func (c *compiler) internLiteral(lit literal) Handle {
	if lit.kind == litInt {
		return c.interner.internInteger(lit.num)
	}
	return c.interner.internSymbol(lit.str)
}

func (c *compiler) internLiterals(lits []literal) []Handle {
	out := make([]Handle, len(lits))
	for i, lit := range lits {
		out[i] = c.internLiteral(lit)
	}
	return out
}
