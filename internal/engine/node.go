package engine

import (
	"strconv"
)

/*
 * Structurally-interned node store.
 *
 * Expression nodes live in an arena indexed by NodeID. A content key built
 * from (kind, op, field, operand handles, child ids) maps every structure to
 * exactly one live NodeID, so a subexpression shared by many stored
 * expressions is represented once. The graph is acyclic by construction:
 * nodes are built bottom-up during compilation and children always have
 * ids that already existed.
 *
 * Reference counting:
 *   - intern() of a new node takes one reference on each child
 *   - the expression table takes one reference on each root (retain)
 *   - release() decrements, and at zero refs evicts the node, releases its
 *     children transitively, and recycles the arena slot
 *
 * A recycled slot may later hold a different node under a fresh content
 * key; NodeID identity is a pure function of structure only while the node
 * is live, which is all the evaluator's per-call memo table requires.
 */

// NodeID identifies one live node in the store. Zero is never a valid id.
type NodeID uint32

type nodeKind uint8

const (
	nodeInvalid nodeKind = iota
	nodeCompare          // op field literal
	nodeBool             // and/or/not over children
	nodeSet              // in/not-in over scalar field and operand set
	nodeList             // one-of/all-of/none-of over list field and operand list
	nodeNull             // null? field
	nodeEmpty            // empty? field
)

type opCode uint8

const (
	opNone opCode = iota
	opEq
	opLt
	opLte
	opGt
	opGte
	opAnd
	opOr
	opNot
	opIn
	opNotIn
	opOneOf
	opAllOf
	opNoneOf
)

// node is immutable once interned. Only refs changes over its lifetime.
type node struct {
	kind     nodeKind
	op       opCode
	field    Handle   // field-name handle (unused for nodeBool)
	lit      Handle   // literal handle (nodeCompare only)
	operands []Handle // literal set/list (nodeSet, nodeList)
	children []NodeID // nodeBool only, declared order
	refs     int
}

type nodeStore struct {
	nodes []node // nodes[0] is a sentinel; NodeID indexes directly
	index map[string]NodeID
	free  []NodeID
	live  int
}

func newNodeStore() *nodeStore {
	return &nodeStore{
		nodes: make([]node, 1),
		index: make(map[string]NodeID),
	}
}

// contentKey serializes the structural identity of a node. Symbol and
// integer handles occupy distinct spaces, but a key never mixes them: all
// literals attached to one field share that field's domain kind.
func contentKey(n *node) string {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(n.kind), byte(n.op), '|')
	buf = strconv.AppendUint(buf, uint64(n.field), 36)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, uint64(n.lit), 36)
	for _, h := range n.operands {
		buf = append(buf, ',')
		buf = strconv.AppendUint(buf, uint64(h), 36)
	}
	for _, c := range n.children {
		buf = append(buf, ';')
		buf = strconv.AppendUint(buf, uint64(c), 36)
	}
	return string(buf)
}

// intern deduplicates n against the live corpus. New nodes start at zero
// refs (the caller retains roots; parents retain children) and take one
// reference on each child. Existing nodes are returned as-is: their
// children are already accounted for.
func (s *nodeStore) intern(n node) NodeID {
	key := contentKey(&n)
	if id, ok := s.index[key]; ok {
		return id
	}

	var id NodeID
	if k := len(s.free); k > 0 {
		id = s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[id] = n
	} else {
		s.nodes = append(s.nodes, n)
		id = NodeID(len(s.nodes) - 1)
	}
	s.index[key] = id
	s.live++

	for _, c := range n.children {
		s.nodes[c].refs++
	}
	return id
}

// retain takes one reference on id. Used by the expression table for roots.
func (s *nodeStore) retain(id NodeID) {
	s.nodes[id].refs++
}

// release drops one reference on id, evicting at zero and releasing
// children transitively.
func (s *nodeStore) release(id NodeID) {
	n := &s.nodes[id]
	n.refs--
	if n.refs > 0 {
		return
	}
	delete(s.index, contentKey(n))
	children := n.children
	s.nodes[id] = node{}
	s.free = append(s.free, id)
	s.live--
	for _, c := range children {
		s.release(c)
	}
}

// get returns the node for a live id.
func (s *nodeStore) get(id NodeID) *node {
	return &s.nodes[id]
}

// count reports the number of live nodes.
func (s *nodeStore) count() int {
	return s.live
}

// refCount reports the reference count of a live node. Test observability.
func (s *nodeStore) refCount(id NodeID) int {
	return s.nodes[id].refs
}
