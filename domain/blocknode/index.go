package blocknode

import (
	"math"

	"github.com/pkg/errors"
)

// Index is the arena owning every node of a DAG. Nodes are never removed,
// so an ID stays valid for the lifetime of the Index.
//
// Index is NOT safe for concurrent access; its owner serializes mutations.
type Index struct {
	nodes  []*Node
	byName map[string]ID
}

// NewIndex returns a new empty instance of a block Index.
func NewIndex() *Index {
	return &Index{
		byName: make(map[string]ID),
	}
}

// HaveBlock returns whether or not the block Index contains a block named name.
func (bi *Index) HaveBlock(name string) bool {
	_, ok := bi.byName[name]
	return ok
}

// LookupNode returns the node named name.
func (bi *Index) LookupNode(name string) (*Node, bool) {
	id, ok := bi.byName[name]
	if !ok {
		return nil, false
	}
	return bi.nodes[id], true
}

// Node returns the node of the given id. It panics if id wasn't created by
// this Index.
func (bi *Index) Node(id ID) *Node {
	return bi.nodes[id]
}

// Nodes returns the nodes of the given ids, in the same order.
func (bi *Index) Nodes(ids []ID) []*Node {
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = bi.nodes[id]
	}
	return nodes
}

// Len returns the number of nodes in the Index.
func (bi *Index) Len() int {
	return len(bi.nodes)
}

// ForEach calls fn for every node, in insertion order.
func (bi *Index) ForEach(fn func(node *Node)) {
	for _, node := range bi.nodes {
		fn(node)
	}
}

// AddNode creates a node named name with the given parents, links it as a
// child of each parent and returns it. The caller is responsible for
// checking that name is new and that the parents exist.
func (bi *Index) AddNode(name string, parents IDSet) (*Node, error) {
	if uint64(len(bi.nodes)) > math.MaxUint32 {
		return nil, errors.Errorf("block index is full, cannot add %s", name)
	}

	node := &Node{
		ID:                 ID(len(bi.nodes)),
		Name:               name,
		Parents:            parents,
		Children:           make(IDSet),
		Status:             StatusUnclassified,
		SizeOfAnticoneBlue: UntrackedAnticoneBlue,
	}
	for parentID := range parents {
		parent := bi.nodes[parentID]
		if parent.Height+1 > node.Height {
			node.Height = parent.Height + 1
		}
		parent.Children.Add(node.ID)
	}

	bi.nodes = append(bi.nodes, node)
	bi.byName[name] = node.ID
	return node, nil
}
