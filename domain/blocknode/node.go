package blocknode

import (
	"fmt"
	"sort"
)

// ID identifies a node inside the Index that created it. IDs are assigned
// in insertion order, starting from zero for the root.
type ID uint32

// Status is representing the classification state of the block.
type Status byte

const (
	// StatusUnclassified indicates that the block hasn't been accepted into
	// the blue set yet. It may still become blue when a later block
	// re-evaluates it.
	StatusUnclassified Status = iota

	// StatusBlue indicates that the block is in the blue set.
	StatusBlue

	// StatusRed indicates that the block was removed from the blue set. Red is
	// terminal: a red block never becomes blue again.
	StatusRed
)

var blockStatusToString = map[Status]string{
	StatusUnclassified: "StatusUnclassified",
	StatusBlue:         "StatusBlue",
	StatusRed:          "StatusRed",
}

func (status Status) String() string {
	s, ok := blockStatusToString[status]
	if !ok {
		return fmt.Sprintf("Status(%d)", byte(status))
	}
	return s
}

// UntrackedAnticoneBlue is the value of SizeOfAnticoneBlue for blocks that
// aren't blue.
const UntrackedAnticoneBlue = -1

// IDSet is an unordered set of node IDs.
type IDSet map[ID]struct{}

// NewIDSet creates a set of the given ids.
func NewIDSet(ids ...ID) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add adds id to the set.
func (s IDSet) Add(id ID) {
	s[id] = struct{}{}
}

// Remove removes id from the set. Does nothing if id isn't in the set.
func (s IDSet) Remove(id ID) {
	delete(s, id)
}

// Contains returns true iff id is in the set.
func (s IDSet) Contains(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids of the set in ascending order.
func (s IDSet) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Node represents a block within the block DAG.
type Node struct {
	// ID is the position of this node in its Index.
	ID ID

	// Name uniquely identifies the block.
	Name string

	// Parents are the direct parents of this block. They are fixed when
	// the node is created.
	Parents IDSet

	// Children are all the blocks that refer to this block as a parent.
	Children IDSet

	// Height is 0 for the root, and one more than the highest parent otherwise.
	Height uint64

	// Status is the classification of the block.
	Status Status

	// SizeOfPastBlue is the number of blue blocks among the strict
	// ancestors of this block. The block's own status isn't counted.
	SizeOfPastBlue uint64

	// SizeOfAnticoneBlue is the running number of blue blocks observed in
	// the anticone of this block while it is blue, and UntrackedAnticoneBlue
	// otherwise.
	SizeOfAnticoneBlue int
}

// IsRoot returns whether this node is the parentless root of the DAG.
func (node *Node) IsRoot() bool {
	return len(node.Parents) == 0
}

// IsBlue returns whether this node is in the blue set.
func (node *Node) IsBlue() bool {
	return node.Status == StatusBlue
}

// IsTip returns whether no known block refers to this node as a parent.
func (node *Node) IsTip() bool {
	return len(node.Children) == 0
}

// Less returns true if node is lower than other: by height, then by name.
func (node *Node) Less(other *Node) bool {
	if node.Height != other.Height {
		return node.Height < other.Height
	}
	return node.Name < other.Name
}

func (node *Node) String() string {
	return node.Name
}
