package blockdag

import (
	"sort"
	"strings"

	"github.com/kaspanet/bluedag/domain/blocknode"
)

// blockSet implements a basic unsorted set of blocks
type blockSet map[blocknode.ID]*blocknode.Node

// newBlockSet creates a new, empty blockSet
func newBlockSet() blockSet {
	return map[blocknode.ID]*blocknode.Node{}
}

// blockSetFromSlice converts a slice of blocks into an unordered set represented as map
func blockSetFromSlice(blocks ...*blocknode.Node) blockSet {
	set := newBlockSet()
	for _, block := range blocks {
		set.add(block)
	}
	return set
}

// add adds a block to this blockSet
func (bs blockSet) add(block *blocknode.Node) {
	bs[block.ID] = block
}

// remove removes a block from this blockSet, if exists
// Does nothing if this set does not contain the block
func (bs blockSet) remove(block *blocknode.Node) {
	delete(bs, block.ID)
}

// contains returns true iff this set contains block
func (bs blockSet) contains(block *blocknode.Node) bool {
	_, ok := bs[block.ID]
	return ok
}

// addSet adds all blocks in other set to this set
func (bs blockSet) addSet(other blockSet) {
	for id, block := range other {
		bs[id] = block
	}
}

// bySortedHeight returns the blocks of this set sorted ascending by height,
// ties broken by name.
func (bs blockSet) bySortedHeight() []*blocknode.Node {
	blocks := bs.toSlice()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Less(blocks[j]) })
	return blocks
}

// byName returns the blocks of this set sorted by name.
func (bs blockSet) byName() []*blocknode.Node {
	blocks := bs.toSlice()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Name < blocks[j].Name })
	return blocks
}

// toSlice converts a set of blocks into an unordered slice
func (bs blockSet) toSlice() []*blocknode.Node {
	slice := make([]*blocknode.Node, 0, len(bs))
	for _, block := range bs {
		slice = append(slice, block)
	}
	return slice
}

// blueCount returns the number of blue blocks in this set.
func (bs blockSet) blueCount() int {
	count := 0
	for _, block := range bs {
		if block.IsBlue() {
			count++
		}
	}
	return count
}

// names returns the names of the blocks in this set, sorted.
func (bs blockSet) names() []string {
	names := make([]string, 0, len(bs))
	for _, block := range bs {
		names = append(names, block.Name)
	}
	sort.Strings(names)
	return names
}

func (bs blockSet) String() string {
	return "[" + strings.Join(bs.names(), ", ") + "]"
}

// mergeSets returns a new set holding every block of every given set.
func mergeSets(sets ...blockSet) blockSet {
	merged := newBlockSet()
	for _, set := range sets {
		merged.addSet(set)
	}
	return merged
}

// extremeTracker keeps the block with the maximal (or minimal) key among the
// blocks offered to it. Only a strictly better key replaces the incumbent, so
// among equal keys the first offered block wins.
type extremeTracker struct {
	key       func(block *blocknode.Node) uint64
	isBetter  func(candidate, incumbent uint64) bool
	best      *blocknode.Node
	bestValue uint64
}

func newMaxTracker(key func(block *blocknode.Node) uint64) *extremeTracker {
	return &extremeTracker{key: key, isBetter: func(candidate, incumbent uint64) bool { return candidate > incumbent }}
}

func newMinTracker(key func(block *blocknode.Node) uint64) *extremeTracker {
	return &extremeTracker{key: key, isBetter: func(candidate, incumbent uint64) bool { return candidate < incumbent }}
}

// offer considers block as the new extreme and returns whether it became one.
func (t *extremeTracker) offer(block *blocknode.Node) bool {
	value := t.key(block)
	if t.best != nil && !t.isBetter(value, t.bestValue) {
		return false
	}
	t.best = block
	t.bestValue = value
	return true
}

func byHeight(block *blocknode.Node) uint64 {
	return block.Height
}

// bySizeOfInclusivePastBlue counts the block itself as well as its blue past.
func bySizeOfInclusivePastBlue(block *blocknode.Node) uint64 {
	if block.IsBlue() {
		return block.SizeOfPastBlue + 1
	}
	return block.SizeOfPastBlue
}
