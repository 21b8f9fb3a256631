package blockdag

import (
	"github.com/ef-ds/deque"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
)

type walkState byte

const (
	walkCandidate walkState = iota + 1
	walkPast
)

// walkExclusivePast visits every block that is in the inclusive past of some
// block in refs, but not in the inclusive past of base, skipping the blocks
// of excluded. Visiting stops, and false is returned, as soon as visit
// returns false.
//
// Blocks are popped from a single heap in descending height. A block in the
// past of base is always marked as such by one of its children before it's
// popped, since children are higher. Once no unmarked candidate is left in
// the heap everything that remains is in the past of base, so the walk ends
// there instead of reaching the root.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) walkExclusivePast(base *blocknode.Node, refs []*blocknode.Node,
	excluded blockSet, visit func(block *blocknode.Node) bool) bool {

	states := make(map[blocknode.ID]walkState)
	queue := blocknode.NewDownHeap()
	pendingCandidates := 0

	push := func(block *blocknode.Node, state walkState) {
		current, seen := states[block.ID]
		switch {
		case !seen:
			states[block.ID] = state
			queue.Push(block)
			if state == walkCandidate {
				pendingCandidates++
			}
		case current == walkCandidate && state == walkPast:
			states[block.ID] = walkPast
			pendingCandidates--
		}
	}

	push(base, walkPast)
	for _, ref := range refs {
		push(ref, walkCandidate)
	}

	for queue.Len() > 0 && pendingCandidates > 0 {
		current := queue.Pop()
		state := states[current.ID]
		if state == walkCandidate {
			pendingCandidates--
			if !excluded.contains(current) && !visit(current) {
				return false
			}
		}
		for _, parentID := range current.Parents.Sorted() {
			push(dag.index.Node(parentID), state)
		}
	}
	return true
}

// future returns every descendant of block.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) future(block *blocknode.Node) blockSet {
	future := newBlockSet()
	dag.forEachDescendant(block, func(descendant *blocknode.Node) {
		future.add(descendant)
	})
	return future
}

// forEachDescendant calls fn exactly once for every descendant of block,
// however many paths lead to it. The walk uses an explicit worklist and is
// unbounded: it reaches every block in the future of block.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) forEachDescendant(block *blocknode.Node, fn func(descendant *blocknode.Node)) {
	visited := blocknode.NewIDSet(block.ID)
	var queue deque.Deque
	queue.PushBack(block)

	for queue.Len() > 0 {
		item, _ := queue.PopFront()
		current := item.(*blocknode.Node)
		for _, childID := range current.Children.Sorted() {
			if visited.Contains(childID) {
				continue
			}
			visited.Add(childID)
			child := dag.index.Node(childID)
			fn(child)
			queue.PushBack(child)
		}
	}
}

// anticone returns the blocks in the inclusive past of refs that are neither
// ancestors nor descendants of target, nor target itself.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) anticone(target *blocknode.Node, refs []*blocknode.Node) blockSet {
	anticone := newBlockSet()
	dag.walkExclusivePast(target, refs, dag.future(target), func(block *blocknode.Node) bool {
		anticone.add(block)
		return true
	})
	return anticone
}

// blueAnticone returns the anticone of target relative to refs together
// with the number of blue blocks in it. isDetermined is false when refs is
// empty or when more than k blue blocks were found, in which case the walk
// was cut short and neither the set nor the count are meaningful.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) blueAnticone(target *blocknode.Node, refs []*blocknode.Node, k dagconfig.KType) (
	anticone blockSet, blueCount int, isDetermined bool) {

	if len(refs) == 0 {
		return nil, 0, false
	}

	anticone = newBlockSet()
	completed := dag.walkExclusivePast(target, refs, dag.future(target), func(block *blocknode.Node) bool {
		anticone.add(block)
		if block.IsBlue() {
			blueCount++
		}
		return blueCount <= int(k)
	})
	if !completed {
		return nil, 0, false
	}
	return anticone, blueCount, true
}

// pruneRelated removes from set, in place, the reference block and every
// member of set that is an ancestor or a descendant of reference.
//
// Both walks stop at the height range of set: nothing lower than its lowest
// member can be pruned by the backward walk, nor anything higher than its
// highest member by the forward one.
//
// This function is NOT safe for concurrent access.
func (dag *BlockDAG) pruneRelated(reference *blocknode.Node, set blockSet) {
	set.remove(reference)
	if len(set) == 0 {
		return
	}

	lowest := newMinTracker(byHeight)
	highest := newMaxTracker(byHeight)
	for _, block := range set {
		lowest.offer(block)
		highest.offer(block)
	}

	related := mergeSets(
		dag.boundedPast(reference, lowest.bestValue),
		dag.boundedFuture(reference, highest.bestValue))
	for _, block := range related {
		set.remove(block)
	}
}

// boundedPast returns the ancestors of block whose height is at least minHeight.
func (dag *BlockDAG) boundedPast(block *blocknode.Node, minHeight uint64) blockSet {
	return dag.boundedWalk(block, func(current *blocknode.Node) blocknode.IDSet { return current.Parents },
		func(next *blocknode.Node) bool { return next.Height >= minHeight })
}

// boundedFuture returns the descendants of block whose height is at most maxHeight.
func (dag *BlockDAG) boundedFuture(block *blocknode.Node, maxHeight uint64) blockSet {
	return dag.boundedWalk(block, func(current *blocknode.Node) blocknode.IDSet { return current.Children },
		func(next *blocknode.Node) bool { return next.Height <= maxHeight })
}

func (dag *BlockDAG) boundedWalk(block *blocknode.Node, neighbors func(current *blocknode.Node) blocknode.IDSet,
	inBounds func(next *blocknode.Node) bool) blockSet {

	reached := newBlockSet()
	var queue deque.Deque
	queue.PushBack(block)

	for queue.Len() > 0 {
		item, _ := queue.PopFront()
		current := item.(*blocknode.Node)
		for neighborID := range neighbors(current) {
			neighbor := dag.index.Node(neighborID)
			if reached.contains(neighbor) || !inBounds(neighbor) {
				continue
			}
			reached.add(neighbor)
			queue.PushBack(neighbor)
		}
	}
	return reached
}
