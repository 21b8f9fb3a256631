package blockdag

import (
	"time"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

// ClassificationResult describes what a single Classify call changed.
type ClassificationResult struct {
	// Block is the name of the classified block.
	Block string

	// Status is the status of the block once the call returned. It may be
	// StatusRed when a later step of the same call demoted it.
	Status blocknode.Status

	// SelectedTip is the tip with the largest blue past, which is the block
	// itself when nothing beats it. Empty for the root.
	SelectedTip string

	// AnticoneBlueCount is the number of blue blocks that were found in the
	// anticone of the block when it turned blue.
	AnticoneBlueCount int

	// PromotedParents are the previously unclassified parents that turned blue.
	PromotedParents []string

	// Demoted are the blocks turned red, in the order they were demoted.
	Demoted []string

	// Inconsistent is set when the block was its own selected tip and still
	// couldn't be made blue.
	Inconsistent bool
}

// Classify runs the blue set maintenance for the block named name, which
// must be unclassified and must already be inserted with its tips updated.
// k bounds the number of blue blocks in the anticone of any blue block.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) Classify(name string, k dagconfig.KType) (*ClassificationResult, error) {
	defer logger.LogAndMeasureExecutionTime(log, "Classify")()

	dag.dagLock.Lock()
	defer dag.dagLock.Unlock()

	return dag.classify(name, k)
}

func (dag *BlockDAG) classify(name string, k dagconfig.KType) (*ClassificationResult, error) {
	defer dag.metrics.classify.UpdateSince(time.Now())

	node, err := dag.lookupNode(name)
	if err != nil {
		log.Warnf("Cannot classify: %s", err)
		return nil, err
	}
	if node.Status != blocknode.StatusUnclassified {
		err := ruleErrorf(ErrInvalidState, "block %s is already classified as %s", name, node.Status)
		log.Warnf("Cannot classify: %s", err)
		return nil, err
	}

	result := &ClassificationResult{Block: name}
	defer dag.dagChanged()

	if node.IsRoot() {
		dag.markBlue(node, 0)
		result.Status = node.Status
		log.Debugf("Root %s is blue", name)
		return result, nil
	}

	if len(dag.tips) == 0 {
		err := ruleErrorf(ErrInvalidState, "cannot classify block %s: dag %s has no tips", name, dag.name)
		log.Warnf("Cannot classify: %s", err)
		return nil, err
	}

	refs := dag.tips.byName()
	selectedTip := node
	for _, tip := range refs {
		if tip.SizeOfPastBlue > selectedTip.SizeOfPastBlue {
			selectedTip = tip
		}
	}
	result.SelectedTip = selectedTip.Name

	if selectedTip != node {
		dag.tryPromote(node, refs, k, result)
		result.Status = node.Status
		dag.logResult(result)
		return result, nil
	}

	if !dag.tryPromote(node, refs, k, result) {
		result.Inconsistent = true
		dag.metrics.inconsistencies.Inc(1)
		log.Warnf("Block %s is its own selected tip but has more than %d blue blocks in its anticone",
			name, k)
	}
	for _, parent := range dag.nodesByName(node.Parents) {
		if parent.Status != blocknode.StatusUnclassified {
			continue
		}
		if dag.tryPromote(parent, refs, k, result) {
			result.PromotedParents = append(result.PromotedParents, parent.Name)
			dag.metrics.promotions.Inc(1)
		}
	}
	result.Status = node.Status
	dag.logResult(result)
	return result, nil
}

// tryPromote turns block blue if its anticone relative to refs holds at most
// k blue blocks, and updates every blue block of that anticone accordingly.
func (dag *BlockDAG) tryPromote(block *blocknode.Node, refs []*blocknode.Node, k dagconfig.KType,
	result *ClassificationResult) bool {

	anticone, blueCount, isDetermined := dag.blueAnticone(block, refs, k)
	if !isDetermined {
		log.Tracef("Block %s has more than %d blue blocks in its anticone", block.Name, k)
		return false
	}
	dag.markBlue(block, blueCount)
	if block.Name == result.Block {
		result.AnticoneBlueCount = blueCount
	}
	dag.checkBlue(anticone, k, result)
	return true
}

// checkBlue accounts for a new blue block in the anticone of every blue
// member of set. A member that can't take one more blue block is demoted.
// The root is never demoted.
func (dag *BlockDAG) checkBlue(set blockSet, k dagconfig.KType, result *ClassificationResult) {
	for _, block := range set.bySortedHeight() {
		if !block.IsBlue() {
			continue
		}
		if block.SizeOfAnticoneBlue+1 >= int(k) && !block.IsRoot() {
			dag.demote(block, result)
			continue
		}
		block.SizeOfAnticoneBlue++
	}
}

// markBlue turns block blue with blueCount blue blocks in its anticone, and
// counts it in the blue past of every descendant.
func (dag *BlockDAG) markBlue(block *blocknode.Node, blueCount int) {
	block.Status = blocknode.StatusBlue
	block.SizeOfAnticoneBlue = blueCount
	dag.metrics.blues.Inc(1)

	dag.forEachDescendant(block, func(descendant *blocknode.Node) {
		descendant.SizeOfPastBlue++
		dag.metrics.cascadeVisits.Inc(1)
	})
}

// demote turns block red and removes it from the blue past of every
// descendant. Each descendant is updated once, however many paths lead to it.
func (dag *BlockDAG) demote(block *blocknode.Node, result *ClassificationResult) {
	block.Status = blocknode.StatusRed
	block.SizeOfAnticoneBlue = blocknode.UntrackedAnticoneBlue
	dag.metrics.blues.Dec(1)
	dag.metrics.demotions.Inc(1)
	result.Demoted = append(result.Demoted, block.Name)

	dag.forEachDescendant(block, func(descendant *blocknode.Node) {
		descendant.SizeOfPastBlue--
		dag.metrics.cascadeVisits.Inc(1)
	})
	log.Debugf("Demoted block %s while classifying %s", block.Name, result.Block)
}

func (dag *BlockDAG) nodesByName(ids blocknode.IDSet) []*blocknode.Node {
	set := newBlockSet()
	for id := range ids {
		set.add(dag.index.Node(id))
	}
	return set.byName()
}

func (dag *BlockDAG) logResult(result *ClassificationResult) {
	log.Debugf("Classified block %s as %s (selected tip %s, promoted parents %v, demoted %v)",
		result.Block, result.Status, result.SelectedTip, result.PromotedParents, result.Demoted)
}
