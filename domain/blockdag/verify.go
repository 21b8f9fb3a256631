package blockdag

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

// VerifyIntegrity recomputes every structural and classification property
// of the DAG from scratch and returns all the violations it finds, or nil.
// It expects UpdateTips to have been called for every block, and k to be
// the bound the blocks were classified with.
//
// Verification walks the whole past and anticone of every block, so it is
// meant for tests and offline replays.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) VerifyIntegrity(k dagconfig.KType) error {
	defer logger.LogAndMeasureExecutionTime(log, "VerifyIntegrity")()

	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	var result *multierror.Error
	tips := dag.tips.toSlice()
	roots := 0
	var maxHeight uint64

	dag.index.ForEach(func(node *blocknode.Node) {
		if node.IsRoot() {
			roots++
			if node != dag.root {
				result = multierror.Append(result, errors.Errorf("block %s is parentless but %s is the root",
					node.Name, dag.root))
			}
			if node.Status == blocknode.StatusRed {
				result = multierror.Append(result, errors.Errorf("root %s is red", node.Name))
			}
		}
		if node.Height > maxHeight {
			maxHeight = node.Height
		}

		for _, err := range dag.verifyStructure(node) {
			result = multierror.Append(result, err)
		}

		if node.IsTip() != dag.tips.contains(node) {
			result = multierror.Append(result, errors.Errorf("block %s has %d children but tip membership is %t",
				node.Name, len(node.Children), dag.tips.contains(node)))
		}

		blueAncestors := uint64(dag.boundedPast(node, 0).blueCount())
		if node.SizeOfPastBlue != blueAncestors {
			result = multierror.Append(result, errors.Errorf("block %s counts %d blue ancestors instead of %d",
				node.Name, node.SizeOfPastBlue, blueAncestors))
		}

		switch node.Status {
		case blocknode.StatusBlue:
			if node.SizeOfAnticoneBlue < 0 {
				result = multierror.Append(result, errors.Errorf("blue block %s doesn't track its anticone",
					node.Name))
			}
			blueAnticone := dag.anticone(node, tips).blueCount()
			if blueAnticone > int(k) {
				result = multierror.Append(result, errors.Errorf("blue block %s has %d blue blocks in its anticone, more than %d",
					node.Name, blueAnticone, k))
			}
		default:
			if node.SizeOfAnticoneBlue != blocknode.UntrackedAnticoneBlue {
				result = multierror.Append(result, errors.Errorf("%s block %s tracks %d blue blocks in its anticone",
					node.Status, node.Name, node.SizeOfAnticoneBlue))
			}
		}
	})

	if roots > 1 {
		result = multierror.Append(result, errors.Errorf("dag %s has %d parentless blocks", dag.name, roots))
	}
	if maxHeight != dag.height {
		result = multierror.Append(result, errors.Errorf("dag %s reports height %d instead of %d",
			dag.name, dag.height, maxHeight))
	}
	return result.ErrorOrNil()
}

// verifyStructure checks the height of node and that its parents and
// children refer back to it.
func (dag *BlockDAG) verifyStructure(node *blocknode.Node) []error {
	var errs []error
	var expectedHeight uint64
	for parentID := range node.Parents {
		parent := dag.index.Node(parentID)
		if parent.Height+1 > expectedHeight {
			expectedHeight = parent.Height + 1
		}
		if !parent.Children.Contains(node.ID) {
			errs = append(errs, errors.Errorf("parent %s of %s doesn't list it as a child", parent.Name, node.Name))
		}
	}
	if node.Height != expectedHeight {
		errs = append(errs, errors.Errorf("block %s has height %d instead of %d", node.Name, node.Height, expectedHeight))
	}
	for childID := range node.Children {
		child := dag.index.Node(childID)
		if !child.Parents.Contains(node.ID) {
			errs = append(errs, errors.Errorf("child %s of %s doesn't list it as a parent", child.Name, node.Name))
		}
	}
	return errs
}
