package blockdag

import (
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/blocknode"
)

// ChooseParents returns up to maxParents names of blocks that are pairwise
// unrelated, suitable as the parents of a new block.
//
// The first tip by name is always chosen. The others are taken from its
// anticone relative to the tips: the highest remaining block (by height,
// then by name) is chosen, and everything it is related to is dropped,
// until maxParents are chosen or nothing is left.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) ChooseParents(maxParents int) ([]string, error) {
	if maxParents < 1 {
		return nil, errors.Errorf("maxParents must be at least 1, got %d", maxParents)
	}

	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	tips := dag.tips.byName()
	if len(tips) == 0 {
		return nil, ruleErrorf(ErrInvalidState, "dag %s has no tips", dag.name)
	}

	first := tips[0]
	chosen := []string{first.Name}
	candidates := dag.anticone(first, tips)
	for len(chosen) < maxParents && len(candidates) > 0 {
		var highest *blocknode.Node
		for _, candidate := range candidates {
			if highest == nil || highest.Less(candidate) {
				highest = candidate
			}
		}
		chosen = append(chosen, highest.Name)
		dag.pruneRelated(highest, candidates)
	}
	return chosen, nil
}
