package blockdag

import (
	"strings"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

// InsertBlock adds a block named name with the given parents to the DAG.
// The block starts unclassified and isn't a tip until UpdateTips is called
// for it.
//
// A rule error is returned, and the DAG is left unchanged, when name is
// empty or taken, when a parent is unknown or listed twice, or when a
// parentless block is added to a DAG that already has a root.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) InsertBlock(name string, parentNames []string) error {
	dag.dagLock.Lock()
	defer dag.dagLock.Unlock()

	_, err := dag.insertBlock(name, parentNames)
	return err
}

func (dag *BlockDAG) insertBlock(name string, parentNames []string) (*blocknode.Node, error) {
	parents, err := dag.checkNewBlock(name, parentNames)
	if err != nil {
		return nil, err
	}

	sizeOfPastBlue := dag.initialSizeOfPastBlue(parents)
	parentIDs := blocknode.NewIDSet()
	for _, parent := range parents {
		parentIDs.Add(parent.ID)
	}
	node, err := dag.index.AddNode(name, parentIDs)
	if err != nil {
		return nil, err
	}
	node.SizeOfPastBlue = sizeOfPastBlue

	if node.IsRoot() {
		dag.root = node
	}
	if node.Height > dag.height {
		dag.height = node.Height
	}
	dag.metrics.blocks.Inc(1)
	dag.dagChanged()

	log.Tracef("Inserted block %s at height %d with %d blue ancestors",
		name, node.Height, node.SizeOfPastBlue)
	return node, nil
}

// checkNewBlock returns the parents of a prospective block, sorted by name,
// or the rule error that prevents its insertion.
func (dag *BlockDAG) checkNewBlock(name string, parentNames []string) ([]*blocknode.Node, error) {
	if name == "" {
		return nil, ruleError(ErrInvalidState, "block name must not be empty")
	}
	if dag.index.HaveBlock(name) {
		return nil, ruleErrorf(ErrDuplicateName, "block %s already exists in dag %s", name, dag.name)
	}
	if len(parentNames) == 0 && dag.root != nil {
		return nil, ruleErrorf(ErrInvalidState, "block %s has no parents but dag %s already has root %s",
			name, dag.name, dag.root.Name)
	}

	parents := newBlockSet()
	var missing []string
	for _, parentName := range parentNames {
		parent, ok := dag.index.LookupNode(parentName)
		if !ok {
			missing = append(missing, parentName)
			continue
		}
		if parents.contains(parent) {
			return nil, ruleErrorf(ErrInvalidState, "block %s lists parent %s more than once",
				name, parentName)
		}
		parents.add(parent)
	}
	if len(missing) > 0 {
		return nil, ruleErrorf(ErrNotFound, "block %s has unknown parents: %s",
			name, strings.Join(missing, ", "))
	}
	return parents.byName(), nil
}

// initialSizeOfPastBlue counts the blue blocks in the past of a block with
// the given parents. It starts from the parent with the largest blue
// inclusive past, and adds the blue blocks the other parents bring in.
func (dag *BlockDAG) initialSizeOfPastBlue(parents []*blocknode.Node) uint64 {
	if len(parents) == 0 {
		return 0
	}

	best := newMaxTracker(bySizeOfInclusivePastBlue)
	for _, parent := range parents {
		best.offer(parent)
	}

	others := make([]*blocknode.Node, 0, len(parents)-1)
	for _, parent := range parents {
		if parent != best.best {
			others = append(others, parent)
		}
	}

	sizeOfPastBlue := best.bestValue
	dag.walkExclusivePast(best.best, others, nil, func(block *blocknode.Node) bool {
		if block.IsBlue() {
			sizeOfPastBlue++
		}
		return true
	})
	return sizeOfPastBlue
}

// UpdateTips makes the block named name a tip in place of its parents. A
// block that already has children stays out of the tip set.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) UpdateTips(name string) error {
	dag.dagLock.Lock()
	defer dag.dagLock.Unlock()

	return dag.updateTips(name)
}

func (dag *BlockDAG) updateTips(name string) error {
	node, err := dag.lookupNode(name)
	if err != nil {
		return err
	}
	for _, parent := range dag.index.Nodes(node.Parents.Sorted()) {
		dag.tips.remove(parent)
	}
	if node.IsTip() {
		dag.tips.add(node)
	}
	dag.dagChanged()
	return nil
}

// AddBlock inserts a block, makes it a tip and classifies it with the
// anticone bound k, all under a single lock.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) AddBlock(name string, parentNames []string, k dagconfig.KType) (*ClassificationResult, error) {
	dag.dagLock.Lock()
	defer dag.dagLock.Unlock()

	return dag.addBlock(name, parentNames, k)
}

func (dag *BlockDAG) addBlock(name string, parentNames []string, k dagconfig.KType) (*ClassificationResult, error) {
	_, err := dag.insertBlock(name, parentNames)
	if err != nil {
		return nil, err
	}
	err = dag.updateTips(name)
	if err != nil {
		return nil, err
	}
	return dag.classify(name, k)
}

// Batch runs DAG operations under the lock taken by ProcessBatch. A Batch
// must not be used after the function it was passed to returns.
type Batch struct {
	dag *BlockDAG
}

// InsertBlock is InsertBlock of the DAG of the batch.
func (b *Batch) InsertBlock(name string, parentNames []string) error {
	_, err := b.dag.insertBlock(name, parentNames)
	return err
}

// UpdateTips is UpdateTips of the DAG of the batch.
func (b *Batch) UpdateTips(name string) error {
	return b.dag.updateTips(name)
}

// Classify is Classify of the DAG of the batch.
func (b *Batch) Classify(name string, k dagconfig.KType) (*ClassificationResult, error) {
	return b.dag.classify(name, k)
}

// AddBlock is AddBlock of the DAG of the batch.
func (b *Batch) AddBlock(name string, parentNames []string, k dagconfig.KType) (*ClassificationResult, error) {
	return b.dag.addBlock(name, parentNames, k)
}

// BlockInfo returns a snapshot of the block named name as seen inside the batch.
func (b *Batch) BlockInfo(name string) (*BlockInfo, error) {
	node, err := b.dag.lookupNode(name)
	if err != nil {
		return nil, err
	}
	return b.dag.blockInfo(node), nil
}

// ProcessBatch calls fn with a Batch while holding the DAG lock for writes,
// so no other goroutine observes the DAG between the operations fn runs.
// Operations that already completed are kept when fn returns an error.
//
// This function is safe for concurrent access.
func (dag *BlockDAG) ProcessBatch(fn func(batch *Batch) error) error {
	defer logger.LogAndMeasureExecutionTime(log, "ProcessBatch")()

	dag.dagLock.Lock()
	defer dag.dagLock.Unlock()

	return fn(&Batch{dag: dag})
}
