package blockdag

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
)

// BlockDAG owns a DAG of named blocks and maintains its blue set.
//
// All of its methods are safe for concurrent access. Mutations are
// serialized by a single lock, queries share it and return copies.
type BlockDAG struct {
	// The following fields are set when the instance is created and can't
	// be changed afterwards, so there is no need to protect them.
	name   string
	params dagconfig.Params

	// metrics and anticoneCache have their own synchronization.
	metrics       *dagMetrics
	anticoneCache *lru.Cache

	// dagLock protects every field below this point, as well as every node
	// of index.
	dagLock sync.RWMutex

	index  *blocknode.Index
	root   *blocknode.Node
	tips   blockSet
	height uint64
}

// New returns an empty BlockDAG named name using the given network
// parameters. The parameters are copied.
func New(name string, params *dagconfig.Params) (*BlockDAG, error) {
	if params == nil {
		return nil, errors.New("dag params must not be nil")
	}
	err := params.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid params for dag %s", name)
	}
	anticoneCache, err := lru.New(params.AnticoneCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the anticone cache")
	}

	dag := &BlockDAG{
		name:          name,
		params:        *params,
		metrics:       newDAGMetrics(),
		anticoneCache: anticoneCache,
		index:         blocknode.NewIndex(),
		tips:          newBlockSet(),
	}
	log.Debugf("Created dag %s on %s with K=%d", name, params.Name, params.K)
	return dag, nil
}

// Name returns the name the DAG was created with.
func (dag *BlockDAG) Name() string {
	return dag.name
}

// Params returns a copy of the network parameters of the DAG.
func (dag *BlockDAG) Params() dagconfig.Params {
	return dag.params
}

// BlockInfo is a snapshot of a single block.
type BlockInfo struct {
	Name               string
	Parents            []string
	Children           []string
	Height             uint64
	Status             blocknode.Status
	SizeOfPastBlue     uint64
	SizeOfAnticoneBlue int
	IsTip              bool
}

func (dag *BlockDAG) blockInfo(node *blocknode.Node) *BlockInfo {
	return &BlockInfo{
		Name:               node.Name,
		Parents:            dag.sortedNames(node.Parents),
		Children:           dag.sortedNames(node.Children),
		Height:             node.Height,
		Status:             node.Status,
		SizeOfPastBlue:     node.SizeOfPastBlue,
		SizeOfAnticoneBlue: node.SizeOfAnticoneBlue,
		IsTip:              dag.tips.contains(node),
	}
}

func (dag *BlockDAG) sortedNames(ids blocknode.IDSet) []string {
	nodes := dag.nodesByName(ids)
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	return names
}

// BlockInfo returns a snapshot of the block named name.
func (dag *BlockDAG) BlockInfo(name string) (*BlockInfo, error) {
	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	node, err := dag.lookupNode(name)
	if err != nil {
		return nil, err
	}
	return dag.blockInfo(node), nil
}

// HaveBlock returns whether a block named name is in the DAG.
func (dag *BlockDAG) HaveBlock(name string) bool {
	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	return dag.index.HaveBlock(name)
}

// Tips returns the names of the current tips, sorted.
func (dag *BlockDAG) Tips() []string {
	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	return dag.tips.names()
}

// Height returns the maximal height over all blocks, or 0 for an empty DAG.
func (dag *BlockDAG) Height() uint64 {
	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	return dag.height
}

// BlockCount returns the number of blocks in the DAG.
func (dag *BlockDAG) BlockCount() int {
	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	return dag.index.Len()
}

// Anticone returns the names of the anticone of the block named name
// relative to the current tips, ascending by height and then by name.
func (dag *BlockDAG) Anticone(name string) ([]string, error) {
	if cached, ok := dag.anticoneCache.Get(name); ok {
		return append([]string(nil), cached.([]string)...), nil
	}

	dag.dagLock.RLock()
	defer dag.dagLock.RUnlock()

	node, err := dag.lookupNode(name)
	if err != nil {
		return nil, err
	}
	sorted := dag.anticone(node, dag.tips.toSlice()).bySortedHeight()
	names := make([]string, len(sorted))
	for i, block := range sorted {
		names[i] = block.Name
	}
	dag.anticoneCache.Add(name, names)
	return append([]string(nil), names...), nil
}

// lookupNode returns the node named name, or an ErrNotFound rule error.
//
// This function MUST be called with the DAG lock held (for reads).
func (dag *BlockDAG) lookupNode(name string) (*blocknode.Node, error) {
	node, ok := dag.index.LookupNode(name)
	if !ok {
		return nil, ruleErrorf(ErrNotFound, "block %s is not in dag %s", name, dag.name)
	}
	return node, nil
}

// dagChanged drops every result derived from the previous state of the DAG.
//
// This function MUST be called with the DAG lock held (for writes).
func (dag *BlockDAG) dagChanged() {
	dag.anticoneCache.Purge()
	dag.metrics.tips.Update(int64(len(dag.tips)))
}
