package blockdag

import (
	"reflect"
	"sort"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/rcrowley/go-metrics"

	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/domain/dagconfig"
	"github.com/kaspanet/bluedag/domain/dagscenarios"
)

func blocksWithStatus(t *testing.T, testName string, dag *BlockDAG, scenario *dagscenarios.Scenario,
	status blocknode.Status) []string {

	var names []string
	for _, block := range scenario.Blocks {
		if mustBlockInfo(t, testName, dag, block.Name).Status == status {
			names = append(names, block.Name)
		}
	}
	sort.Strings(names)
	return names
}

func counterValue(t *testing.T, dag *BlockDAG, name string) int64 {
	counter, ok := dag.Metrics().Get(name).(metrics.Counter)
	if !ok {
		t.Fatalf("metric %s is not a registered counter", name)
	}
	return counter.Count()
}

// TestClassifyScenarios replays every built-in scenario one block at a time,
// verifying the whole DAG after each block.
func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		scenario                *dagscenarios.Scenario
		expectedBlues           []string
		expectedTips            []string
		expectedDemotions       int64
		expectedInconsistencies int64
	}{
		{
			scenario:          &dagscenarios.AnticoneExample,
			expectedBlues:     []string{"Genesis", "K", "M"},
			expectedTips:      []string{"J", "L", "M"},
			expectedDemotions: 9,
		},
		{
			scenario:          &dagscenarios.Fig3,
			expectedBlues:     []string{"Genesis", "K", "M", "N"},
			expectedTips:      []string{"J", "M", "N"},
			expectedDemotions: 9,
		},
		{
			scenario:          &dagscenarios.Fig4,
			expectedBlues:     []string{"Genesis", "S", "T", "U"},
			expectedTips:      []string{"M", "R", "U"},
			expectedDemotions: 16,
		},
		{
			scenario:                &dagscenarios.FigX1,
			expectedBlues:           []string{"01", "05", "08", "10", "13", "14", "16", "17", "19", "24", "27", "42", "B", "Genesis"},
			expectedTips:            []string{"35", "42", "43", "44", "45"},
			expectedInconsistencies: 31,
		},
		{
			scenario:                &dagscenarios.FigX2,
			expectedBlues:           []string{"01", "06", "11", "16", "21", "26", "31", "36", "41", "Genesis"},
			expectedTips:            []string{"41", "42", "43", "44", "45"},
			expectedInconsistencies: 36,
		},
	}

	for _, test := range tests {
		scenario := test.scenario
		dag := newTestDAG(t, "TestClassifyScenarios")
		for _, block := range scenario.Blocks {
			_, err := dag.AddBlock(block.Name, block.Parents, scenario.K)
			if err != nil {
				t.Fatalf("TestClassifyScenarios: %s: AddBlock(%s) unexpectedly failed: %s",
					scenario.Name, block.Name, err)
			}
			err = dag.VerifyIntegrity(scenario.K)
			if err != nil {
				t.Fatalf("TestClassifyScenarios: %s: integrity violated after %s: %s",
					scenario.Name, block.Name, err)
			}
		}

		blues := blocksWithStatus(t, "TestClassifyScenarios", dag, scenario, blocknode.StatusBlue)
		if !reflect.DeepEqual(blues, test.expectedBlues) {
			t.Errorf("TestClassifyScenarios: %s: expected blues %v, got %v", scenario.Name, test.expectedBlues, blues)
		}
		if !reflect.DeepEqual(dag.Tips(), test.expectedTips) {
			t.Errorf("TestClassifyScenarios: %s: expected tips %v, got %v", scenario.Name, test.expectedTips, dag.Tips())
		}
		reds := blocksWithStatus(t, "TestClassifyScenarios", dag, scenario, blocknode.StatusRed)
		if int64(len(reds)) != test.expectedDemotions {
			t.Errorf("TestClassifyScenarios: %s: expected %d red blocks, got %v",
				scenario.Name, test.expectedDemotions, reds)
		}

		expectedCounters := map[string]int64{
			MetricBlocks:          int64(len(scenario.Blocks)),
			MetricBlues:           int64(len(test.expectedBlues)),
			MetricDemotions:       test.expectedDemotions,
			MetricInconsistencies: test.expectedInconsistencies,
		}
		for name, expected := range expectedCounters {
			if value := counterValue(t, dag, name); value != expected {
				t.Errorf("TestClassifyScenarios: %s: expected %s to be %d, got %d",
					scenario.Name, name, expected, value)
			}
		}
	}
}

func TestRootInvariant(t *testing.T) {
	dag := newTestDAG(t, "TestRootInvariant")
	results := addBlocks(t, "TestRootInvariant", dag, dagscenarios.Fig4.K, dagscenarios.Fig4.Blocks)

	rootResult := results[0]
	if rootResult.Status != blocknode.StatusBlue || rootResult.SelectedTip != "" {
		t.Fatalf("TestRootInvariant: unexpected root result %s", spew.Sdump(rootResult))
	}
	info := mustBlockInfo(t, "TestRootInvariant", dag, dagscenarios.GenesisName)
	if info.Status != blocknode.StatusBlue || info.Height != 0 || len(info.Parents) != 0 {
		t.Fatalf("TestRootInvariant: unexpected root %s", spew.Sdump(info))
	}
	for _, result := range results {
		for _, demoted := range result.Demoted {
			if demoted == dagscenarios.GenesisName {
				t.Fatalf("TestRootInvariant: the root was demoted while classifying %s", result.Block)
			}
		}
	}
}

// TestSelectedTipTieBreak makes sure that the new block keeps being the
// selected tip as long as no tip has strictly more blue ancestors.
func TestSelectedTipTieBreak(t *testing.T) {
	dag := newTestDAG(t, "TestSelectedTipTieBreak")
	results := addBlocks(t, "TestSelectedTipTieBreak", dag, 3, []dagscenarios.Block{
		{Name: "Genesis"},
		{Name: "B", Parents: []string{"Genesis"}},
		{Name: "A", Parents: []string{"Genesis"}},
		{Name: "C", Parents: []string{"B"}},
		{Name: "D", Parents: []string{"Genesis"}},
	})

	expectedSelectedTips := []string{"", "B", "A", "C", "C"}
	for i, result := range results {
		if result.SelectedTip != expectedSelectedTips[i] {
			t.Errorf("TestSelectedTipTieBreak: expected selected tip %q for %s, got %q",
				expectedSelectedTips[i], result.Block, result.SelectedTip)
		}
	}
}

// TestDemotionCascade demotes a blue block that has a diamond below it, and
// makes sure the bottom of the diamond loses exactly one blue ancestor.
//
//	Genesis <- A <- B <- D
//	        |    \- C <-/
//	        |- Y
//	        \- Z
func TestDemotionCascade(t *testing.T) {
	dag := newTestDAG(t, "TestDemotionCascade")
	k := dagconfig.KType(2)
	addBlocks(t, "TestDemotionCascade", dag, k, []dagscenarios.Block{
		{Name: "Genesis"},
		{Name: "A", Parents: []string{"Genesis"}},
		{Name: "Y", Parents: []string{"Genesis"}},
	})
	buildUnclassified(t, "TestDemotionCascade", dag, []dagscenarios.Block{
		{Name: "B", Parents: []string{"A"}},
		{Name: "C", Parents: []string{"A"}},
		{Name: "D", Parents: []string{"B", "C"}},
	})
	for _, name := range []string{"B", "C", "D"} {
		if spb := mustBlockInfo(t, "TestDemotionCascade", dag, name).SizeOfPastBlue; spb != 2 {
			t.Fatalf("TestDemotionCascade: expected %s to have 2 blue ancestors before the demotion, got %d",
				name, spb)
		}
	}

	result, err := dag.AddBlock("Z", []string{"Genesis"}, k)
	if err != nil {
		t.Fatalf("TestDemotionCascade: AddBlock(Z) unexpectedly failed: %s", err)
	}
	expectedResult := &ClassificationResult{
		Block:             "Z",
		Status:            blocknode.StatusBlue,
		SelectedTip:       "D",
		AnticoneBlueCount: 2,
		Demoted:           []string{"A", "Y"},
	}
	if !reflect.DeepEqual(result, expectedResult) {
		t.Fatalf("TestDemotionCascade: expected %s, got %s", spew.Sdump(expectedResult), spew.Sdump(result))
	}

	for _, name := range []string{"A", "Y"} {
		info := mustBlockInfo(t, "TestDemotionCascade", dag, name)
		if info.Status != blocknode.StatusRed || info.SizeOfAnticoneBlue != blocknode.UntrackedAnticoneBlue {
			t.Errorf("TestDemotionCascade: expected %s to be red and untracked, got %s", name, spew.Sdump(info))
		}
	}
	for _, name := range []string{"B", "C", "D"} {
		if spb := mustBlockInfo(t, "TestDemotionCascade", dag, name).SizeOfPastBlue; spb != 1 {
			t.Errorf("TestDemotionCascade: expected %s to have 1 blue ancestor after the demotion, got %d",
				name, spb)
		}
	}
	if visits := counterValue(t, dag, MetricCascadeVisits); visits == 0 {
		t.Errorf("TestDemotionCascade: expected the cascade to be counted")
	}
	err = dag.VerifyIntegrity(k)
	if err != nil {
		t.Fatalf("TestDemotionCascade: integrity violated: %s", err)
	}
}

// TestPromoteParents covers a parent that stayed unclassified and is
// promoted once a child of it becomes the selected tip.
func TestPromoteParents(t *testing.T) {
	dag := newTestDAG(t, "TestPromoteParents")
	k := dagconfig.KType(1)
	results := addBlocks(t, "TestPromoteParents", dag, k, []dagscenarios.Block{
		{Name: "Genesis"},
		{Name: "A", Parents: []string{"Genesis"}},
		{Name: "B", Parents: []string{"A"}},
		{Name: "C", Parents: []string{"Genesis"}},
	})
	if results[3].Status != blocknode.StatusUnclassified || results[3].SelectedTip != "B" {
		t.Fatalf("TestPromoteParents: expected C to stay unclassified behind B, got %s", spew.Sdump(results[3]))
	}

	result, err := dag.AddBlock("D", []string{"Genesis", "A", "C"}, k)
	if err != nil {
		t.Fatalf("TestPromoteParents: AddBlock(D) unexpectedly failed: %s", err)
	}
	expectedResult := &ClassificationResult{
		Block:             "D",
		Status:            blocknode.StatusBlue,
		SelectedTip:       "D",
		AnticoneBlueCount: 1,
		PromotedParents:   []string{"C"},
		Demoted:           []string{"B", "A"},
	}
	if !reflect.DeepEqual(result, expectedResult) {
		t.Fatalf("TestPromoteParents: expected %s, got %s", spew.Sdump(expectedResult), spew.Sdump(result))
	}

	expectedStates := []struct {
		name               string
		status             blocknode.Status
		sizeOfPastBlue     uint64
		sizeOfAnticoneBlue int
	}{
		{"A", blocknode.StatusRed, 1, blocknode.UntrackedAnticoneBlue},
		{"B", blocknode.StatusRed, 1, blocknode.UntrackedAnticoneBlue},
		{"C", blocknode.StatusBlue, 1, 1},
		{"D", blocknode.StatusBlue, 2, 1},
	}
	for _, expected := range expectedStates {
		info := mustBlockInfo(t, "TestPromoteParents", dag, expected.name)
		if info.Status != expected.status || info.SizeOfPastBlue != expected.sizeOfPastBlue ||
			info.SizeOfAnticoneBlue != expected.sizeOfAnticoneBlue {
			t.Errorf("TestPromoteParents: unexpected state of %s: %s", expected.name, spew.Sdump(info))
		}
	}
	if promotions := counterValue(t, dag, MetricPromotions); promotions != 1 {
		t.Errorf("TestPromoteParents: expected 1 promotion, got %d", promotions)
	}
	err = dag.VerifyIntegrity(k)
	if err != nil {
		t.Fatalf("TestPromoteParents: integrity violated: %s", err)
	}
}

// TestPromoteParentsAgainstTips covers a parent whose anticone is empty
// within the past of its child but holds a blue block under another tip.
// The parent must not be promoted.
func TestPromoteParentsAgainstTips(t *testing.T) {
	dag := newTestDAG(t, "TestPromoteParentsAgainstTips")
	k := dagconfig.KType(0)
	results := addBlocks(t, "TestPromoteParentsAgainstTips", dag, k, []dagscenarios.Block{
		{Name: "Genesis"},
		{Name: "B", Parents: []string{"Genesis"}},
		{Name: "C", Parents: []string{"Genesis"}},
		{Name: "D", Parents: []string{"C"}},
	})

	expectedResults := []*ClassificationResult{
		{Block: "C", Status: blocknode.StatusUnclassified, SelectedTip: "C", Inconsistent: true},
		{Block: "D", Status: blocknode.StatusUnclassified, SelectedTip: "D", Inconsistent: true},
	}
	if !reflect.DeepEqual(results[2:], expectedResults) {
		t.Fatalf("TestPromoteParentsAgainstTips: expected %s, got %s",
			spew.Sdump(expectedResults), spew.Sdump(results[2:]))
	}

	// Within the past of D alone, C has no blue block in its anticone.
	c, _ := dag.index.LookupNode("C")
	_, blueCount, isDetermined := dag.blueAnticone(c, []*blocknode.Node{c}, k)
	if !isDetermined || blueCount != 0 {
		t.Fatalf("TestPromoteParentsAgainstTips: expected no blue block in the anticone of C "+
			"relative to itself, got %d (determined: %t)", blueCount, isDetermined)
	}

	for _, name := range []string{"C", "D"} {
		info := mustBlockInfo(t, "TestPromoteParentsAgainstTips", dag, name)
		if info.Status != blocknode.StatusUnclassified || info.SizeOfPastBlue != 1 {
			t.Errorf("TestPromoteParentsAgainstTips: unexpected state of %s: %s", name, spew.Sdump(info))
		}
	}
	if promotions := counterValue(t, dag, MetricPromotions); promotions != 0 {
		t.Errorf("TestPromoteParentsAgainstTips: expected no promotions, got %d", promotions)
	}
	if inconsistencies := counterValue(t, dag, MetricInconsistencies); inconsistencies != 2 {
		t.Errorf("TestPromoteParentsAgainstTips: expected 2 inconsistencies, got %d", inconsistencies)
	}
	err := dag.VerifyIntegrity(k)
	if err != nil {
		t.Fatalf("TestPromoteParentsAgainstTips: integrity violated: %s", err)
	}
}

func TestClassifyErrors(t *testing.T) {
	dag := newTestDAG(t, "TestClassifyErrors")

	_, err := dag.Classify("missing", 3)
	if !IsErrorCode(err, ErrNotFound) {
		t.Fatalf("TestClassifyErrors: expected ErrNotFound, got %v", err)
	}

	addBlocks(t, "TestClassifyErrors", dag, 3, []dagscenarios.Block{{Name: "Genesis"}})
	_, err = dag.Classify("Genesis", 3)
	if !IsErrorCode(err, ErrInvalidState) {
		t.Fatalf("TestClassifyErrors: expected ErrInvalidState for a classified block, got %v", err)
	}

	// Nothing went through UpdateTips, so the DAG has no tips.
	noTips := newTestDAG(t, "TestClassifyErrors")
	err = noTips.InsertBlock("Genesis", nil)
	if err != nil {
		t.Fatalf("TestClassifyErrors: InsertBlock unexpectedly failed: %s", err)
	}
	err = noTips.InsertBlock("A", []string{"Genesis"})
	if err != nil {
		t.Fatalf("TestClassifyErrors: InsertBlock unexpectedly failed: %s", err)
	}
	_, err = noTips.Classify("A", 3)
	if !IsErrorCode(err, ErrInvalidState) {
		t.Fatalf("TestClassifyErrors: expected ErrInvalidState for empty tips, got %v", err)
	}
	info := mustBlockInfo(t, "TestClassifyErrors", noTips, "A")
	if info.Status != blocknode.StatusUnclassified {
		t.Fatalf("TestClassifyErrors: a failed classification changed A to %s", info.Status)
	}
}
