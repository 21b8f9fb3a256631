package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	"github.com/kaspanet/bluedag/domain/blockdag"
	"github.com/kaspanet/bluedag/domain/blocknode"
	"github.com/kaspanet/bluedag/infrastructure/config"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

type replaySummary struct {
	scenario     string
	blues        []string
	reds         []string
	unclassified []string
	tips         []string
	height       uint64
	parents      []string
	metrics      []string
}

// replay adds every block of the configured scenario to a new DAG, in order,
// and summarizes the resulting classification.
func replay(cfg *config.Config) (*replaySummary, error) {
	defer logger.LogAndMeasureExecutionTime(log, "replay")()

	dag, err := blockdag.New(cfg.Scenario.Name, cfg.NetParams())
	if err != nil {
		return nil, err
	}

	for _, block := range cfg.Scenario.Blocks {
		_, err := dag.AddBlock(block.Name, block.Parents, cfg.K)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to add block %s", block.Name)
		}
		if cfg.Verify {
			err := dag.VerifyIntegrity(cfg.K)
			if err != nil {
				return nil, errors.Wrapf(err, "integrity violated after block %s", block.Name)
			}
		}
	}

	summary := &replaySummary{
		scenario: cfg.Scenario.Name,
		tips:     dag.Tips(),
		height:   dag.Height(),
		metrics:  metricLines(dag.Metrics()),
	}
	for _, block := range cfg.Scenario.Blocks {
		info, err := dag.BlockInfo(block.Name)
		if err != nil {
			return nil, err
		}
		switch info.Status {
		case blocknode.StatusBlue:
			summary.blues = append(summary.blues, info.Name)
		case blocknode.StatusRed:
			summary.reds = append(summary.reds, info.Name)
		default:
			summary.unclassified = append(summary.unclassified, info.Name)
		}
	}

	if cfg.ChooseParents > 0 {
		summary.parents, err = dag.ChooseParents(cfg.ChooseParents)
		if err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// metricLines renders every metric of registry on its own line, sorted by
// metric name.
func metricLines(registry metrics.Registry) []string {
	var lines []string
	registry.Each(func(name string, metric interface{}) {
		switch metric := metric.(type) {
		case metrics.Counter:
			lines = append(lines, fmt.Sprintf("%s: %d", name, metric.Count()))
		case metrics.Gauge:
			lines = append(lines, fmt.Sprintf("%s: %d", name, metric.Value()))
		case metrics.Timer:
			snapshot := metric.Snapshot()
			lines = append(lines, fmt.Sprintf("%s: count %d, mean %.0fns, max %dns",
				name, snapshot.Count(), snapshot.Mean(), snapshot.Max()))
		}
	})
	sort.Strings(lines)
	return lines
}

func (summary *replaySummary) log() {
	log.Infof("Scenario %s: height %d, tips %s", summary.scenario, summary.height, strings.Join(summary.tips, ", "))
	log.Infof("Blue (%d): %s", len(summary.blues), strings.Join(summary.blues, ", "))
	log.Infof("Red (%d): %s", len(summary.reds), strings.Join(summary.reds, ", "))
	if len(summary.unclassified) > 0 {
		log.Infof("Unclassified (%d): %s", len(summary.unclassified), strings.Join(summary.unclassified, ", "))
	}
	if len(summary.parents) > 0 {
		log.Infof("Parents for a new block: %s", strings.Join(summary.parents, ", "))
	}
	for _, line := range summary.metrics {
		log.Infof("%s", line)
	}
}
