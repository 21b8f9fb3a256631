package blockdag

import (
	"github.com/rcrowley/go-metrics"
)

// Names of the metrics registered by every BlockDAG.
const (
	MetricBlocks          = "blockdag/blocks"
	MetricBlues           = "blockdag/blues"
	MetricPromotions      = "blockdag/promotions"
	MetricDemotions       = "blockdag/demotions"
	MetricInconsistencies = "blockdag/inconsistencies"
	MetricCascadeVisits   = "blockdag/cascade/visits"
	MetricClassify        = "blockdag/classify"
	MetricTips            = "blockdag/tips"
)

// dagMetrics holds the metrics of a single BlockDAG. Every DAG owns its own
// registry so that two DAGs in the same process never share counters.
type dagMetrics struct {
	registry metrics.Registry

	blocks          metrics.Counter
	blues           metrics.Counter
	promotions      metrics.Counter
	demotions       metrics.Counter
	inconsistencies metrics.Counter
	cascadeVisits   metrics.Counter
	classify        metrics.Timer
	tips            metrics.Gauge
}

func newDAGMetrics() *dagMetrics {
	registry := metrics.NewRegistry()
	return &dagMetrics{
		registry:        registry,
		blocks:          metrics.NewRegisteredCounter(MetricBlocks, registry),
		blues:           metrics.NewRegisteredCounter(MetricBlues, registry),
		promotions:      metrics.NewRegisteredCounter(MetricPromotions, registry),
		demotions:       metrics.NewRegisteredCounter(MetricDemotions, registry),
		inconsistencies: metrics.NewRegisteredCounter(MetricInconsistencies, registry),
		cascadeVisits:   metrics.NewRegisteredCounter(MetricCascadeVisits, registry),
		classify:        metrics.NewRegisteredTimer(MetricClassify, registry),
		tips:            metrics.NewRegisteredGauge(MetricTips, registry),
	}
}

// Metrics returns the registry holding the metrics of this DAG.
//
// The registry is safe for concurrent access.
func (dag *BlockDAG) Metrics() metrics.Registry {
	return dag.metrics.registry
}
