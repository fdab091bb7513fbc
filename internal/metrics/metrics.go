// Package metrics declares the Prometheus counters and gauges the core and
// boundary adapters export. Construction goes through the small wrapper
// below (newCounterVec/newGaugeVec/...), which mirrors the shape of the
// teacher's own pkg/private/prom helpers (namespace, subsystem, name, help,
// labelNames) so every metric declaration reads the same way regardless of
// type. Unlike pkg/private/prom, these constructors don't self-register
// against prometheus's global default registry: Registry() below builds one
// fresh *prometheus.Registry per call, which a CLI run can spin up
// repeatedly (e.g. in tests) without hitting "duplicate metrics collector
// registration" panics from the global registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "bgpsim"

func newCounterVec(name, help string, labelNames []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labelNames)
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func newGaugeVec(name, help string, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labelNames)
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func newSummary(name, help string) prometheus.Summary {
	return prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

var (
	// MalformedLines counts skipped malformed lines per input file kind
	// ("relationships", "seeds", "rov_asns").
	MalformedLines = newCounterVec("malformed_lines_total",
		"Number of malformed input lines skipped, by file kind.", []string{"file"})

	// UnknownSeedAsns counts seeds dropped because their ASN is absent from
	// the graph.
	UnknownSeedAsns = newCounter("unknown_seed_asns_total",
		"Number of seed records dropped for referencing an unknown ASN.")

	// RovDrops counts announcements dropped at ROV-deploying ASes, by ASN.
	RovDrops = newCounterVec("rov_drops_total",
		"Number of ROV-invalid announcements dropped on receive, by AS.", []string{"asn"})

	// EdgeCount is a gauge of edges in the graph by relationship label.
	EdgeCount = newGaugeVec("graph_edges",
		"Number of edges in the AS graph, by relationship label.", []string{"relationship"})

	// MaxRank is a gauge of the highest rank assigned by the ranker.
	MaxRank = newGauge("graph_max_rank", "Highest rank assigned to any AS by the topological ranker.")

	// PropagationSeconds observes the wall-clock duration of a full
	// UP/ACROSS/DOWN propagation run.
	PropagationSeconds = newSummary("propagation_seconds",
		"Wall-clock duration of a full propagation run.")
)

// Registry builds a fresh prometheus.Registry with every metric above
// registered, for HTTP exposition or text dumps.
func Registry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(MalformedLines, UnknownSeedAsns, RovDrops, EdgeCount, MaxRank, PropagationSeconds)
	return r
}
