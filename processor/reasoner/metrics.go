package reasoner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics contains statically-registered Prometheus metrics for the package.
var metrics = struct {
	factsIngestedTotal      prometheus.Counter
	inferencesComputedTotal prometheus.Counter
	computeErrorsTotal      prometheus.Counter
	recomputesTotal         prometheus.Counter
	storedFacts             prometheus.Gauge
}{
	factsIngestedTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semreason",
		Subsystem: "reasoner",
		Name:      "facts_ingested_total",
		Help:      "The cumulative number of asserted triples added to the store from graph entity messages.",
	}),
	inferencesComputedTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semreason",
		Subsystem: "reasoner",
		Name:      "inferences_computed_total",
		Help:      "The cumulative number of derived facts produced across all recomputes.",
	}),
	computeErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semreason",
		Subsystem: "reasoner",
		Name:      "compute_errors_total",
		Help:      "The cumulative number of recomputes that failed.",
	}),
	recomputesTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semreason",
		Subsystem: "reasoner",
		Name:      "recomputes_total",
		Help:      "The cumulative number of forward-chaining recomputes.",
	}),
	storedFacts: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "semreason",
		Subsystem: "reasoner",
		Name:      "stored_facts",
		Help:      "The number of asserted triples currently held in the store.",
	}),
}
