package storefront

import "github.com/prometheus/client_golang/prometheus"

const (
	opLoadAll = "load_all"
	opLoadOne = "load_one"

	tierMemory     = "memory"
	tierPersistent = "persistent"
	tierNetwork    = "network"
	tierFailed     = "failed"

	reasonCreate  = "create"
	reasonUpdate  = "update"
	reasonDelete  = "delete"
	reasonRefresh = "refresh"
)

// Metrics count how reads were satisfied and how often the caches were
// dropped. A nil *Metrics records nothing.
type Metrics struct {
	Reads         *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "catalog_reads_total",
				Help:      "Catalog reads by operation and the tier that answered them",
			},
			[]string{"op", "tier"},
		),
		Invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "catalog_invalidations_total",
				Help:      "Catalog cache invalidations by trigger",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.Reads, m.Invalidations)
	return m
}

func (m *Metrics) read(op, tier string) {
	if m == nil {
		return
	}
	m.Reads.WithLabelValues(op, tier).Inc()
}

func (m *Metrics) invalidated(reason string) {
	if m == nil {
		return
	}
	m.Invalidations.WithLabelValues(reason).Inc()
}
