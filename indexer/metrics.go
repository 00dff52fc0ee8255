package indexer

import (
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// PromMetrics is safe to use as a nil pointer, in which case nothing is recorded.
type PromMetrics struct {
	DomainSyncs *prometheus.CounterVec
	Upserts     *prometheus.CounterVec
	LastSync    prometheus.Gauge
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		DomainSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_indexer_domain_syncs_total",
			Help: "Domain synchronizations by outcome",
		}, []string{"domain", "status"}),
		Upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_indexer_upserts_total",
			Help: "Rows upserted by entity",
		}, []string{"entity"}),
		LastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_indexer_last_sync_timestamp_seconds",
			Help: "Unix time of the last successful synchronization run",
		}),
	}

	reg.MustRegister(m.DomainSyncs, m.Upserts, m.LastSync)
	return m
}

// InitPromMetrics registers the indexer metrics on a fresh registry and
// exposes them on /metrics at port.
func InitPromMetrics(logger log.Logger, port int16) *PromMetrics {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			logger.Error("Metrics server stopped", "port", port, "err", err)
		}
	}()

	return m
}

func (m *PromMetrics) observeDomain(domain, status string) {
	if m == nil {
		return
	}
	m.DomainSyncs.WithLabelValues(domain, status).Inc()
}

func (m *PromMetrics) observeUpserts(entity string, n int) {
	if m == nil {
		return
	}
	m.Upserts.WithLabelValues(entity).Add(float64(n))
}

func (m *PromMetrics) setLastSync(t time.Time) {
	if m == nil {
		return
	}
	m.LastSync.Set(float64(t.Unix()))
}
