package api

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the inspection API.
type Metrics struct {
	QueriesTotal          *prometheus.CounterVec
	SelectionsTotal       *prometheus.CounterVec
	MaterializationsTotal prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics initializes and registers the Prometheus metrics. Registration
// with the default registry happens once per process; later calls return the
// same instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(registerMetrics)
	return metrics
}

func registerMetrics() {
	metrics = &Metrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helios",
			Subsystem: "rdb",
			Name:      "queries_total",
			Help:      "Total number of predicate queries by status.",
		}, []string{"status"}), // status: ok, error
		SelectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helios",
			Subsystem: "rdb",
			Name:      "selections_total",
			Help:      "Total number of series selections by status.",
		}, []string{"status"}),
		MaterializationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "helios",
			Subsystem: "rdb",
			Name:      "materializations_total",
			Help:      "Total number of materialized tables.",
		}),
	}
}
