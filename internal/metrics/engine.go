package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_runs_total",
		Help: "Completed engine runs by result",
	}, []string{"result"})

	RowsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_rows_processed_total",
		Help: "Task rows processed by entity kind and result",
	}, []string{"kind", "result"})
)

// RegisterEngineMetrics registers the engine counters with the default
// Prometheus registry.
func RegisterEngineMetrics() {
	prometheus.MustRegister(RunsTotal, RowsProcessed)
}
