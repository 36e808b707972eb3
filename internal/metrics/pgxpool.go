package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes status-store pool statistics as gauges,
// namespaced alongside the engine counters.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "engine_pgxpool_acquired_conns",
			Help: "Currently acquired connections in the status-store pool",
		}, func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "engine_pgxpool_max_conns",
			Help: "Configured connection cap of the status-store pool",
		}, func() float64 {
			return float64(pool.Stat().MaxConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "engine_pgxpool_total_conns",
			Help: "Total connections in the status-store pool",
		}, func() float64 {
			return float64(pool.Stat().TotalConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "engine_pgxpool_idle_conns",
			Help: "Idle connections in the status-store pool",
		}, func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}
