package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// RegisterPgxPoolMetrics exposes pgx connection pool statistics as Prometheus gauges.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pgxpool_acquired_conns",
			Help: "Number of currently acquired connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pgxpool_max_conns",
			Help: "Maximum number of connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().MaxConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pgxpool_idle_conns",
			Help: "Number of idle connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}

// RegisterRedisPoolMetrics exposes the rate limit store's client pool statistics.
func RegisterRedisPoolMetrics(client *redis.Client) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "redis_pool_total_conns",
			Help: "Total number of connections in the redis pool",
		}, func() float64 {
			return float64(client.PoolStats().TotalConns)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "redis_pool_idle_conns",
			Help: "Number of idle connections in the redis pool",
		}, func() float64 {
			return float64(client.PoolStats().IdleConns)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "redis_pool_timeouts_total",
			Help: "Number of times a connection wait timed out",
		}, func() float64 {
			return float64(client.PoolStats().Timeouts)
		}),
	)
}
