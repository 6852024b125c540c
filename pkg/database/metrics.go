package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mcp_bridge",
		Subsystem: "db",
		Name:      "query_cache_lookups_total",
		Help:      "Query cache lookups by result (hit, miss, bypass).",
	}, []string{"result"})
	metricConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mcp_bridge",
		Subsystem: "db",
		Name:      "connected",
		Help:      "1 while a database pool is open.",
	})
)
