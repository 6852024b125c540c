package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mcp_bridge",
		Name:      "tool_calls_total",
		Help:      "Tool calls by tool and outcome (success, error, invalid, timeout).",
	}, []string{"tool", "outcome"})
	metricToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mcp_bridge",
		Name:      "tool_call_duration_seconds",
		Help:      "Tool execution latency.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"tool"})
)
