package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "alerts_received_total",
		Help:      "Alerts accepted for processing, by detected source format.",
	}, []string{"source"})

	alertsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "alerts_failed_total",
		Help:      "Alerts that failed processing, by stage.",
	}, []string{"stage"})

	alertOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Name:      "alert_outcomes_total",
		Help:      "Terminal outcome per processed alert.",
	}, []string{"outcome"})

	investigationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "triage",
		Name:      "investigation_duration_seconds",
		Help:      "Wall-clock duration of AI investigation runs.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
)
