package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cacheLookups and queryDuration follow
// datastore/postgres/store_metrics.go's databaseCounter/databaseTimer
// pattern: a labeled counter plus a matching duration histogram,
// promauto-registered at package init.
var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "modcut",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "AnalysisCache lookups, partitioned by hit/miss.",
	},
	[]string{"outcome"},
)

var queryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "modcut",
		Subsystem: "cache",
		Name:      "query_duration_seconds",
		Help:      "AnalysisCache query duration, partitioned by operation.",
	},
	[]string{"op"},
)

func timer(op string) func() {
	t := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		queryDuration.WithLabelValues(op).Observe(v)
	}))
	return func() { t.ObserveDuration() }
}
