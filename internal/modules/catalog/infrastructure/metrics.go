package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var catalogFetches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "guildassistant_catalog_fetches_total",
		Help: "Catalog requests by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

func observeFetch(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	catalogFetches.WithLabelValues(kind, outcome).Inc()
}
