package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weather"

var (
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_ingested_total",
		Help:      "Readings stored, by ingest path.",
	}, []string{"source"})

	DuplicatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicates_rejected_total",
		Help:      "Inserts refused because the key already existed.",
	}, []string{"table"})

	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_reports_created_total",
		Help:      "Daily report rows written by the aggregator.",
	})

	AggregationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregation_runs_total",
		Help:      "Aggregation runs, by outcome (created, skipped, failed).",
	}, []string{"result"})

	ConnectedSensors = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_sensors",
		Help:      "Sensors currently holding a websocket connection.",
	})
)
