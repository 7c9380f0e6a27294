package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UeventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_uevents_ingested_total",
		Help: "Total number of raw kernel notifications converted into events.",
	})

	UeventsDroppedIngest = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_uevents_dropped_ingest_total",
		Help: "Total number of raw notifications dropped at ingestion (missing DEVPATH/ACTION).",
	})

	BatchesFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_batches_flushed_total",
		Help: "Total number of listener staging flushes to the handoff queue.",
	})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uevcoalesce_batch_size_events",
		Help:    "Number of events in each flushed batch.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048},
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uevcoalesce_queue_depth",
		Help: "Number of events currently sitting in the handoff queue.",
	})

	EventsFilteredOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_events_filtered_total",
		Help: "Total number of events removed by the filter pass (subsumed by a later remove or add).",
	})

	EventsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_events_discarded_total",
		Help: "Total number of events discarded by the prepare pass's devnode filter.",
	})

	EventsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_events_merged_total",
		Help: "Total number of events absorbed into a merge parent.",
	})

	EventsServiced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_events_serviced_total",
		Help: "Total number of head events passed to the trigger callback.",
	})

	TriggerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uevcoalesce_trigger_errors_total",
		Help: "Total number of trigger callback invocations that returned an error.",
	})

	SnapshotProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uevcoalesce_snapshot_processing_duration_ms",
		Help:    "Time to run prepare→filter→merge→service over one dispatcher snapshot.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	BurstActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uevcoalesce_burst_active",
		Help: "1 while the listener is accumulating a burst window, 0 while idle-polling.",
	})
)
