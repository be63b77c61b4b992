// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Entity outcomes recorded by RecordEntity.
const (
	OutcomeOK        = "ok"
	OutcomeNoReviews = "no_reviews"
	OutcomeFailed    = "failed"
)

var (
	// Pipeline Metrics
	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "facultypulse_pipeline_run_duration_seconds",
			Help:    "Duration of complete enrichment runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultypulse_pipeline_runs_total",
			Help: "Total number of enrichment runs by result",
		},
		[]string{"result"}, // "success", "error"
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facultypulse_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // "load", "baseline", "enrich", "index"
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "facultypulse_pipeline_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful run",
		},
	)

	EntitiesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultypulse_entities_processed_total",
			Help: "Total number of entities processed by outcome",
		},
		[]string{"outcome"},
	)

	EntityDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "facultypulse_entity_duration_seconds",
			Help:    "Time to analyze a single entity",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	SourceSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "facultypulse_source_skipped_total",
			Help: "Total number of source documents that could not be loaded",
		},
	)

	// Analysis Metrics
	TopicsDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultypulse_topics_degraded_total",
			Help: "Total number of topic extractions that degraded",
		},
		[]string{"reason"},
	)

	BurstsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "facultypulse_bursts_detected_total",
			Help: "Total number of review burst windows detected",
		},
	)

	TrustScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "facultypulse_trust_score",
			Help:    "Distribution of entity trust scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Storage Metrics
	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultypulse_sink_writes_total",
			Help: "Total number of sink writes",
		},
		[]string{"sink", "kind"}, // kind: "profile", "indices"
	)

	SinkWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultypulse_sink_write_errors_total",
			Help: "Total number of failed sink writes",
		},
		[]string{"sink"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache"},
	)
)

// RecordPipelineRun records a finished run.
func RecordPipelineRun(duration time.Duration, err error) {
	PipelineRunDuration.Observe(duration.Seconds())
	if err != nil {
		PipelineRuns.WithLabelValues("error").Inc()
		return
	}
	PipelineRuns.WithLabelValues("success").Inc()
	PipelineLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordStage records the duration of one pipeline stage.
func RecordStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordEntity records the outcome of analyzing one entity.
func RecordEntity(outcome string, duration time.Duration) {
	EntitiesProcessed.WithLabelValues(outcome).Inc()
	if outcome != OutcomeFailed {
		EntityDuration.Observe(duration.Seconds())
	}
}

// RecordAnalysis records the per-entity analysis signals.
func RecordAnalysis(trustScore float64, bursts int, topicsDegradedReason string) {
	TrustScores.Observe(trustScore)
	if bursts > 0 {
		BurstsDetected.Add(float64(bursts))
	}
	if topicsDegradedReason != "" {
		TopicsDegraded.WithLabelValues(truncate(topicsDegradedReason, 50)).Inc()
	}
}

// RecordSinkWrite records a sink write and its outcome.
func RecordSinkWrite(sink, kind string, err error) {
	SinkWrites.WithLabelValues(sink, kind).Inc()
	if err != nil {
		SinkWriteErrors.WithLabelValues(sink).Inc()
	}
}

// RecordDBQuery records query performance metrics.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, truncate(err.Error(), 50)).Inc()
	}
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
