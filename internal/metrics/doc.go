// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package metrics provides Prometheus metrics for the enrichment pipeline and
the read-only API.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API server:

	curl http://localhost:8750/metrics

# Available Metrics

Pipeline Metrics:
  - facultypulse_pipeline_run_duration_seconds: Duration of a full run (histogram)
  - facultypulse_pipeline_runs_total: Runs by result (counter)
    Labels: result (success, error)
  - facultypulse_pipeline_stage_duration_seconds: Stage latency (histogram)
    Labels: stage (load, baseline, enrich, index, publish)
  - facultypulse_pipeline_last_success_timestamp_seconds: Unix time of the last good run (gauge)
  - facultypulse_entities_processed_total: Entities by outcome (counter)
    Labels: outcome (ok, no_reviews, failed)
  - facultypulse_entity_duration_seconds: Per-entity analysis time (histogram)
  - facultypulse_source_skipped_total: Unreadable source documents (counter)

Analysis Metrics:
  - facultypulse_topics_degraded_total: Degraded topic extractions (counter)
    Labels: reason
  - facultypulse_bursts_detected_total: Review burst windows (counter)
  - facultypulse_trust_score: Trust score distribution (histogram)

Storage Metrics:
  - facultypulse_sink_writes_total: Sink writes (counter)
    Labels: sink, kind (profile, indices)
  - facultypulse_sink_write_errors_total: Failed sink writes (counter)
    Labels: sink
  - duckdb_query_duration_seconds / duckdb_query_errors_total
    Labels: operation, table (error_type on errors, truncated to 50 chars)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total
    Labels: cache

# Usage

	start := time.Now()
	stats, err := runner.Run(ctx)
	metrics.RecordPipelineRun(time.Since(start), err)
*/
package metrics
