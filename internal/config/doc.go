// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package config provides centralized configuration management for Facultypulse.

Configuration is layered with Koanf v2:

 1. Defaults built into defaultConfig
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/facultypulse/config.yaml)
 3. FP_* environment variables

Later layers override earlier ones. Unmapped environment variables are
ignored.

# Configuration Structure

  - logging: level, format, caller
  - analysis: decay half-life, Bayesian prior strength, Wilson confidence,
    EWMA smoothing, topic extraction and integrity thresholds
  - source: directory of raw review documents
  - output: JSON file tree root
  - pipeline: worker count, subject indices, pruning
  - store: optional BadgerDB snapshot store and DuckDB analytical store
  - server: read API listener, CORS, rate limiting, response cache
  - schedule: batch interval and run-on-start

# Environment Variables

Analysis:
  - FP_HALF_LIFE_MONTHS: decay half-life in months (default: 24)
  - FP_BAYES_K: shrinkage pseudo-count (default: 10)
  - FP_WILSON_CONFIDENCE: 0.90, 0.95 or 0.99 (default: 0.95)
  - FP_EWMA_ALPHA: trend smoothing factor (default: 0.3)
  - FP_BURST_WINDOW: burst detection window (default: 24h)

Paths:
  - FP_SOURCE_DIR: raw documents (default: data/profesores)
  - FP_OUTPUT_DIR: output root (default: data)
  - FP_BADGER_PATH, FP_DUCKDB_PATH: embedded stores

Server:
  - FP_SERVER_ENABLED: serve the read API (default: false)
  - FP_HTTP_HOST, FP_HTTP_PORT: listen address (default: 0.0.0.0:8457)
  - FP_CORS_ORIGINS: comma-separated origins (default: *)
  - FP_SCHEDULE_INTERVAL: batch interval when serving (default: 0, disabled)

# Usage

	cfg, err := config.Load("")
	if err != nil {
	    log.Fatal(err)
	}
	for _, w := range cfg.Warnings() {
	    log.Println(w)
	}
	runner, err := pipeline.NewRunner(cfg.Pipeline, cfg.Analysis.ToEnrich(), loader, sink, runs, logger)
*/
package config
