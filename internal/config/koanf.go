// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/pipeline"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/facultypulse/config.yaml",
	"/etc/facultypulse/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FP_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	analysis := enrich.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Analysis: AnalysisConfig{
			HalfLifeMonths:   analysis.HalfLifeMonths,
			BayesK:           analysis.BayesK,
			WilsonConfidence: analysis.WilsonConfidence,
			EWMAAlpha:        analysis.EWMAAlpha,
			RecentComments:   analysis.RecentComments,
			TopSubjects:      analysis.TopSubjects,
			Topics: TopicsConfig{
				MinComments:   analysis.Topics.MinComments,
				MaxTopics:     analysis.Topics.MaxTopics,
				WordsPerTopic: analysis.Topics.WordsPerTopic,
				MaxFeatures:   analysis.Topics.Vectorizer.MaxFeatures,
				NMFMaxIter:    analysis.Topics.NMF.MaxIter,
				NMFTol:        analysis.Topics.NMF.Tol,
			},
			Integrity: analysis.Integrity,
		},
		Source: SourceConfig{
			Dir: "data/profesores",
		},
		Output: OutputConfig{
			Enabled: true,
			Dir:     "data",
		},
		Pipeline: pipeline.DefaultConfig(),
		Store: StoreConfig{
			Badger: BadgerSection{
				Enabled:     false,
				Path:        "data/badger",
				Compression: true,
			},
			DuckDB: DuckDBSection{
				Enabled: false,
				Path:    "data/facultypulse.duckdb",
			},
		},
		Server: ServerConfig{
			Enabled:           false,
			Host:              "0.0.0.0",
			Port:              8457,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CacheSize:         256,
			CacheTTL:          5 * time.Minute,
		},
		Schedule: ScheduleConfig{
			Interval:   0,
			RunOnStart: true,
			Timeout:    30 * time.Minute,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: FP_* overrides
//
// An empty path searches CONFIG_PATH and DefaultConfigPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless named explicitly)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// FP_HALF_LIFE_MONTHS -> analysis.half_life_months
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Logging
	"fp_log_level":  "logging.level",
	"fp_log_format": "logging.format",
	"fp_log_caller": "logging.caller",

	// Analysis
	"fp_half_life_months":  "analysis.half_life_months",
	"fp_bayes_k":           "analysis.bayes_k",
	"fp_wilson_confidence": "analysis.wilson_confidence",
	"fp_ewma_alpha":        "analysis.ewma_alpha",
	"fp_recent_comments":   "analysis.recent_comments",
	"fp_top_subjects":      "analysis.top_subjects",

	"fp_topics_min_comments":    "analysis.topics.min_comments",
	"fp_topics_max":             "analysis.topics.max_topics",
	"fp_topics_words_per_topic": "analysis.topics.words_per_topic",
	"fp_topics_max_features":    "analysis.topics.max_features",
	"fp_topics_nmf_max_iter":    "analysis.topics.nmf_max_iter",
	"fp_topics_nmf_tol":         "analysis.topics.nmf_tol",

	"fp_duplicate_threshold":    "analysis.integrity.duplicate_threshold",
	"fp_duplicate_max_features": "analysis.integrity.max_features",
	"fp_burst_window":           "analysis.integrity.burst_window",
	"fp_burst_min_count":        "analysis.integrity.burst_min_count",
	"fp_low_variance_min":       "analysis.integrity.low_variance_min",
	"fp_low_variance_threshold": "analysis.integrity.low_variance_threshold",

	// Source and output
	"fp_source_dir":     "source.dir",
	"fp_output_dir":     "output.dir",
	"fp_output_enabled": "output.enabled",

	// Pipeline
	"fp_workers":         "pipeline.workers",
	"fp_subject_indices": "pipeline.subject_indices",
	"fp_prune":           "pipeline.prune",

	// Stores
	"fp_badger_enabled":     "store.badger.enabled",
	"fp_badger_path":        "store.badger.path",
	"fp_badger_in_memory":   "store.badger.in_memory",
	"fp_badger_sync_writes": "store.badger.sync_writes",
	"fp_badger_compression": "store.badger.compression",
	"fp_duckdb_enabled":     "store.duckdb.enabled",
	"fp_duckdb_path":        "store.duckdb.path",

	// Server
	"fp_server_enabled":      "server.enabled",
	"fp_http_host":           "server.host",
	"fp_http_port":           "server.port",
	"fp_http_read_timeout":   "server.read_timeout",
	"fp_http_write_timeout":  "server.write_timeout",
	"fp_http_idle_timeout":   "server.idle_timeout",
	"fp_shutdown_timeout":    "server.shutdown_timeout",
	"fp_cors_origins":        "server.cors_origins",
	"fp_rate_limit_requests": "server.rate_limit_requests",
	"fp_rate_limit_window":   "server.rate_limit_window",
	"fp_cache_size":          "server.cache_size",
	"fp_cache_ttl":           "server.cache_ttl",
	"fp_allow_trigger":       "server.allow_trigger",

	// Schedule
	"fp_schedule_interval": "schedule.interval",
	"fp_run_on_start":      "schedule.run_on_start",
	"fp_run_timeout":       "schedule.timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - FP_HALF_LIFE_MONTHS -> analysis.half_life_months
//   - FP_HTTP_PORT -> server.port
//   - FP_BADGER_PATH -> store.badger.path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
