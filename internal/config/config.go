// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package config

import (
	"time"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/integrity"
	"github.com/tomtom215/facultypulse/internal/logging"
	"github.com/tomtom215/facultypulse/internal/pipeline"
	"github.com/tomtom215/facultypulse/internal/storage"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
)

// Config holds all application configuration.
type Config struct {
	Logging  LoggingConfig   `koanf:"logging"`
	Analysis AnalysisConfig  `koanf:"analysis"`
	Source   SourceConfig    `koanf:"source"`
	Output   OutputConfig    `koanf:"output"`
	Pipeline pipeline.Config `koanf:"pipeline"`
	Store    StoreConfig     `koanf:"store"`
	Server   ServerConfig    `koanf:"server"`
	Schedule ScheduleConfig  `koanf:"schedule"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ToLogging converts the section to a logging.Config.
func (c LoggingConfig) ToLogging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Level
	lc.Format = c.Format
	lc.Caller = c.Caller
	return lc
}

// AnalysisConfig holds the statistical parameters of a run.
type AnalysisConfig struct {
	HalfLifeMonths   float64 `koanf:"half_life_months" validate:"gt=0"`
	BayesK           float64 `koanf:"bayes_k" validate:"gte=0"`
	WilsonConfidence float64 `koanf:"wilson_confidence" validate:"gt=0,lt=1"`
	EWMAAlpha        float64 `koanf:"ewma_alpha" validate:"gt=0,lte=1"`
	RecentComments   int     `koanf:"recent_comments" validate:"gte=0"`
	TopSubjects      int     `koanf:"top_subjects" validate:"gte=1"`

	Topics    TopicsConfig     `koanf:"topics"`
	Integrity integrity.Config `koanf:"integrity"`
}

// TopicsConfig controls topic extraction.
type TopicsConfig struct {
	MinComments   int     `koanf:"min_comments" validate:"gte=1"`
	MaxTopics     int     `koanf:"max_topics" validate:"gte=1,lte=10"`
	WordsPerTopic int     `koanf:"words_per_topic" validate:"gte=1"`
	MaxFeatures   int     `koanf:"max_features" validate:"gte=0"`
	NMFMaxIter    int     `koanf:"nmf_max_iter" validate:"gte=1"`
	NMFTol        float64 `koanf:"nmf_tol" validate:"gt=0"`
}

// ToEnrich converts the section to the analyzer configuration.
func (c AnalysisConfig) ToEnrich() *enrich.Config {
	ec := enrich.DefaultConfig()
	ec.HalfLifeMonths = c.HalfLifeMonths
	ec.BayesK = c.BayesK
	ec.WilsonConfidence = c.WilsonConfidence
	ec.EWMAAlpha = c.EWMAAlpha
	ec.RecentComments = c.RecentComments
	ec.TopSubjects = c.TopSubjects

	ec.Topics.MinComments = c.Topics.MinComments
	ec.Topics.MaxTopics = c.Topics.MaxTopics
	ec.Topics.WordsPerTopic = c.Topics.WordsPerTopic
	ec.Topics.Vectorizer.MaxFeatures = c.Topics.MaxFeatures
	ec.Topics.NMF = textanalytics.NMFConfig{MaxIter: c.Topics.NMFMaxIter, Tol: c.Topics.NMFTol}

	ec.Integrity = c.Integrity
	return ec
}

// SourceConfig locates the raw review documents.
type SourceConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// OutputConfig controls the JSON file tree.
type OutputConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// StoreConfig holds the optional embedded stores.
type StoreConfig struct {
	Badger BadgerSection `koanf:"badger"`
	DuckDB DuckDBSection `koanf:"duckdb"`
}

// BadgerSection enables the key-value snapshot store.
type BadgerSection struct {
	Enabled     bool   `koanf:"enabled"`
	Path        string `koanf:"path"`
	InMemory    bool   `koanf:"in_memory"`
	SyncWrites  bool   `koanf:"sync_writes"`
	Compression bool   `koanf:"compression"`
}

// ToStorage converts the section to a storage.BadgerConfig.
func (c BadgerSection) ToStorage() storage.BadgerConfig {
	return storage.BadgerConfig{
		Path:        c.Path,
		InMemory:    c.InMemory,
		SyncWrites:  c.SyncWrites,
		Compression: c.Compression,
	}
}

// DuckDBSection enables the analytical store.
type DuckDBSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ServerConfig holds the read API settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables
	// rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// CacheSize is the number of API responses kept in memory. Zero
	// disables the response cache.
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// AllowTrigger exposes POST /api/v1/runs to start a batch on demand.
	AllowTrigger bool `koanf:"allow_trigger"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return joinHostPort(c.Host, c.Port)
}

// ScheduleConfig controls repeated batches when serving.
type ScheduleConfig struct {
	// Interval between batches. Zero runs only on start (or on demand).
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	RunOnStart bool `koanf:"run_on_start"`

	// Timeout bounds a single batch. Zero means no limit.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}
