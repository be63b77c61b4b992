// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package config

import (
	"fmt"

	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/validation"
)

// Validate checks field constraints and the rules that span sections.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateOutputs(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateAnalysis()
}

// validateOutputs requires at least one place for results to land.
func (c *Config) validateOutputs() error {
	if c.Output.Enabled && c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required when output.enabled=true")
	}
	if c.Store.Badger.Enabled && !c.Store.Badger.InMemory && c.Store.Badger.Path == "" {
		return fmt.Errorf("store.badger.path is required unless store.badger.in_memory=true")
	}
	if c.Store.DuckDB.Enabled && c.Store.DuckDB.Path == "" {
		return fmt.Errorf("store.duckdb.path is required when store.duckdb.enabled=true")
	}
	if !c.Output.Enabled && !c.Store.Badger.Enabled && !c.Store.DuckDB.Enabled {
		return fmt.Errorf("at least one of output, store.badger or store.duckdb must be enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.Server.CacheSize > 0 && c.Server.CacheTTL <= 0 {
		return fmt.Errorf("server.cache_ttl must be positive when the response cache is enabled")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

// validateAnalysis defers to the analyzer's own checks.
func (c *Config) validateAnalysis() error {
	if err := c.Analysis.ToEnrich().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// Warnings lists settings that are valid but unusual.
func (c *Config) Warnings() []string {
	var warnings []string
	if _, ok := stats.ZForConfidence(c.Analysis.WilsonConfidence); !ok {
		warnings = append(warnings, fmt.Sprintf(
			"analysis.wilson_confidence=%v is not a supported level; intervals use 0.95", c.Analysis.WilsonConfidence))
	}
	if c.Server.Enabled && c.Schedule.Interval == 0 && !c.Schedule.RunOnStart && !c.Server.AllowTrigger {
		warnings = append(warnings, "server enabled without any way to run a batch; only stored results will be served")
	}
	if c.Server.Enabled && !c.Store.Badger.Enabled && !c.Output.Enabled {
		warnings = append(warnings, "server enabled without a snapshot store; the API serves from memory only")
	}
	return warnings
}
