// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package logging provides the zerolog-based application logger.
//
// Initialize once at startup from the logging section of the configuration:
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//
// Long-lived components take a zerolog.Logger and derive a component logger:
//
//	logger = logger.With().Str("component", "pipeline").Logger()
//
// Per-run and per-request fields travel in the context:
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Info().Int("entities", n).Msg("run finished")
//
// SlogHandler adapts the logger for libraries that expect log/slog, such
// as the sutureslog hook installed by the supervisor.
package logging
