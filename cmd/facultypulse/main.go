// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package main is the entry point of facultypulse.
//
// facultypulse reads one JSON review document per entity from a source
// directory, enriches every entity with statistical estimators, and
// publishes per-entity profiles plus cross-entity indices.
//
// # Commands
//
//	facultypulse run     # one batch, then exit
//	facultypulse serve   # batches on a schedule plus the read API
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (FP_*)
//   - Config file (--config, CONFIG_PATH or ./config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running batch between entities and shut
// the HTTP server down gracefully.
package main

import (
	"os"

	"github.com/tomtom215/facultypulse/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error().Err(err).Msg("facultypulse failed")
		os.Exit(1)
	}
}
