// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package stats provides the small-sample estimators used to enrich review
// profiles.
//
// Estimators:
//
//   - DecayedMean: half-life weighted mean that favors recent observations,
//     with a naive-mean fallback when nothing is dated
//   - DecayedOnly: the same weighting with no fallback
//   - BayesianScore: shrinkage toward a corpus prior with pseudo-count k
//   - WilsonInterval: proportion interval that stays sane at small n
//   - Spearman: rank correlation with average ranks for ties
//   - EWMA: exponentially weighted moving average
//
// Sample statistics use gonum/stat; optional results are returned as
// pointers so "no data" never collapses into zero.
package stats
