// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package enrich builds the statistical profile of a single entity.

An Analyzer combines the estimators of the stats package with the text,
integrity and trend analyses into one Profile:

  - decay_analysis: half-life weighted quality and difficulty
  - bayes_analysis: means shrunk toward the corpus baseline
  - recommendation_analysis: rate with a Wilson interval
  - subject_normalization: z-scores against category baselines
  - grades_analysis: grade distribution and equity index
  - nlp_analysis: NMF topics and lexicon sentiment
  - integrity_analysis: duplicates, bursts and trust score
  - trends_analysis: monthly EWMA series and forecast

Usage:

	analyzer, err := enrich.NewAnalyzer(cfg, base, logger)
	if err != nil {
		return err
	}
	profile := analyzer.Analyze(id, &record, rows)

The Analyzer never mutates the baseline and holds no per-call state, so a
single instance serves every worker of a batch.
*/
package enrich
