// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package enrich

import (
	"fmt"
	"time"

	"github.com/tomtom215/facultypulse/internal/integrity"
	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
)

// Config contains the parameters of the per-entity analysis.
type Config struct {
	// HalfLifeMonths is the age at which a review's weight halves.
	HalfLifeMonths float64 `json:"half_life_months"`

	// BayesK is the pseudo-count of the shrinkage prior.
	BayesK float64 `json:"bayes_k"`

	// WilsonConfidence selects the z-score of the recommendation interval.
	WilsonConfidence float64 `json:"wilson_confidence"`

	// EWMAAlpha is the smoothing factor of the monthly trend series.
	EWMAAlpha float64 `json:"ewma_alpha"`

	// RecentComments is how many of the newest rows are scanned for
	// comment samples.
	RecentComments int `json:"recent_comments"`

	// TopSubjects caps the per-subject standing list.
	TopSubjects int `json:"top_subjects"`

	Topics    textanalytics.TopicConfig `json:"topics"`
	Integrity integrity.Config          `json:"integrity"`

	// Now returns the reference time for decay weights. Pin it to make runs
	// reproducible; nil means time.Now.
	Now func() time.Time `json:"-"`
}

// DefaultConfig returns the default analysis parameters.
func DefaultConfig() *Config {
	return &Config{
		HalfLifeMonths:   stats.DefaultHalfLifeMonths,
		BayesK:           stats.DefaultBayesK,
		WilsonConfidence: stats.DefaultConfidence,
		EWMAAlpha:        stats.DefaultEWMAAlpha,
		RecentComments:   10,
		TopSubjects:      5,
		Topics:           textanalytics.DefaultTopicConfig(),
		Integrity:        integrity.DefaultConfig(),
	}
}

// Validate checks the parameters.
func (c *Config) Validate() error {
	if c.HalfLifeMonths <= 0 {
		return fmt.Errorf("half_life_months must be positive, got %f", c.HalfLifeMonths)
	}
	if c.BayesK < 0 {
		return fmt.Errorf("bayes_k must be non-negative, got %f", c.BayesK)
	}
	if c.WilsonConfidence <= 0 || c.WilsonConfidence >= 1 {
		return fmt.Errorf("wilson_confidence must be in (0, 1), got %f", c.WilsonConfidence)
	}
	if c.EWMAAlpha <= 0 || c.EWMAAlpha > 1 {
		return fmt.Errorf("ewma_alpha must be in (0, 1], got %f", c.EWMAAlpha)
	}
	if c.RecentComments < 0 {
		return fmt.Errorf("recent_comments must be non-negative, got %d", c.RecentComments)
	}
	if c.TopSubjects < 1 {
		return fmt.Errorf("top_subjects must be positive, got %d", c.TopSubjects)
	}
	if c.Topics.MinComments < 1 {
		return fmt.Errorf("topics.min_comments must be positive, got %d", c.Topics.MinComments)
	}
	if c.Integrity.BurstMinCount < 1 {
		return fmt.Errorf("integrity.burst_min_count must be positive, got %d", c.Integrity.BurstMinCount)
	}
	if c.Integrity.BurstWindow <= 0 {
		return fmt.Errorf("integrity.burst_window must be positive, got %v", c.Integrity.BurstWindow)
	}
	return nil
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
