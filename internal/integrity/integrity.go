// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package integrity scores how trustworthy an entity's reviews look.

Three independent signals feed a bounded trust score:

  - near-duplicate comments (TF-IDF cosine similarity above a threshold)
  - bursts of reviews inside a sliding time window
  - suspiciously uniform quality ratings (low population variance)

The penalties are capped so the trust score always stays within [0, 1].
*/
package integrity

import (
	"sort"
	"time"

	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
)

const (
	maxDuplicatePenalty = 0.5
	burstPenalty        = 0.3
	lowVariancePenalty  = 0.2
)

// Config holds the detection thresholds.
type Config struct {
	// DuplicateThreshold is the cosine similarity above which two comments
	// count as near-duplicates.
	DuplicateThreshold float64 `koanf:"duplicate_threshold" validate:"gt=0,lte=1"`

	// MaxFeatures caps the duplicate-detection vocabulary.
	MaxFeatures int `koanf:"max_features" validate:"gte=1"`

	// BurstWindow is the sliding window width.
	BurstWindow time.Duration `koanf:"burst_window" validate:"gt=0"`

	// BurstMinCount is the number of reviews inside one window that makes a burst.
	BurstMinCount int `koanf:"burst_min_count" validate:"gte=2"`

	// LowVarianceMin is the minimum number of quality values before the
	// low-variance check applies.
	LowVarianceMin int `koanf:"low_variance_min" validate:"gte=2"`

	// LowVarianceThreshold flags quality ratings whose population variance
	// falls below it.
	LowVarianceThreshold float64 `koanf:"low_variance_threshold" validate:"gte=0"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold:   0.9,
		MaxFeatures:          300,
		BurstWindow:          24 * time.Hour,
		BurstMinCount:        3,
		LowVarianceMin:       5,
		LowVarianceThreshold: 0.1,
	}
}

// Burst is one qualifying window of reviews.
type Burst struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// Report is the integrity block of a profile.
type Report struct {
	DupRate         float64 `json:"dup_rate"`
	Bursts          []Burst `json:"bursts"`
	LowVarianceFlag int     `json:"low_variance_flag"`
	TrustScore      float64 `json:"trust_score"`
}

// HasBursts reports whether any burst window was found.
func (r *Report) HasBursts() bool { return len(r.Bursts) > 0 }

// LowVariance reports whether the low-variance flag is set.
func (r *Report) LowVariance() bool { return r.LowVarianceFlag != 0 }

// Analyze computes the integrity report of an entity's rows.
func Analyze(rows []review.Row, cfg Config) Report {
	comments := make([]string, 0, len(rows))
	dates := make([]time.Time, 0, len(rows))
	qualities := make([]float64, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.HasComment() {
			comments = append(comments, r.Comment)
		}
		if r.Dated() {
			dates = append(dates, *r.Date)
		}
		if r.Quality != nil {
			qualities = append(qualities, *r.Quality)
		}
	}

	dupRate := DuplicateRate(comments, cfg)
	bursts := DetectBursts(dates, cfg.BurstWindow, cfg.BurstMinCount)
	lowVar := IsLowVariance(qualities, cfg.LowVarianceMin, cfg.LowVarianceThreshold)

	report := Report{
		DupRate: stats.Round(dupRate, 3),
		Bursts:  bursts,
	}
	if lowVar {
		report.LowVarianceFlag = 1
	}
	report.TrustScore = stats.Round(TrustScore(dupRate, len(bursts) > 0, lowVar), 2)
	return report
}

// DuplicateRate returns the share of comment pairs that are near-duplicates.
// Vectorizer failures (for example an all-stopword corpus) count as zero
// duplicates.
func DuplicateRate(comments []string, cfg Config) float64 {
	if len(comments) < 2 {
		return 0
	}

	vcfg := textanalytics.DuplicateVectorizerConfig()
	if cfg.MaxFeatures > 0 {
		vcfg.MaxFeatures = cfg.MaxFeatures
	}
	pairs, err := textanalytics.DuplicatePairs(comments, cfg.DuplicateThreshold, vcfg)
	if err != nil {
		return 0
	}

	n := float64(len(comments))
	total := n * (n - 1) / 2
	if total < 1 {
		total = 1
	}
	return float64(pairs) / total
}

// DetectBursts scans the dates with a two-pointer window and emits every
// window holding at least minCount dates. Overlapping windows are all
// reported.
func DetectBursts(dates []time.Time, window time.Duration, minCount int) []Burst {
	bursts := []Burst{}
	if minCount < 1 || len(dates) < minCount {
		return bursts
	}

	ds := make([]time.Time, len(dates))
	copy(ds, dates)
	sort.Slice(ds, func(a, b int) bool { return ds[a].Before(ds[b]) })

	i := 0
	for j := range ds {
		for ds[j].Sub(ds[i]) > window {
			i++
		}
		if count := j - i + 1; count >= minCount {
			bursts = append(bursts, Burst{
				From:  ds[i].Format(review.ISOLayout),
				To:    ds[j].Format(review.ISOLayout),
				Count: count,
			})
		}
	}
	return bursts
}

// IsLowVariance reports whether at least minCount values exist and their
// population variance is below threshold.
func IsLowVariance(values []float64, minCount int, threshold float64) bool {
	if len(values) < minCount {
		return false
	}
	return stats.PopVariance(values) < threshold
}

// TrustScore combines the three signals into a score within [0, 1].
func TrustScore(dupRate float64, burst, lowVariance bool) float64 {
	dupPenalty := 0.5 * dupRate
	if dupPenalty > maxDuplicatePenalty {
		dupPenalty = maxDuplicatePenalty
	}
	trust := 1.0 - dupPenalty
	if burst {
		trust -= burstPenalty
	}
	if lowVariance {
		trust -= lowVariancePenalty
	}
	if trust < 0 {
		return 0
	}
	return trust
}
