// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package trend builds monthly quality and difficulty series, smooths them
// with an EWMA and projects a bounded one-step quality forecast.
package trend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
)

const (
	// MinRows is the number of rows below which no trend is computed.
	MinRows = 3

	// DefaultSigma is used when fewer than two residuals exist.
	DefaultSigma = 0.5

	forecastZ          = 1.96
	forecastConfidence = 0.95
	qualityMin         = 0.0
	qualityMax         = 10.0
)

// Series is one smoothed monthly series.
type Series struct {
	Months []string  `json:"months"`
	Series []float64 `json:"series"`
	EWMA   []float64 `json:"ewma"`
	Sigma  float64   `json:"sigma"`
}

// Last returns the most recent smoothed value.
func (s *Series) Last() float64 { return s.EWMA[len(s.EWMA)-1] }

// Forecast is the next-period quality projection.
type Forecast struct {
	QualityNext float64        `json:"quality_next"`
	QualityBand stats.Interval `json:"quality_band"`
	Confidence  float64        `json:"confidence"`
}

// Report is the trends block of a profile.
type Report struct {
	QualityTrend    *Series           `json:"quality_trend"`
	DifficultyTrend *Series           `json:"difficulty_trend"`
	Forecast        *Forecast         `json:"forecast"`
	Seasonality     map[string]string `json:"seasonality"`
}

// Analyze computes the trend report of an entity's rows.
func Analyze(rows []review.Row, alpha float64) Report {
	report := Report{Seasonality: map[string]string{}}
	if len(rows) < MinRows {
		return report
	}
	if alpha <= 0 || alpha > 1 {
		alpha = stats.DefaultEWMAAlpha
	}

	quality := make(map[string][]float64)
	difficulty := make(map[string][]float64)
	for i := range rows {
		r := &rows[i]
		if !r.Dated() {
			continue
		}
		key := r.MonthKey()
		if r.Quality != nil {
			quality[key] = append(quality[key], *r.Quality)
		}
		if r.Difficulty != nil {
			difficulty[key] = append(difficulty[key], *r.Difficulty)
		}
	}

	report.QualityTrend = smooth(quality, alpha)
	report.DifficultyTrend = smooth(difficulty, alpha)

	if q := report.QualityTrend; q != nil {
		next := q.Last()
		report.Forecast = &Forecast{
			QualityNext: next,
			QualityBand: stats.Interval{
				math.Max(qualityMin, next-forecastZ*q.Sigma),
				math.Min(qualityMax, next+forecastZ*q.Sigma),
			},
			Confidence: forecastConfidence,
		}
	}
	return report
}

// smooth averages each month and returns the EWMA series, or nil when fewer
// than two months carry values.
func smooth(byMonth map[string][]float64, alpha float64) *Series {
	if len(byMonth) < 2 {
		return nil
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = stat.Mean(byMonth[m], nil)
	}

	ewma := stats.EWMA(series, alpha)
	residuals := make([]float64, len(series))
	for i := range series {
		residuals[i] = series[i] - ewma[i]
	}

	return &Series{
		Months: months,
		Series: series,
		EWMA:   ewma,
		Sigma:  stats.SampleStdDevOr(residuals, DefaultSigma),
	}
}
