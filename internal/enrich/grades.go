// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package enrich

import (
	"math"

	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
)

const (
	gradeScaleMin  = 0.0
	gradeScaleMax  = 10.0
	gradeBinEdges  = 11
	minEquityPairs = 3
)

// AnalyzeGrades summarizes the grades of rows that report both a grade and
// a difficulty, and derives the equity index from their rank correlation.
func AnalyzeGrades(rows []review.Row) GradesAnalysis {
	var grades, difficulties []float64
	for i := range rows {
		r := &rows[i]
		if r.Grade == nil || r.Difficulty == nil {
			continue
		}
		grades = append(grades, *r.Grade)
		difficulties = append(difficulties, *r.Difficulty)
	}

	if len(grades) == 0 {
		return GradesAnalysis{}
	}

	hist := stats.LinearHistogram(grades, gradeScaleMin, gradeScaleMax, gradeBinEdges)
	out := GradesAnalysis{
		Distribution: GradeDistribution{
			Mean:      stats.Mean(grades),
			Std:       stats.SampleStdDev(grades),
			Histogram: &hist,
		},
		NGrades: len(grades),
	}

	if len(grades) >= minEquityPairs {
		if rho, ok := stats.Spearman(difficulties, grades); ok {
			eq := EquityIndex(rho)
			out.EquityIndex = &eq
		}
	}
	return out
}

// EquityIndex maps a difficulty/grade rank correlation to [0, 1]: 1 when
// harder courses do not yield higher grades, falling as they do.
func EquityIndex(rho float64) float64 {
	return stats.Round(1-math.Max(0, rho), 2)
}
