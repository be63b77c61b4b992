// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultHalfLifeMonths is the age at which an observation's weight halves.
const DefaultHalfLifeMonths = 24.0

// DatedValue is an observation with an optional date.
type DatedValue struct {
	Value float64
	Date  *time.Time
}

// MonthsBetween returns the fractional month difference b - a, counting
// whole calendar months plus the day difference over 30.
func MonthsBetween(a, b time.Time) float64 {
	return float64((b.Year()-a.Year())*12) +
		float64(int(b.Month())-int(a.Month())) +
		float64(b.Day()-a.Day())/30.0
}

// DecayWeight returns 0.5^(age/halfLife) for an observation dated at date.
func DecayWeight(date, now time.Time, halfLife float64) float64 {
	if halfLife <= 0 {
		halfLife = DefaultHalfLifeMonths
	}
	return math.Pow(0.5, MonthsBetween(date, now)/halfLife)
}

// DecayedMean returns the half-life weighted mean of the dated points.
// Undated points only contribute to the naive mean, which is returned when
// no point is dated. It returns nil for an empty input.
func DecayedMean(points []DatedValue, now time.Time, halfLife float64) *float64 {
	if len(points) == 0 {
		return nil
	}

	naive := make([]float64, 0, len(points))
	for _, p := range points {
		naive = append(naive, p.Value)
	}

	if decayed := DecayedOnly(points, now, halfLife); decayed != nil {
		return decayed
	}

	m := stat.Mean(naive, nil)
	return &m
}

// DecayedOnly is DecayedMean without the naive fallback: it returns nil when
// no point is dated.
func DecayedOnly(points []DatedValue, now time.Time, halfLife float64) *float64 {
	values := make([]float64, 0, len(points))
	weights := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Date == nil {
			continue
		}
		values = append(values, p.Value)
		weights = append(weights, DecayWeight(*p.Date, now, halfLife))
	}
	if len(values) == 0 {
		return nil
	}

	m := stat.Mean(values, weights)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return nil
	}
	return &m
}
