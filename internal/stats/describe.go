// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or nil for an empty slice.
func Mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := stat.Mean(xs, nil)
	return &m
}

// SampleStdDev returns the Bessel-corrected standard deviation, or nil when
// fewer than two values exist.
func SampleStdDev(xs []float64) *float64 {
	if len(xs) < 2 {
		return nil
	}
	s := stat.StdDev(xs, nil)
	return &s
}

// SampleStdDevOr returns SampleStdDev or def when it is undefined.
func SampleStdDevOr(xs []float64, def float64) float64 {
	if s := SampleStdDev(xs); s != nil {
		return *s
	}
	return def
}

// PopVariance returns the population variance (ddof = 0).
func PopVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.PopVariance(xs, nil)
}

// Histogram counts xs into the bins delimited by edges. Bins are half-open
// except the last, which includes its upper edge; values outside the edges
// are ignored.
type Histogram struct {
	Counts []int     `json:"counts"`
	Bins   []float64 `json:"bins"`
}

// LinearHistogram builds a histogram with bins equally spaced edges over
// [lo, hi].
func LinearHistogram(xs []float64, lo, hi float64, edges int) Histogram {
	if edges < 2 {
		edges = 2
	}
	bins := floats.Span(make([]float64, edges), lo, hi)
	counts := make([]int, edges-1)

	for _, x := range xs {
		if x < lo || x > hi || math.IsNaN(x) {
			continue
		}
		if x == hi {
			counts[len(counts)-1]++
			continue
		}
		// First edge strictly greater than x closes x's bin.
		i := sort.SearchFloat64s(bins, x)
		if i < len(bins) && bins[i] == x {
			i++
		}
		counts[i-1]++
	}

	return Histogram{Counts: counts, Bins: bins}
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// RoundPtr rounds a nullable value.
func RoundPtr(x *float64, places int) *float64 {
	if x == nil {
		return nil
	}
	r := Round(*x, places)
	return &r
}

// Finite returns nil for NaN or infinite values.
func Finite(x *float64) *float64 {
	if x == nil || math.IsNaN(*x) || math.IsInf(*x, 0) {
		return nil
	}
	return x
}
