// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultBayesK is the prior strength in pseudo-observations.
	DefaultBayesK = 10.0

	// DefaultConfidence is the Wilson interval confidence level.
	DefaultConfidence = 0.95
)

// zScores maps supported confidence levels to two-sided z values.
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// BayesianScore shrinks the sample mean of values toward mu with prior
// strength k: (mu*k + sum) / (k + n). An empty sample returns mu.
func BayesianScore(values []float64, mu, k float64) float64 {
	if len(values) == 0 {
		return mu
	}
	return (mu*k + floats.Sum(values)) / (k + float64(len(values)))
}

// Interval is a closed [lower, upper] range that encodes as a JSON pair.
type Interval [2]float64

// Lower returns the lower bound.
func (i Interval) Lower() float64 { return i[0] }

// Upper returns the upper bound.
func (i Interval) Upper() float64 { return i[1] }

// Width returns upper - lower.
func (i Interval) Width() float64 { return i[1] - i[0] }

// ZForConfidence returns the z value for a supported confidence level and
// whether the level was recognized. Unknown levels fall back to 95%.
func ZForConfidence(confidence float64) (float64, bool) {
	for level, z := range zScores {
		if math.Abs(level-confidence) < 1e-9 {
			return z, true
		}
	}
	return zScores[DefaultConfidence], false
}

// WilsonInterval returns the Wilson score interval for proportion p over n
// trials. n == 0 yields the uninformative interval [0, 1].
func WilsonInterval(p float64, n int, confidence float64) Interval {
	if n <= 0 {
		return Interval{0, 1}
	}

	z, _ := ZForConfidence(confidence)
	nf := float64(n)
	z2 := z * z

	denom := 1 + z2/nf
	center := p + z2/(2*nf)
	adj := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))

	return Interval{
		clamp((center-adj)/denom, 0, 1),
		clamp((center+adj)/denom, 0, 1),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
