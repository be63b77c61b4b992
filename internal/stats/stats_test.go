// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package stats

import (
	"math"
	"reflect"
	"testing"
	"time"
)

const eps = 1e-9

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestBayesianScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		mu     float64
		k      float64
		want   float64
	}{
		{"empty returns prior", nil, 7.3, 10, 7.3},
		{"empty with zero k", []float64{}, 4, 0, 4},
		{"single value", []float64{10}, 7, 10, (7.0*10 + 10) / 11},
		{"zero k is sample mean", []float64{2, 4}, 9, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BayesianScore(tt.values, tt.mu, tt.k)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("BayesianScore() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := BayesianScore([]float64{10}, 7, 10); math.Abs(got-7.2727) > 1e-4 {
		t.Errorf("expected ≈7.2727, got %v", got)
	}
}

func TestBayesianScore_ConvergesToSampleMean(t *testing.T) {
	t.Parallel()

	values := make([]float64, 100000)
	for i := range values {
		values[i] = 9
	}
	if got := BayesianScore(values, 1, 10); math.Abs(got-9) > 1e-3 {
		t.Errorf("expected score near 9, got %v", got)
	}
}

func TestWilsonInterval(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{0, 0.3, 1} {
		if got := WilsonInterval(p, 0, 0.95); got != (Interval{0, 1}) {
			t.Errorf("WilsonInterval(%v, 0) = %v, want [0 1]", p, got)
		}
	}

	small := WilsonInterval(0.5, 10, 0.95)
	large := WilsonInterval(0.5, 10000, 0.95)
	if large.Width() >= small.Width() {
		t.Errorf("expected interval to narrow, got %v then %v", small.Width(), large.Width())
	}
	if large.Width() > 0.02 {
		t.Errorf("expected width below 0.02 at n=10000, got %v", large.Width())
	}

	all := WilsonInterval(1, 5, 0.95)
	if all.Upper() != 1 || all.Lower() <= 0 || all.Lower() >= 1 {
		t.Errorf("unexpected interval for p=1: %v", all)
	}

	unknown := WilsonInterval(0.7, 20, 0.42)
	standard := WilsonInterval(0.7, 20, 0.95)
	if unknown != standard {
		t.Errorf("expected unknown confidence to fall back to 95%%, got %v vs %v", unknown, standard)
	}

	wide := WilsonInterval(0.7, 20, 0.99)
	if wide.Width() <= standard.Width() {
		t.Error("expected 99% interval to be wider than 95%")
	}
}

func TestDecayedMean(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("half life apart weights 2 to 1", func(t *testing.T) {
		points := []DatedValue{
			{Value: 10, Date: date(2024, 1, 15)},
			{Value: 0, Date: date(2022, 1, 15)},
		}
		got := DecayedMean(points, now, 24)
		if got == nil || math.Abs(*got-20.0/3.0) > 1e-9 {
			t.Errorf("expected 6.667, got %v", got)
		}
	})

	t.Run("undated only falls back to naive mean", func(t *testing.T) {
		points := []DatedValue{{Value: 4}, {Value: 8}, {Value: 9}}
		got := DecayedMean(points, now, 24)
		if got == nil || math.Abs(*got-7) > eps {
			t.Errorf("expected 7, got %v", got)
		}
	})

	t.Run("undated ignored when any dated", func(t *testing.T) {
		points := []DatedValue{{Value: 0}, {Value: 6, Date: date(2023, 5, 1)}}
		got := DecayedMean(points, now, 24)
		if got == nil || math.Abs(*got-6) > eps {
			t.Errorf("expected 6, got %v", got)
		}
	})

	t.Run("empty is nil", func(t *testing.T) {
		if got := DecayedMean(nil, now, 24); got != nil {
			t.Errorf("expected nil, got %v", *got)
		}
	})

	t.Run("decayed only has no fallback", func(t *testing.T) {
		if got := DecayedOnly([]DatedValue{{Value: 3}}, now, 24); got != nil {
			t.Errorf("expected nil, got %v", *got)
		}
	})
}

func TestMonthsBetween(t *testing.T) {
	t.Parallel()

	got := MonthsBetween(*date(2020, 1, 1), *date(2021, 3, 16))
	if math.Abs(got-14.5) > eps {
		t.Errorf("expected 14.5, got %v", got)
	}
}

func TestSpearman(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		x, y   []float64
		want   float64
		wantOK bool
	}{
		{"perfect monotone", []float64{1, 2, 3, 4}, []float64{10, 20, 30, 40}, 1, true},
		{"perfect inverse", []float64{1, 2, 3}, []float64{9, 5, 1}, -1, true},
		{"uncorrelated", []float64{1, 2, 3, 4, 5}, []float64{2, 5, 3, 1, 4}, 0, true},
		{"ties averaged", []float64{1, 1, 2}, []float64{1, 2, 3}, math.Sqrt(3) / 2, true},
		{"constant is undefined", []float64{3, 3, 3}, []float64{1, 2, 3}, 0, false},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Spearman(tt.x, tt.y)
			if ok != tt.wantOK {
				t.Fatalf("Spearman() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Spearman() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRanks(t *testing.T) {
	t.Parallel()

	got := Ranks([]float64{30, 10, 20, 10})
	want := []float64{4, 1.5, 3, 1.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEWMA(t *testing.T) {
	t.Parallel()

	got := EWMA([]float64{10, 0, 10}, 0.3)
	want := []float64{10, 7, 7.9}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("EWMA() = %v, want %v", got, want)
		}
	}
	if EWMA(nil, 0.3) != nil {
		t.Error("expected nil for empty series")
	}
}

func TestLinearHistogram(t *testing.T) {
	t.Parallel()

	h := LinearHistogram([]float64{0, 0.5, 3, 9.99, 10, 11, -1}, 0, 10, 11)
	if len(h.Bins) != 11 || h.Bins[0] != 0 || h.Bins[10] != 10 {
		t.Fatalf("unexpected bins %v", h.Bins)
	}
	want := []int{2, 0, 0, 1, 0, 0, 0, 0, 0, 2}
	if !reflect.DeepEqual(h.Counts, want) {
		t.Errorf("expected counts %v, got %v", want, h.Counts)
	}
}

func TestDescriptive(t *testing.T) {
	t.Parallel()

	if Mean(nil) != nil || SampleStdDev([]float64{1}) != nil {
		t.Error("expected nil for insufficient data")
	}
	if got := SampleStdDevOr([]float64{5}, 1.0); got != 1.0 {
		t.Errorf("expected default 1.0, got %v", got)
	}
	if got := *SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); math.Abs(got-2.138089935) > 1e-6 {
		t.Errorf("unexpected sample std %v", got)
	}
	if got := PopVariance([]float64{2, 4, 4, 4, 5, 5, 7, 9}); math.Abs(got-4) > eps {
		t.Errorf("expected population variance 4, got %v", got)
	}
	if got := Round(0.125, 2); got != 0.13 {
		t.Errorf("expected 0.13, got %v", got)
	}
	nan := math.NaN()
	if Finite(&nan) != nil {
		t.Error("expected NaN to be dropped")
	}
}
