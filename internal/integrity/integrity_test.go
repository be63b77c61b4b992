// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package integrity

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/facultypulse/internal/review"
)

var base = time.Date(2023, time.March, 1, 9, 0, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func datedRow(offset time.Duration, quality float64, comment string) review.Row {
	d := base.Add(offset)
	return review.Row{Date: &d, Quality: ptr(quality), Comment: comment}
}

func TestDetectBursts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offsets   []time.Duration
		wantCount []int
	}{
		{
			name:      "three reviews in ten minutes",
			offsets:   []time.Duration{0, 5 * time.Minute, 10 * time.Minute},
			wantCount: []int{3},
		},
		{
			name:      "three reviews across 48 hours",
			offsets:   []time.Duration{0, 24*time.Hour + time.Minute, 48 * time.Hour},
			wantCount: nil,
		},
		{
			name:      "window boundary is inclusive",
			offsets:   []time.Duration{0, time.Hour, 24 * time.Hour},
			wantCount: []int{3},
		},
		{
			name:      "every qualifying window is emitted",
			offsets:   []time.Duration{0, time.Minute, 2 * time.Minute, 3 * time.Minute},
			wantCount: []int{3, 4},
		},
		{
			name:      "too few dates",
			offsets:   []time.Duration{0, time.Minute},
			wantCount: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dates := make([]time.Time, 0, len(tt.offsets))
			// Reverse order to exercise sorting.
			for i := len(tt.offsets) - 1; i >= 0; i-- {
				dates = append(dates, base.Add(tt.offsets[i]))
			}

			bursts := DetectBursts(dates, 24*time.Hour, 3)
			if len(bursts) != len(tt.wantCount) {
				t.Fatalf("expected %d bursts, got %d (%v)", len(tt.wantCount), len(bursts), bursts)
			}
			for i, b := range bursts {
				if b.Count != tt.wantCount[i] {
					t.Errorf("burst %d: expected count %d, got %d", i, tt.wantCount[i], b.Count)
				}
			}
		})
	}
}

func TestDetectBursts_Format(t *testing.T) {
	t.Parallel()

	bursts := DetectBursts([]time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}, 24*time.Hour, 3)
	if len(bursts) != 1 {
		t.Fatalf("expected 1 burst, got %d", len(bursts))
	}
	if bursts[0].From != "2023-03-01T09:00:00" || bursts[0].To != "2023-03-01T09:02:00" {
		t.Errorf("unexpected window %s..%s", bursts[0].From, bursts[0].To)
	}
}

func TestTrustScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dupRate float64
		burst   bool
		lowVar  bool
		want    float64
	}{
		{"clean", 0, false, false, 1},
		{"half duplicates", 0.5, false, false, 0.75},
		{"duplicate penalty capped", 1, false, false, 0.5},
		{"burst", 0, true, false, 0.7},
		{"low variance", 0, false, true, 0.8},
		{"everything", 1, true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TrustScore(tt.dupRate, tt.burst, tt.lowVar)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got < 0 || got > 1 {
				t.Errorf("trust %v outside [0,1]", got)
			}
		})
	}
}

func TestIsLowVariance(t *testing.T) {
	t.Parallel()

	if !IsLowVariance([]float64{8, 8, 8, 8, 8}, 5, 0.1) {
		t.Error("expected identical ratings to be flagged")
	}
	if IsLowVariance([]float64{8, 8, 8, 8}, 5, 0.1) {
		t.Error("expected fewer than 5 ratings not to be flagged")
	}
	if IsLowVariance([]float64{2, 8, 5, 9, 1}, 5, 0.1) {
		t.Error("expected varied ratings not to be flagged")
	}
}

func TestDuplicateRate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	comments := []string{
		"Excelente profesor, muy claro",
		"excelente profesor muy claro",
		"Los examenes son imposibles",
	}
	got := DuplicateRate(comments, cfg)
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("expected 1/3, got %v", got)
	}

	if got := DuplicateRate([]string{"de la", "el y"}, cfg); got != 0 {
		t.Errorf("expected vectorizer failure to yield 0, got %v", got)
	}
	if got := DuplicateRate([]string{"uno"}, cfg); got != 0 {
		t.Errorf("expected single comment to yield 0, got %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	rows := []review.Row{
		datedRow(0, 9, "Excelente profesor, muy claro"),
		datedRow(5*time.Minute, 9, "excelente profesor muy claro"),
		datedRow(10*time.Minute, 9, "Los examenes son imposibles"),
		datedRow(30*24*time.Hour, 9, ""),
		datedRow(60*24*time.Hour, 9, ""),
		{Quality: ptr(9)},
	}

	report := Analyze(rows, DefaultConfig())
	if report.DupRate != 0.333 {
		t.Errorf("expected dup_rate 0.333, got %v", report.DupRate)
	}
	if len(report.Bursts) != 1 || report.Bursts[0].Count != 3 {
		t.Errorf("expected one burst of 3, got %v", report.Bursts)
	}
	if !report.LowVariance() {
		t.Error("expected low variance flag")
	}
	// 1 - 0.1667 - 0.3 - 0.2 = 0.3333
	if report.TrustScore != 0.33 {
		t.Errorf("expected trust 0.33, got %v", report.TrustScore)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	report := Analyze(nil, DefaultConfig())
	if report.TrustScore != 1 || report.DupRate != 0 || report.LowVarianceFlag != 0 {
		t.Errorf("unexpected report for empty rows: %+v", report)
	}
	if report.Bursts == nil {
		t.Error("expected empty, non-nil bursts")
	}
}
