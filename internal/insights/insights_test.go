// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package insights

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/integrity"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/trend"
)

func ptr(f float64) *float64 { return &f }

type opt func(*enrich.Profile)

func withSubjects(names ...string) opt {
	return func(p *enrich.Profile) {
		for i, n := range names {
			p.Subjects.PerSubject = append(p.Subjects.PerSubject, enrich.SubjectScore{Materia: n, ZDecayed: float64(i), N: 5})
		}
	}
}

func withTrust(t float64) opt {
	return func(p *enrich.Profile) { p.Integrity.TrustScore = t }
}

func newProfile(id string, quality, difficulty float64, n int, opts ...opt) *enrich.Profile {
	p := &enrich.Profile{
		ProfessorID: id,
		Nombre:      "Prof " + id,
		Bayes:       enrich.BayesAnalysis{QualityBayes: ptr(quality)},
		Decay:       enrich.DecayAnalysis{QualityDecayed: ptr(quality), DifficultyDecayed: ptr(difficulty)},
		Integrity:   integrity.Report{TrustScore: 1, Bursts: []integrity.Burst{}},
		NReviews:    n,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func TestShortlistScore(t *testing.T) {
	t.Parallel()

	got := ShortlistScore(8, 2, 0.9, 10)
	want := 8*0.4 + (1-2.0/5)*0.3 + 0.9*0.2 + 0.5*0.1
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if capped := ShortlistScore(0, 5, 0, 100); math.Abs(capped-0.1) > 1e-12 {
		t.Errorf("expected volume term capped at 0.1, got %v", capped)
	}
}

func TestShortlist(t *testing.T) {
	t.Parallel()

	profiles := []*enrich.Profile{
		newProfile("good", 9, 2, 20, withSubjects("CALCULO")),
		newProfile("better-score", 9.5, 1, 20, withSubjects("FISICA")),
		newProfile("too-hard", 9, 4, 20, withSubjects("CALCULO")),
		newProfile("untrusted", 9, 2, 20, withSubjects("CALCULO"), withTrust(0.5)),
		newProfile("few", 9, 2, 2, withSubjects("CALCULO")),
		enrich.NoReviews("marker"),
	}

	all := Shortlist(profiles, ShortlistQuery{})
	if len(all) != 2 || all[0].ProfessorID != "better-score" || all[1].ProfessorID != "good" {
		t.Fatalf("unexpected shortlist %+v", all)
	}

	calc := Shortlist(profiles, ShortlistQuery{Subject: "calculo"})
	if len(calc) != 1 || calc[0].ProfessorID != "good" {
		t.Errorf("expected only 'good' for calculo, got %+v", calc)
	}

	hard := Shortlist(profiles, ShortlistQuery{MaxDifficulty: 5, Limit: 1})
	if len(hard) != 1 {
		t.Errorf("expected limit 1, got %d", len(hard))
	}
}

func TestTrendDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ewma      []float64
		direction Direction
		strength  float64
	}{
		{"rising", []float64{5, 6, 7, 8}, DirectionIncreasing, 2},
		{"falling", []float64{8, 7}, DirectionDecreasing, 1},
		{"flat", []float64{7, 7.2, 7.4}, DirectionStable, 0.4},
		{"single point", []float64{7}, DirectionStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newProfile("a", 7, 2, 5)
			p.Trends.QualityTrend = &trend.Series{EWMA: tt.ewma, Months: make([]string, len(tt.ewma))}
			got := TrendDirection(p)
			if got.Direction != tt.direction {
				t.Errorf("expected %s, got %s", tt.direction, got.Direction)
			}
			if math.Abs(got.Strength-tt.strength) > 1e-9 {
				t.Errorf("expected strength %v, got %v", tt.strength, got.Strength)
			}
		})
	}

	if got := TrendDirection(newProfile("b", 7, 2, 5)); got.Direction != DirectionStable || got.QualityEWMA == nil {
		t.Errorf("expected stable with empty series, got %+v", got)
	}
}

func publicRows(qualities ...float64) []review.PublicRow {
	rows := make([]review.PublicRow, len(qualities))
	for i, q := range qualities {
		rows[i] = review.PublicRow{Calidad: ptr(q)}
	}
	return rows
}

func TestDetectAnomalies(t *testing.T) {
	t.Parallel()

	spread := newProfile("spread", 6, 2, 5)
	spread.ReviewsPublic = publicRows(1, 10, 1, 10, 5)

	untrusted := newProfile("untrusted", 6, 2, 5, withTrust(0.3))

	bursty := newProfile("bursty", 6, 2, 5)
	bursty.Integrity.Bursts = []integrity.Burst{{Count: 3}}

	dupes := newProfile("dupes", 6, 2, 5)
	dupes.Integrity.DupRate = 0.2

	calm := newProfile("calm", 6, 2, 5)
	calm.ReviewsPublic = publicRows(6, 6, 7, 6)

	got := DetectAnomalies([]*enrich.Profile{spread, untrusted, bursty, dupes, calm, enrich.NoReviews("m")})

	if len(got.HighVariance) != 1 || got.HighVariance[0].ProfessorID != "spread" {
		t.Errorf("unexpected high variance %+v", got.HighVariance)
	}
	if len(got.LowTrust) != 1 || got.LowTrust[0].ProfessorID != "untrusted" {
		t.Errorf("unexpected low trust %+v", got.LowTrust)
	}
	if len(got.SuspiciousPatterns) != 2 {
		t.Errorf("expected bursty and dupes flagged, got %+v", got.SuspiciousPatterns)
	}
	if got.Count() != 4 {
		t.Errorf("expected 4 flags, got %d", got.Count())
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := newProfile("a", 8, 2, 5, withSubjects("CALCULO", "FISICA"))
	b := newProfile("b", 7, 3, 5, withSubjects("FISICA", "CALCULO"))
	c := newProfile("c", 9, 1, 5, withSubjects("QUIMICA"))

	cmp, err := Compare([]*enrich.Profile{a, b, c}, []string{"a", "b", "missing", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.Professors) != 2 {
		t.Errorf("expected 2 sheets, got %d", len(cmp.Professors))
	}
	if len(cmp.CommonSubjects) != 2 {
		t.Fatalf("expected 2 common subjects, got %+v", cmp.CommonSubjects)
	}
	first := cmp.CommonSubjects[0]
	// CALCULO: a has z 0, b has z 1.
	if first.Materia != "CALCULO" || first.ZDiff != 1 {
		t.Errorf("unexpected first common subject %+v", first)
	}
	if !cmp.Pareto.IsEfficient("a") || cmp.Pareto.IsEfficient("b") {
		t.Errorf("expected only 'a' efficient, got %v", cmp.Pareto.EfficientIDs)
	}

	if _, err := Compare([]*enrich.Profile{a}, []string{"a", "zzz"}); !errors.Is(err, ErrTooFewEntities) {
		t.Errorf("expected ErrTooFewEntities, got %v", err)
	}
}

func TestBuildSubjectReport(t *testing.T) {
	t.Parallel()

	base := baseline.Build([][]review.Row{{
		{Quality: ptr(6), Category: "CALCULO"},
		{Quality: ptr(8), Category: "CALCULO"},
		{Quality: ptr(10), Category: "CALCULO"},
	}})
	profiles := []*enrich.Profile{
		newProfile("low", 6, 3, 5, withSubjects("CALCULO")),
		newProfile("high", 9, 1, 5, withSubjects("CALCULO")),
		newProfile("other", 7, 2, 5, withSubjects("FISICA")),
	}

	report, err := BuildSubjectReport(base, profiles, " calculo ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Subject != "CALCULO" || report.NProfessors != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Professors[0].ProfessorID != "high" {
		t.Errorf("expected best quality first, got %s", report.Professors[0].ProfessorID)
	}
	if report.AvgQuality == nil || *report.AvgQuality != 7.5 {
		t.Errorf("expected avg quality 7.5, got %v", report.AvgQuality)
	}
	if report.Baseline.NReviews != 3 {
		t.Errorf("expected baseline count 3, got %d", report.Baseline.NReviews)
	}

	if _, err := BuildSubjectReport(base, profiles, "ARTE"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	profiles := []*enrich.Profile{newProfile("a", 7, 2, 5), enrich.NoReviews("m")}
	if p, err := Find(profiles, "a"); err != nil || p.ProfessorID != "a" {
		t.Errorf("expected profile a, got %v, %v", p, err)
	}
	if _, err := Find(profiles, "m"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for marker, got %v", err)
	}
}
