// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package insights answers cross-entity questions over a finished batch of
profiles: which entities to shortlist for a subject, which look anomalous,
how a handful of entities compare, and how a subject is taught overall.

Everything here reads published profiles only, so the API can serve these
reports straight from a snapshot store without re-running the pipeline.
*/
package insights

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/ranking"
	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/trend"
)

var (
	// ErrUnknownSubject is returned when a subject has no baseline.
	ErrUnknownSubject = errors.New("subject has no baseline")

	// ErrTooFewEntities is returned when a comparison matches fewer than two
	// analyzed entities.
	ErrTooFewEntities = errors.New("comparison needs at least two analyzed entities")

	// ErrNotFound is returned when an entity id is unknown.
	ErrNotFound = errors.New("entity not found")
)

// Shortlist defaults.
const (
	DefaultMaxDifficulty = 3.0
	DefaultShortlistSize = 10
	MinShortlistTrust    = 0.6
	MinShortlistReviews  = 3
)

// ShortlistQuery filters the shortlist.
type ShortlistQuery struct {
	Subject       string  `json:"subject,omitempty"`
	MaxDifficulty float64 `json:"max_difficulty" validate:"gte=0,lte=5"`
	Limit         int     `json:"limit" validate:"gte=0,lte=100"`
}

// Candidate is one shortlisted entity.
type Candidate struct {
	ProfessorID string   `json:"professor_id"`
	Nombre      string   `json:"nombre"`
	Quality     float64  `json:"quality"`
	Difficulty  float64  `json:"difficulty"`
	Trust       float64  `json:"trust"`
	NReviews    int      `json:"n_reviews"`
	Score       float64  `json:"score"`
	Subjects    []string `json:"subjects"`
}

// Shortlist ranks trustworthy, well-reviewed entities whose current
// difficulty stays under the query's maximum.
func Shortlist(profiles []*enrich.Profile, q ShortlistQuery) []Candidate {
	if q.MaxDifficulty <= 0 {
		q.MaxDifficulty = DefaultMaxDifficulty
	}
	if q.Limit <= 0 {
		q.Limit = DefaultShortlistSize
	}

	out := []Candidate{}
	for _, p := range analyzed(profiles) {
		quality, difficulty := p.Bayes.QualityBayes, p.Decay.DifficultyDecayed
		trust := p.Integrity.TrustScore
		if quality == nil || difficulty == nil {
			continue
		}
		if *difficulty > q.MaxDifficulty || trust < MinShortlistTrust || p.NReviews < MinShortlistReviews {
			continue
		}

		subjects := make([]string, 0, len(p.Subjects.PerSubject))
		teaches := q.Subject == ""
		for _, s := range p.Subjects.PerSubject {
			subjects = append(subjects, s.Materia)
			if strings.EqualFold(s.Materia, q.Subject) {
				teaches = true
			}
		}
		if !teaches {
			continue
		}

		out = append(out, Candidate{
			ProfessorID: p.ProfessorID,
			Nombre:      p.Nombre,
			Quality:     *quality,
			Difficulty:  *difficulty,
			Trust:       trust,
			NReviews:    p.NReviews,
			Score:       ShortlistScore(*quality, *difficulty, trust, p.NReviews),
			Subjects:    subjects,
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// ShortlistScore weighs quality, ease, trust and review volume.
func ShortlistScore(quality, difficulty, trust float64, n int) float64 {
	volume := math.Min(float64(n)/20, 1)
	return quality*0.4 + (1-difficulty/5)*0.3 + trust*0.2 + volume*0.1
}

// Direction labels a trend.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// trendSlopeThreshold separates a real move from noise.
const trendSlopeThreshold = 0.5

// TrendSummary describes where an entity's quality is heading.
type TrendSummary struct {
	ProfessorID string          `json:"professor_id"`
	Nombre      string          `json:"nombre"`
	Months      []string        `json:"months"`
	QualityEWMA []float64       `json:"quality_ewma"`
	Forecast    *trend.Forecast `json:"forecast"`
	Direction   Direction       `json:"trend_direction"`
	Strength    float64         `json:"trend_strength"`
}

// TrendDirection reads the last three smoothed quality values of p.
func TrendDirection(p *enrich.Profile) TrendSummary {
	out := TrendSummary{
		ProfessorID: p.ProfessorID,
		Nombre:      p.Nombre,
		Months:      []string{},
		QualityEWMA: []float64{},
		Forecast:    p.Trends.Forecast,
		Direction:   DirectionStable,
	}

	q := p.Trends.QualityTrend
	if q == nil || len(q.EWMA) < 2 {
		return out
	}
	out.Months = q.Months
	out.QualityEWMA = q.EWMA

	recent := q.EWMA
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	slope := recent[len(recent)-1] - recent[0]
	switch {
	case slope > trendSlopeThreshold:
		out.Direction = DirectionIncreasing
	case slope < -trendSlopeThreshold:
		out.Direction = DirectionDecreasing
	}
	out.Strength = math.Abs(slope)
	return out
}

// Anomaly thresholds.
const (
	HighVarianceThreshold = 2.0
	HighVarianceMinValues = 5
	LowTrustThreshold     = 0.5
	SuspiciousDupRate     = 0.1
)

// VarianceAnomaly flags widely spread quality ratings.
type VarianceAnomaly struct {
	ProfessorID string  `json:"professor_id"`
	Nombre      string  `json:"nombre"`
	Variance    float64 `json:"variance"`
	NReviews    int     `json:"n_reviews"`
}

// TrustAnomaly flags a low trust score.
type TrustAnomaly struct {
	ProfessorID string  `json:"professor_id"`
	Nombre      string  `json:"nombre"`
	TrustScore  float64 `json:"trust_score"`
}

// PatternAnomaly flags duplicate, burst or uniformity signals.
type PatternAnomaly struct {
	ProfessorID string  `json:"professor_id"`
	Nombre      string  `json:"nombre"`
	DupRate     float64 `json:"dup_rate"`
	Bursts      int     `json:"bursts"`
	LowVariance bool    `json:"low_variance"`
}

// Anomalies groups the flagged entities.
type Anomalies struct {
	HighVariance       []VarianceAnomaly `json:"high_variance"`
	LowTrust           []TrustAnomaly    `json:"low_trust"`
	SuspiciousPatterns []PatternAnomaly  `json:"suspicious_patterns"`
}

// Count returns the total number of flags.
func (a *Anomalies) Count() int {
	return len(a.HighVariance) + len(a.LowTrust) + len(a.SuspiciousPatterns)
}

// DetectAnomalies scans the profiles for rating spread and integrity
// problems. Quality values are read from the public rows.
func DetectAnomalies(profiles []*enrich.Profile) Anomalies {
	out := Anomalies{
		HighVariance:       []VarianceAnomaly{},
		LowTrust:           []TrustAnomaly{},
		SuspiciousPatterns: []PatternAnomaly{},
	}

	for _, p := range analyzed(profiles) {
		qualities := make([]float64, 0, len(p.ReviewsPublic))
		for _, r := range p.ReviewsPublic {
			if r.Calidad != nil {
				qualities = append(qualities, *r.Calidad)
			}
		}
		if len(qualities) >= HighVarianceMinValues {
			if v := stats.PopVariance(qualities); v > HighVarianceThreshold {
				out.HighVariance = append(out.HighVariance, VarianceAnomaly{
					ProfessorID: p.ProfessorID,
					Nombre:      p.Nombre,
					Variance:    v,
					NReviews:    len(qualities),
				})
			}
		}

		ig := &p.Integrity
		if ig.TrustScore < LowTrustThreshold {
			out.LowTrust = append(out.LowTrust, TrustAnomaly{
				ProfessorID: p.ProfessorID,
				Nombre:      p.Nombre,
				TrustScore:  ig.TrustScore,
			})
		}
		if ig.DupRate > SuspiciousDupRate || ig.HasBursts() || ig.LowVariance() {
			out.SuspiciousPatterns = append(out.SuspiciousPatterns, PatternAnomaly{
				ProfessorID: p.ProfessorID,
				Nombre:      p.Nombre,
				DupRate:     ig.DupRate,
				Bursts:      len(ig.Bursts),
				LowVariance: ig.LowVariance(),
			})
		}
	}
	return out
}

// MetricSheet is the side-by-side view of one compared entity.
type MetricSheet struct {
	Nombre             string          `json:"nombre"`
	QualityBayes       *float64        `json:"quality_bayes"`
	QualityNow         *float64        `json:"quality_now"`
	DifficultyNow      *float64        `json:"difficulty_now"`
	NReviews           int             `json:"n_reviews"`
	RecommendationRate *float64        `json:"recommendation_rate"`
	WilsonInterval     *stats.Interval `json:"wilson_interval"`
	TrustScore         float64         `json:"trust_score"`
	EquityIndex        *float64        `json:"equity_index"`
	ZMean              *float64        `json:"z_mean"`
	SentimentAvg       *float64        `json:"sentiment_avg"`
}

// SubjectStanding is one entity's decayed z in a shared subject.
type SubjectStanding struct {
	ProfessorID string  `json:"professor_id"`
	ZDecayed    float64 `json:"z_decayed"`
	N           int     `json:"n"`
}

// CommonSubject is a subject taught by at least two compared entities.
type CommonSubject struct {
	Materia    string            `json:"materia"`
	Professors []SubjectStanding `json:"professors"`

	// ZDiff is the second entity's z minus the first's, in request order.
	ZDiff float64 `json:"z_diff"`
}

// Comparison is the result of Compare.
type Comparison struct {
	Professors     map[string]MetricSheet `json:"professors"`
	CommonSubjects []CommonSubject        `json:"common_subjects"`
	Pareto         ranking.Frontier       `json:"pareto_analysis"`
}

// Compare puts the requested entities side by side. Unknown ids and
// no-review markers are skipped.
func Compare(profiles []*enrich.Profile, ids []string) (*Comparison, error) {
	byID := index(profiles)

	selected := make([]*enrich.Profile, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, p)
	}
	if len(selected) < 2 {
		return nil, ErrTooFewEntities
	}

	out := &Comparison{
		Professors:     make(map[string]MetricSheet, len(selected)),
		CommonSubjects: []CommonSubject{},
		Pareto:         ranking.Pareto(selected),
	}

	var order []string
	bySubject := make(map[string][]SubjectStanding)
	for _, p := range selected {
		out.Professors[p.ProfessorID] = MetricSheet{
			Nombre:             p.Nombre,
			QualityBayes:       p.Bayes.QualityBayes,
			QualityNow:         p.Decay.QualityDecayed,
			DifficultyNow:      p.Decay.DifficultyDecayed,
			NReviews:           p.NReviews,
			RecommendationRate: p.Recommendation.Rate,
			WilsonInterval:     p.Recommendation.WilsonInterval,
			TrustScore:         p.Integrity.TrustScore,
			EquityIndex:        p.Grades.EquityIndex,
			ZMean:              p.Subjects.ZMean,
			SentimentAvg:       p.NLP.Sentiment.Overall,
		}
		for _, s := range p.Subjects.PerSubject {
			if _, ok := bySubject[s.Materia]; !ok {
				order = append(order, s.Materia)
			}
			bySubject[s.Materia] = append(bySubject[s.Materia], SubjectStanding{
				ProfessorID: p.ProfessorID,
				ZDecayed:    s.ZDecayed,
				N:           s.N,
			})
		}
	}

	for _, name := range order {
		standings := bySubject[name]
		if len(standings) < 2 {
			continue
		}
		out.CommonSubjects = append(out.CommonSubjects, CommonSubject{
			Materia:    name,
			Professors: standings,
			ZDiff:      standings[1].ZDecayed - standings[0].ZDecayed,
		})
	}
	return out, nil
}

// SubjectProfessor is one entity teaching a reported subject.
type SubjectProfessor struct {
	ProfessorID   string   `json:"professor_id"`
	Nombre        string   `json:"nombre"`
	QualityBayes  *float64 `json:"quality_bayes"`
	DifficultyNow *float64 `json:"difficulty_now"`
	ZDecayed      float64  `json:"z_decayed"`
	NReviews      int      `json:"n_reviews"`
	TrustScore    float64  `json:"trust_score"`
}

// SubjectReport summarizes how a subject is taught across the corpus.
type SubjectReport struct {
	Subject       string            `json:"subject"`
	Baseline      baseline.Category `json:"global_stats"`
	Professors    []SubjectProfessor  `json:"professors"`
	NProfessors   int               `json:"n_professors"`
	AvgQuality    *float64          `json:"avg_quality"`
	AvgDifficulty *float64          `json:"avg_difficulty"`
}

// BuildSubjectReport lists the entities whose standing includes subject,
// best shrunk quality first.
func BuildSubjectReport(base *baseline.Baseline, profiles []*enrich.Profile, subject string) (*SubjectReport, error) {
	name := strings.ToUpper(strings.TrimSpace(subject))
	cat, ok := base.Category(name)
	if !ok {
		return nil, ErrUnknownSubject
	}

	report := &SubjectReport{Subject: name, Baseline: cat, Professors: []SubjectProfessor{}}
	var qualities, difficulties []float64
	for _, p := range analyzed(profiles) {
		for _, s := range p.Subjects.PerSubject {
			if s.Materia != name {
				continue
			}
			report.Professors = append(report.Professors, SubjectProfessor{
				ProfessorID:   p.ProfessorID,
				Nombre:        p.Nombre,
				QualityBayes:  p.Bayes.QualityBayes,
				DifficultyNow: p.Decay.DifficultyDecayed,
				ZDecayed:      s.ZDecayed,
				NReviews:      p.NReviews,
				TrustScore:    p.Integrity.TrustScore,
			})
			if p.Bayes.QualityBayes != nil {
				qualities = append(qualities, *p.Bayes.QualityBayes)
			}
			if p.Decay.DifficultyDecayed != nil {
				difficulties = append(difficulties, *p.Decay.DifficultyDecayed)
			}
			break
		}
	}

	sort.SliceStable(report.Professors, func(a, b int) bool {
		return valueOr(report.Professors[a].QualityBayes) > valueOr(report.Professors[b].QualityBayes)
	})
	report.NProfessors = len(report.Professors)
	report.AvgQuality = stats.Mean(qualities)
	report.AvgDifficulty = stats.Mean(difficulties)
	return report, nil
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func analyzed(profiles []*enrich.Profile) []*enrich.Profile {
	out := make([]*enrich.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p != nil && p.HasReviews() {
			out = append(out, p)
		}
	}
	return out
}

func index(profiles []*enrich.Profile) map[string]*enrich.Profile {
	out := make(map[string]*enrich.Profile, len(profiles))
	for _, p := range analyzed(profiles) {
		out[p.ProfessorID] = p
	}
	return out
}

// Find returns the analyzed profile with the given id.
func Find(profiles []*enrich.Profile, id string) (*enrich.Profile, error) {
	if p, ok := index(profiles)[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}
