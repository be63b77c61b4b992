// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package enrich

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/integrity"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
	"github.com/tomtom215/facultypulse/internal/trend"
)

// ErrNoBaseline is returned when an Analyzer is created without a baseline.
var ErrNoBaseline = errors.New("baseline is required")

// Analyzer turns one entity's rows into a Profile. It only reads the frozen
// baseline and is safe for concurrent use.
type Analyzer struct {
	config *Config
	base   *baseline.Baseline
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer bound to a frozen baseline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalyzer(cfg *Config, base *baseline.Baseline, logger zerolog.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if base == nil {
		return nil, ErrNoBaseline
	}

	return &Analyzer{
		config: cfg,
		base:   base,
		logger: logger.With().Str("component", "enrich").Logger(),
	}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() *Config { return a.config }

// Analyze builds the profile of one entity. rows must be the normalized rows
// of rec. An entity without rows yields the no-reviews marker.
func (a *Analyzer) Analyze(id string, rec *review.RawRecord, rows []review.Row) *Profile {
	if len(rows) == 0 {
		return NoReviews(id)
	}

	cfg := a.config
	now := cfg.now()
	global := a.base.Global()

	var qualityPts, difficultyPts []stats.DatedValue
	var qualities, difficulties []float64
	for i := range rows {
		r := &rows[i]
		if r.Quality != nil {
			qualityPts = append(qualityPts, stats.DatedValue{Value: *r.Quality, Date: r.Date})
			qualities = append(qualities, *r.Quality)
		}
		if r.Difficulty != nil {
			difficultyPts = append(difficultyPts, stats.DatedValue{Value: *r.Difficulty, Date: r.Date})
			difficulties = append(difficulties, *r.Difficulty)
		}
	}

	sorted := review.SortNewestFirst(rows)

	p := &Profile{
		ProfessorID: id,
		Nombre:      rec.Nombre,
		Universidad: rec.Universidad,
		Decay: DecayAnalysis{
			QualityDecayed:    stats.DecayedMean(qualityPts, now, cfg.HalfLifeMonths),
			DifficultyDecayed: stats.DecayedMean(difficultyPts, now, cfg.HalfLifeMonths),
		},
		Bayes: BayesAnalysis{
			QualityBayes:    shrink(qualities, global.MuQuality, cfg.BayesK),
			DifficultyBayes: shrink(difficulties, global.MuDifficulty, cfg.BayesK),
		},
		Recommendation: a.recommendation(rows),
		Subjects:       NormalizeSubjects(rows, a.base, now, cfg.HalfLifeMonths, cfg.TopSubjects),
		Grades:         AnalyzeGrades(rows),
		NLP:            a.nlp(id, rows),
		Integrity:      integrity.Analyze(rows, cfg.Integrity),
		Trends:         trend.Analyze(rows, cfg.EWMAAlpha),
		ReviewsPublic:  review.ToPublic(sorted),
		CommentsRecent: review.RecentComments(sorted, cfg.RecentComments),
		NReviews:       len(rows),
	}

	a.logger.Debug().
		Str("entity_id", id).
		Int("reviews", len(rows)).
		Float64("trust_score", p.Integrity.TrustScore).
		Msg("entity analyzed")

	return p
}

func shrink(values []float64, mu *float64, k float64) *float64 {
	if mu == nil {
		return nil
	}
	v := stats.BayesianScore(values, *mu, k)
	return stats.Finite(&v)
}

func (a *Analyzer) recommendation(rows []review.Row) RecommendationAnalysis {
	var n, yes int
	for i := range rows {
		if rows[i].Recommends == nil {
			continue
		}
		n++
		if *rows[i].Recommends {
			yes++
		}
	}
	if n == 0 {
		return RecommendationAnalysis{}
	}

	p := float64(yes) / float64(n)
	rate := stats.Round(p, 3)
	ci := stats.WilsonInterval(p, n, a.config.WilsonConfidence)
	return RecommendationAnalysis{Rate: &rate, WilsonInterval: &ci, NRecommendations: n}
}

func (a *Analyzer) nlp(id string, rows []review.Row) NLPAnalysis {
	var comments []string
	var dated []textanalytics.DatedComment
	for i := range rows {
		r := &rows[i]
		if !r.HasComment() {
			continue
		}
		comments = append(comments, r.Comment)
		if r.Dated() {
			dated = append(dated, textanalytics.DatedComment{Text: r.Comment, Date: *r.Date})
		}
	}

	out := NLPAnalysis{
		Topics:       []textanalytics.Topic{},
		TopicsStatus: textanalytics.StatusOK,
		Sentiment:    textanalytics.SentimentSummary{ByMonth: map[string]float64{}},
		NComments:    len(comments),
	}
	if len(comments) < a.config.Topics.MinComments {
		return out
	}

	topics := textanalytics.ExtractTopics(comments, a.config.Topics)
	out.Topics = topics.Topics
	out.TopicsStatus = topics.Status
	out.TopicsReason = topics.Reason
	if topics.Degraded() {
		a.logger.Warn().
			Str("entity_id", id).
			Str("reason", topics.Reason).
			Int("comments", len(comments)).
			Msg("topic extraction degraded")
	}

	out.Sentiment = textanalytics.Sentiment(dated)
	return out
}

// FixedClock returns a Now function pinned to t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
