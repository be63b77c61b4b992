// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package enrich

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/facultypulse/internal/integrity"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
	"github.com/tomtom215/facultypulse/internal/trend"
)

// NoReviewsMessage is the marker text of an entity without reviews.
const NoReviewsMessage = "No hay reseñas disponibles"

// DecayAnalysis holds the half-life weighted means.
type DecayAnalysis struct {
	QualityDecayed    *float64 `json:"quality_decayed"`
	DifficultyDecayed *float64 `json:"difficulty_decayed"`
}

// BayesAnalysis holds the shrunk means.
type BayesAnalysis struct {
	QualityBayes    *float64 `json:"quality_bayes"`
	DifficultyBayes *float64 `json:"difficulty_bayes"`
}

// RecommendationAnalysis holds the recommendation rate and its interval.
type RecommendationAnalysis struct {
	Rate             *float64        `json:"rate"`
	WilsonInterval   *stats.Interval `json:"wilson_interval"`
	NRecommendations int             `json:"n_recommendations"`
}

// SubjectScore is an entity's standing in one subject.
type SubjectScore struct {
	Materia  string  `json:"materia"`
	ZDecayed float64 `json:"z_decayed"`
	N        int     `json:"n"`
}

// SubjectNormalization holds category-relative z-scores.
type SubjectNormalization struct {
	ZMean        *float64       `json:"z_mean"`
	ZMeanDecayed *float64       `json:"z_mean_decayed"`
	PerSubject   []SubjectScore `json:"per_subject"`
}

// GradeDistribution describes the grades reviewers reported.
type GradeDistribution struct {
	Mean      *float64         `json:"mean"`
	Std       *float64         `json:"std"`
	Histogram *stats.Histogram `json:"histogram"`
}

// GradesAnalysis relates reported grades to perceived difficulty.
type GradesAnalysis struct {
	Distribution GradeDistribution `json:"grade_distribution"`
	EquityIndex  *float64          `json:"equity_index"`
	NGrades      int               `json:"n_grades"`
}

// NLPAnalysis holds the text-derived block.
type NLPAnalysis struct {
	Topics       []textanalytics.Topic          `json:"topics"`
	TopicsStatus textanalytics.TopicStatus      `json:"topics_status"`
	TopicsReason string                         `json:"topics_reason,omitempty"`
	Sentiment    textanalytics.SentimentSummary `json:"sentiment"`
	NComments    int                            `json:"n_comments"`
}

// Profile is the enriched analysis of one entity. An entity without reviews
// is represented by a Profile whose Error is set; it serializes as the
// two-field marker {professor_id, error}.
type Profile struct {
	ProfessorID    string                 `json:"professor_id"`
	Nombre         string                 `json:"nombre"`
	Universidad    string                 `json:"universidad"`
	Decay          DecayAnalysis          `json:"decay_analysis"`
	Bayes          BayesAnalysis          `json:"bayes_analysis"`
	Recommendation RecommendationAnalysis `json:"recommendation_analysis"`
	Subjects       SubjectNormalization   `json:"subject_normalization"`
	Grades         GradesAnalysis         `json:"grades_analysis"`
	NLP            NLPAnalysis            `json:"nlp_analysis"`
	Integrity      integrity.Report       `json:"integrity_analysis"`
	Trends         trend.Report           `json:"trends_analysis"`
	ReviewsPublic  []review.PublicRow     `json:"reviews_public"`
	CommentsRecent []string               `json:"comments_recent"`
	NReviews       int                    `json:"n_reviews"`

	Error string `json:"error,omitempty"`
}

// NoReviews returns the marker profile of an entity without reviews.
func NoReviews(id string) *Profile {
	return &Profile{ProfessorID: id, Error: NoReviewsMessage}
}

// HasReviews reports whether p is a full analysis rather than a marker.
func (p *Profile) HasReviews() bool { return p.Error == "" }

type marker struct {
	ProfessorID string `json:"professor_id"`
	Error       string `json:"error"`
}

type profileAlias Profile

// MarshalJSON emits the marker form for entities without reviews.
func (p *Profile) MarshalJSON() ([]byte, error) {
	if !p.HasReviews() {
		return json.Marshal(marker{ProfessorID: p.ProfessorID, Error: p.Error})
	}
	return json.Marshal((*profileAlias)(p))
}
