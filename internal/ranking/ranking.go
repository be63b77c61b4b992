// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package ranking builds the cross-entity indices published after a batch:
// the compact listing, the quality/difficulty Pareto frontier, per-subject
// leaderboards and the run metadata.
package ranking

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/stats"
)

const (
	// SchemaVersion is the version of the published index layout.
	SchemaVersion = "1.0"

	// MinParetoReviews is the review count an entity needs to enter the
	// frontier.
	MinParetoReviews = 3
)

// ListItem is one row of the compact listing.
type ListItem struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Universidad   string          `json:"universidad"`
	N             int             `json:"n"`
	QualityBayes  *float64        `json:"quality_bayes"`
	DifficultyNow *float64        `json:"difficulty_now"`
	RecRate       *float64        `json:"rec_rate"`
	RecCI95       *stats.Interval `json:"rec_ci95"`
	ZMeanDecayed  *float64        `json:"z_mean_decayed"`
	TrustScore    float64         `json:"trust_score"`
}

// ParetoPoint places an entity on the difficulty (x) / quality (y) plane.
type ParetoPoint struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	N      int     `json:"n"`
}

// Frontier is the set of points and the ids no other point dominates.
type Frontier struct {
	Points       []ParetoPoint `json:"points"`
	EfficientIDs []string      `json:"efficient_ids"`
}

// IsEfficient reports whether id is on the frontier.
func (f *Frontier) IsEfficient(id string) bool {
	for _, e := range f.EfficientIDs {
		if e == id {
			return true
		}
	}
	return false
}

// SubjectEntry is one entity in a subject leaderboard.
type SubjectEntry struct {
	ID            string   `json:"id"`
	Nombre        string   `json:"nombre"`
	ZDecayed      float64  `json:"z_decayed"`
	QualityBayes  *float64 `json:"quality_bayes"`
	DifficultyNow *float64 `json:"difficulty_now"`
	N             int      `json:"n"`
}

// Params records the analysis parameters of a run.
type Params struct {
	HalfLifeMonths   float64 `json:"half_life_months"`
	BayesK           float64 `json:"bayes_k"`
	WilsonConfidence float64 `json:"wilson_confidence"`
}

// Meta describes a published batch.
type Meta struct {
	SchemaVersion   string          `json:"schema_version"`
	GeneratedAt     string          `json:"generated_at"`
	RunID           string          `json:"run_id"`
	Params          Params          `json:"params"`
	GlobalStats     baseline.Global `json:"global_stats"`
	ProfessorsCount int             `json:"professors_count"`
}

// Indices is everything published after the per-entity stage.
type Indices struct {
	ListMin []ListItem `json:"list_min"`
	Pareto  Frontier   `json:"pareto"`
	Meta    Meta       `json:"meta"`

	// Subjects maps file-safe subject keys to their leaderboards. Nil when
	// subject indices are disabled.
	Subjects map[string][]SubjectEntry `json:"subjects,omitempty"`

	// Baseline is the frozen baseline of the run, kept so subject reports
	// can be served from a stored snapshot.
	Baseline *baseline.Baseline `json:"baseline,omitempty"`
}

// Options controls index construction.
type Options struct {
	RunID          string
	GeneratedAt    time.Time
	Params         Params
	SubjectIndices bool
}

// Build assembles every index from the profiles of a batch. Profiles are
// expected in a stable order (the pipeline sorts them by id).
func Build(profiles []*enrich.Profile, base *baseline.Baseline, opts Options) *Indices {
	idx := &Indices{
		ListMin: ListMin(profiles),
		Pareto:  Pareto(profiles),
		Meta:    BuildMeta(base, len(profiles), opts),

		Baseline: base,
	}
	if opts.SubjectIndices {
		idx.Subjects = SubjectLeaderboards(profiles)
	}
	return idx
}

// ListMin projects every analyzed entity onto the compact listing.
func ListMin(profiles []*enrich.Profile) []ListItem {
	items := make([]ListItem, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || !p.HasReviews() {
			continue
		}
		items = append(items, ListItem{
			ID:            p.ProfessorID,
			Nombre:        p.Nombre,
			Universidad:   p.Universidad,
			N:             p.NReviews,
			QualityBayes:  p.Bayes.QualityBayes,
			DifficultyNow: p.Decay.DifficultyDecayed,
			RecRate:       p.Recommendation.Rate,
			RecCI95:       p.Recommendation.WilsonInterval,
			ZMeanDecayed:  p.Subjects.ZMeanDecayed,
			TrustScore:    p.Integrity.TrustScore,
		})
	}
	return items
}

// Pareto computes the frontier of low difficulty and high quality. Points
// need a shrunk quality, a decayed difficulty and MinParetoReviews reviews.
func Pareto(profiles []*enrich.Profile) Frontier {
	points := make([]ParetoPoint, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || !p.HasReviews() {
			continue
		}
		if p.Bayes.QualityBayes == nil || p.Decay.DifficultyDecayed == nil || p.NReviews < MinParetoReviews {
			continue
		}
		points = append(points, ParetoPoint{
			ID:     p.ProfessorID,
			Nombre: p.Nombre,
			X:      *p.Decay.DifficultyDecayed,
			Y:      *p.Bayes.QualityBayes,
			N:      p.NReviews,
		})
	}
	return Frontier{Points: points, EfficientIDs: FrontierIDs(points)}
}

// FrontierIDs sorts points by x ascending then y descending and returns the
// ids whose y strictly exceeds every y before them.
func FrontierIDs(points []ParetoPoint) []string {
	sort.SliceStable(points, func(a, b int) bool {
		if points[a].X != points[b].X {
			return points[a].X < points[b].X
		}
		return points[a].Y > points[b].Y
	})

	efficient := []string{}
	best := -1.0
	for _, pt := range points {
		if pt.Y > best {
			efficient = append(efficient, pt.ID)
			best = pt.Y
		}
	}
	return efficient
}

var unsafeSubjectChars = regexp.MustCompile(`[^A-Z0-9_-]+`)

// SafeSubjectKey turns a subject name into a file-safe key.
func SafeSubjectKey(subject string) string {
	return unsafeSubjectChars.ReplaceAllString(strings.ToUpper(subject), "_")
}

// SubjectLeaderboards groups entities by the subjects of their standing
// lists, each sorted by decayed z descending. Subjects that collapse to the
// same file-safe key share one leaderboard.
func SubjectLeaderboards(profiles []*enrich.Profile) map[string][]SubjectEntry {
	boards := make(map[string][]SubjectEntry)
	for _, p := range profiles {
		if p == nil || !p.HasReviews() {
			continue
		}
		for _, s := range p.Subjects.PerSubject {
			key := SafeSubjectKey(s.Materia)
			boards[key] = append(boards[key], SubjectEntry{
				ID:            p.ProfessorID,
				Nombre:        p.Nombre,
				ZDecayed:      s.ZDecayed,
				QualityBayes:  p.Bayes.QualityBayes,
				DifficultyNow: p.Decay.DifficultyDecayed,
				N:             p.NReviews,
			})
		}
	}
	for _, board := range boards {
		sort.SliceStable(board, func(a, b int) bool { return board[a].ZDecayed > board[b].ZDecayed })
	}
	return boards
}

// BuildMeta describes the run. count is the number of analyzed entities,
// markers included.
func BuildMeta(base *baseline.Baseline, count int, opts Options) Meta {
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	var global baseline.Global
	if base != nil {
		global = base.Global()
	}
	return Meta{
		SchemaVersion:   SchemaVersion,
		GeneratedAt:     generated.Format("2006-01-02T15:04:05.000000"),
		RunID:           opts.RunID,
		Params:          opts.Params,
		GlobalStats:     global,
		ProfessorsCount: count,
	}
}
