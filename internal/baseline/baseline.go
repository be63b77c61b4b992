// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package baseline computes the corpus-wide and per-category reference
statistics every entity is compared against.

A Builder accumulates rows in a single pass and is frozen into an immutable
Baseline. The Baseline is shared read-only by every enrichment worker:

	b := baseline.NewBuilder()
	for _, rows := range corpus {
		if err := b.Add(rows); err != nil {
			return err
		}
	}
	base := b.Freeze()

Categories with fewer than MinCategoryObservations quality observations are
dropped.
*/
package baseline

import (
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
)

// MinCategoryObservations is the number of quality observations a category
// needs to get a baseline.
const MinCategoryObservations = 3

// ErrFrozen is returned when rows are added after Freeze.
var ErrFrozen = errors.New("baseline builder is frozen")

// Global holds corpus-wide means.
type Global struct {
	MuQuality          *float64 `json:"mu_quality"`
	MuDifficulty       *float64 `json:"mu_difficulty"`
	RecommendationRate *float64 `json:"recommendation_rate"`
	TotalReviews       int      `json:"total_reviews"`
}

// Category holds the reference statistics of one subject.
type Category struct {
	MuQuality       float64 `json:"mu_quality"`
	SigmaQuality    float64 `json:"sigma_quality"`
	MuDifficulty    float64 `json:"mu_difficulty"`
	SigmaDifficulty float64 `json:"sigma_difficulty"`
	NReviews        int     `json:"n_reviews"`
}

// Baseline is the frozen result of a Builder. It is safe for concurrent use.
type Baseline struct {
	global     Global
	categories map[string]Category
}

// Global returns the corpus-wide statistics.
func (b *Baseline) Global() Global { return b.global }

// Category returns the baseline of a normalized category name.
func (b *Baseline) Category(name string) (Category, bool) {
	c, ok := b.categories[name]
	return c, ok
}

// Categories returns the names of every category with a baseline, sorted.
func (b *Baseline) Categories() []string {
	names := make([]string, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryMap returns a copy of every category baseline keyed by name.
func (b *Baseline) CategoryMap() map[string]Category {
	out := make(map[string]Category, len(b.categories))
	for k, v := range b.categories {
		out[k] = v
	}
	return out
}

type bucket struct {
	quality    []float64
	difficulty []float64
}

// Builder accumulates rows into a Baseline.
type Builder struct {
	mu sync.Mutex

	quality    []float64
	difficulty []float64
	recommends []float64
	total      int
	buckets    map[string]*bucket
	frozen     bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{buckets: make(map[string]*bucket)}
}

// Add feeds one entity's rows into the builder.
func (b *Builder) Add(rows []review.Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}

	b.total += len(rows)
	for i := range rows {
		r := &rows[i]

		var bk *bucket
		if r.Category != "" {
			bk = b.buckets[r.Category]
			if bk == nil {
				bk = &bucket{}
				b.buckets[r.Category] = bk
			}
		}

		if r.Quality != nil {
			b.quality = append(b.quality, *r.Quality)
			if bk != nil {
				bk.quality = append(bk.quality, *r.Quality)
			}
		}
		if r.Difficulty != nil {
			b.difficulty = append(b.difficulty, *r.Difficulty)
			if bk != nil {
				bk.difficulty = append(bk.difficulty, *r.Difficulty)
			}
		}
		if r.Recommends != nil {
			v := 0.0
			if *r.Recommends {
				v = 1
			}
			b.recommends = append(b.recommends, v)
		}
	}
	return nil
}

// Freeze computes the Baseline and rejects any further Add. Calling Freeze
// again returns an equivalent Baseline.
func (b *Builder) Freeze() *Baseline {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frozen = true

	base := &Baseline{
		global: Global{
			MuQuality:          stats.Mean(b.quality),
			MuDifficulty:       stats.Mean(b.difficulty),
			RecommendationRate: stats.Mean(b.recommends),
			TotalReviews:       b.total,
		},
		categories: make(map[string]Category, len(b.buckets)),
	}

	for name, bk := range b.buckets {
		if len(bk.quality) < MinCategoryObservations {
			continue
		}
		cat := Category{
			MuQuality:       *stats.Mean(bk.quality),
			SigmaQuality:    stats.SampleStdDevOr(bk.quality, 1.0),
			SigmaDifficulty: stats.SampleStdDevOr(bk.difficulty, 1.0),
			NReviews:        len(bk.quality),
		}
		if mu := stats.Mean(bk.difficulty); mu != nil {
			cat.MuDifficulty = *mu
		}
		base.categories[name] = cat
	}
	return base
}

// Build computes the Baseline of a corpus in one pass.
func Build(corpus [][]review.Row) *Baseline {
	b := NewBuilder()
	for _, rows := range corpus {
		_ = b.Add(rows) //nolint:errcheck // builder is not frozen yet
	}
	return b.Freeze()
}

// Empty returns a Baseline with no observations.
func Empty() *Baseline {
	return NewBuilder().Freeze()
}
