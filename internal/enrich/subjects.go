// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package enrich

import (
	"sort"
	"time"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/stats"
)

// NormalizeSubjects scores each row against its category baseline and
// summarizes the z-scores overall and per subject. Rows without quality or
// without a known category are skipped. Subjects are ranked by decayed z,
// ties keeping first-seen order, and the list is cut at top.
func NormalizeSubjects(rows []review.Row, base *baseline.Baseline, now time.Time, halfLife float64, top int) SubjectNormalization {
	var all []stats.DatedValue
	perSubject := make(map[string][]stats.DatedValue)
	var order []string

	for i := range rows {
		r := &rows[i]
		if r.Category == "" || r.Quality == nil {
			continue
		}
		cat, ok := base.Category(r.Category)
		if !ok {
			continue
		}
		sd := cat.SigmaQuality
		if sd == 0 {
			sd = 1.0
		}
		z := stats.DatedValue{Value: (*r.Quality - cat.MuQuality) / sd, Date: r.Date}
		all = append(all, z)
		if _, seen := perSubject[r.Category]; !seen {
			order = append(order, r.Category)
		}
		perSubject[r.Category] = append(perSubject[r.Category], z)
	}

	out := SubjectNormalization{PerSubject: []SubjectScore{}}
	if len(all) == 0 {
		return out
	}

	values := make([]float64, len(all))
	for i, z := range all {
		values[i] = z.Value
	}
	out.ZMean = stats.RoundPtr(stats.Mean(values), 2)
	out.ZMeanDecayed = stats.RoundPtr(stats.DecayedOnly(all, now, halfLife), 2)

	scores := make([]SubjectScore, 0, len(order))
	for _, name := range order {
		score := SubjectScore{Materia: name}
		if z := stats.DecayedOnly(perSubject[name], now, halfLife); z != nil {
			score.ZDecayed = *z
		}
		cat, _ := base.Category(name)
		score.N = cat.NReviews
		scores = append(scores, score)
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].ZDecayed > scores[b].ZDecayed })

	if top > 0 && len(scores) > top {
		scores = scores[:top]
	}
	out.PerSubject = scores
	return out
}
