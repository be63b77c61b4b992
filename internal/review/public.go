// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import "sort"

// PublicRow is the display projection of a Row. The comment is the raw,
// unnormalized text and recommendations are encoded as 1, 0 or null.
type PublicRow struct {
	FechaISO   *string  `json:"fecha_iso"`
	Materia    string   `json:"materia"`
	Calidad    *float64 `json:"calidad"`
	Dificultad *float64 `json:"dificultad"`
	Nota       *float64 `json:"nota"`
	Recomienda *int     `json:"recomienda"`
	Comentario string   `json:"comentario"`
}

// SortNewestFirst returns a copy of rows ordered by date descending with
// undated rows last. Rows with equal dates keep their source order.
func SortNewestFirst(rows []Row) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return sorted
}

// ToPublic projects rows in their current order.
func ToPublic(rows []Row) []PublicRow {
	out := make([]PublicRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, PublicRow{
			FechaISO:   FormatISO(r.Date),
			Materia:    r.Category,
			Calidad:    r.Quality,
			Dificultad: r.Difficulty,
			Nota:       r.Grade,
			Recomienda: boolToInt(r.Recommends),
			Comentario: r.Comment,
		})
	}
	return out
}

// RecentComments returns the non-empty comments among the first limit rows
// of an already sorted slice.
func RecentComments(sorted []Row, limit int) []string {
	if limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		if sorted[i].HasComment() {
			out = append(out, sorted[i].Comment)
		}
	}
	return out
}

func boolToInt(b *bool) *int {
	if b == nil {
		return nil
	}
	v := 0
	if *b {
		v = 1
	}
	return &v
}
