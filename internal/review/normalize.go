// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import (
	"math"
	"strings"
)

const (
	// positiveLabel is the categorical judgment that counts as a recommendation.
	positiveLabel = "BUENO"

	// maxDifficulty is the ceiling of the difficulty scale.
	maxDifficulty = 5.0
)

// gradeSentinels mark a received grade as not applicable.
var gradeSentinels = map[string]struct{}{
	"":    {},
	"N/A": {},
	"NA":  {},
}

// Normalize converts every raw review of a record into a Row, in source order.
func Normalize(rec *RawRecord) []Row {
	rows := make([]Row, 0, len(rec.Calificaciones))
	for i := range rec.Calificaciones {
		rows = append(rows, NormalizeReview(&rec.Calificaciones[i]))
	}
	return rows
}

// NormalizeReview converts one raw review.
func NormalizeReview(raw *RawReview) Row {
	return Row{
		Date:       ParseDate(raw.Fecha.Text()),
		Quality:    parseQuality(raw.PuntajeCalidadGeneral),
		Difficulty: DifficultyFromEase(raw.PuntajeFacilidad),
		Category:   NormalizeCategory(raw.Materia.Text()),
		Grade:      parseGrade(raw.CalificacionRecibida),
		Comment:    strings.TrimSpace(raw.Comentario.Text()),
		Recommends: parseJudgment(raw.TipoCalificacion),
	}
}

// NormalizeCategory upper-cases and trims a subject label.
func NormalizeCategory(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DifficultyFromEase converts the site's ease score into difficulty.
// Zero, missing and unparseable values are absent; present values are
// clamped to [0, 5].
func DifficultyFromEase(v Value) *float64 {
	f, ok := v.Float()
	if !ok || f <= 0 || math.IsNaN(f) {
		return nil
	}
	d := math.Min(maxDifficulty, f)
	return &d
}

func parseQuality(v Value) *float64 {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseGrade(v Value) *float64 {
	if v.IsNull() {
		return nil
	}
	if _, sentinel := gradeSentinels[strings.TrimSpace(v.Text())]; sentinel {
		return nil
	}
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseJudgment(v Value) *bool {
	label := strings.ToUpper(strings.TrimSpace(v.Text()))
	if label == "" {
		return nil
	}
	rec := label == positiveLabel
	return &rec
}
