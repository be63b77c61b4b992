// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import (
	"errors"
	"time"
)

// ErrNoReviews is returned when an entity has no usable review rows.
var ErrNoReviews = errors.New("no reviews available")

// RawReview is one scraped review object.
type RawReview struct {
	Fecha                 Value `json:"fecha"`
	TipoCalificacion      Value `json:"tipo_calificacion"`
	PuntajeFacilidad      Value `json:"puntaje_facilidad"`
	PuntajeCalidadGeneral Value `json:"puntaje_calidad_general"`
	Materia               Value `json:"materia"`
	CalificacionRecibida  Value `json:"calificacion_recibida"`
	Comentario            Value `json:"comentario"`
}

// RawRecord is the scraped document for one professor.
type RawRecord struct {
	Nombre         string      `json:"nombre"`
	Universidad    string      `json:"universidad"`
	Calificaciones []RawReview `json:"calificaciones"`
}

// Entity pairs a raw record with its identifier (the source file stem).
type Entity struct {
	ID     string    `validate:"required,entityid"`
	Record RawRecord `validate:"-"`
}

// Row is one reviewer's submission for one entity and one subject.
// Nil pointers mean the source did not provide the value.
type Row struct {
	Date       *time.Time
	Quality    *float64
	Difficulty *float64
	Category   string
	Grade      *float64
	Comment    string
	Recommends *bool
}

// Dated reports whether the row has a parsed date.
func (r *Row) Dated() bool { return r.Date != nil }

// HasComment reports whether the row carries a non-empty comment.
func (r *Row) HasComment() bool { return r.Comment != "" }

// MonthKey returns the "YYYY-MM" bucket of a dated row, or "" when undated.
func (r *Row) MonthKey() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format("2006-01")
}
