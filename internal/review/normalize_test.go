// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestNormalizeReview_Judgment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		label Value
		want  *bool
	}{
		{"positive label", String("BUENO"), boolPtr(true)},
		{"positive lowercase padded", String("  bueno "), boolPtr(true)},
		{"other label", String("MALO"), boolPtr(false)},
		{"regular label", String("Regular"), boolPtr(false)},
		{"empty label", String("   "), nil},
		{"missing label", Null(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := NormalizeReview(&RawReview{TipoCalificacion: tt.label})
			if !equalBoolPtr(row.Recommends, tt.want) {
				t.Errorf("Recommends = %v, want %v", fmtBool(row.Recommends), fmtBool(tt.want))
			}
		})
	}
}

func TestDifficultyFromEase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Value
		want *float64
	}{
		{"missing", Null(), nil},
		{"numeric zero", Number(0), nil},
		{"string zero", String("0"), nil},
		{"string zero decimal", String("0.0"), nil},
		{"in range", Number(3.5), floatPtr(3.5)},
		{"string in range", String("2"), floatPtr(2)},
		{"above ceiling", Number(9), floatPtr(5)},
		{"garbage", String("n/a"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DifficultyFromEase(tt.in)
			if !equalFloatPtr(got, tt.want) {
				t.Errorf("DifficultyFromEase() = %v, want %v", fmtFloat(got), fmtFloat(tt.want))
			}
		})
	}
}

func TestNormalizeReview_Grade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Value
		want *float64
	}{
		{"missing", Null(), nil},
		{"not applicable", String("N/A"), nil},
		{"not applicable short", String("NA"), nil},
		{"empty", String(""), nil},
		{"numeric", Number(8), floatPtr(8)},
		{"numeric zero is kept", Number(0), floatPtr(0)},
		{"string", String("9.5"), floatPtr(9.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := NormalizeReview(&RawReview{CalificacionRecibida: tt.in})
			if !equalFloatPtr(row.Grade, tt.want) {
				t.Errorf("Grade = %v, want %v", fmtFloat(row.Grade), fmtFloat(tt.want))
			}
		})
	}
}

func TestNormalize_FromJSON(t *testing.T) {
	t.Parallel()

	doc := `{
		"nombre": "Ana Torres",
		"universidad": "UNAM",
		"calificaciones": [
			{
				"fecha": "28/Dic/2016",
				"tipo_calificacion": "BUENO",
				"puntaje_facilidad": "4",
				"puntaje_calidad_general": 9.5,
				"materia": "  cálculo i ",
				"calificacion_recibida": "N/A",
				"comentario": "  Excelente profesora  "
			},
			{
				"fecha": "not a date",
				"tipo_calificacion": null,
				"puntaje_facilidad": 0,
				"puntaje_calidad_general": null,
				"materia": null,
				"calificacion_recibida": 7,
				"comentario": null
			}
		]
	}`

	var rec RawRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	rows := Normalize(&rec)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Date == nil || first.Date.Format("2006-01-02") != "2016-12-28" {
		t.Errorf("expected 2016-12-28, got %v", first.Date)
	}
	if first.Recommends == nil || !*first.Recommends {
		t.Error("expected first row to recommend")
	}
	if first.Difficulty == nil || *first.Difficulty != 4 {
		t.Errorf("expected difficulty 4, got %v", fmtFloat(first.Difficulty))
	}
	if first.Quality == nil || *first.Quality != 9.5 {
		t.Errorf("expected quality 9.5, got %v", fmtFloat(first.Quality))
	}
	if first.Category != "CÁLCULO I" {
		t.Errorf("expected category %q, got %q", "CÁLCULO I", first.Category)
	}
	if first.Grade != nil {
		t.Errorf("expected absent grade, got %v", *first.Grade)
	}
	if first.Comment != "Excelente profesora" {
		t.Errorf("expected trimmed comment, got %q", first.Comment)
	}

	second := rows[1]
	if second.Date != nil {
		t.Errorf("expected nil date, got %v", second.Date)
	}
	if second.Recommends != nil || second.Difficulty != nil || second.Quality != nil {
		t.Error("expected absent recommendation, difficulty and quality")
	}
	if second.Category != "" {
		t.Errorf("expected empty category, got %q", second.Category)
	}
	if second.Grade == nil || *second.Grade != 7 {
		t.Errorf("expected grade 7, got %v", fmtFloat(second.Grade))
	}
}

func TestValue_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []byte(`[null,"4",4.5,true]`)
	var vals []Value
	if err := json.Unmarshal(in, &vals); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !vals[0].IsNull() || !vals[2].IsNumber() {
		t.Errorf("unexpected kinds: %+v", vals)
	}
	if f, ok := vals[3].Float(); ok {
		t.Errorf("expected boolean to be non-numeric, got %v", f)
	}

	out, err := json.Marshal(vals)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("expected %s, got %s", in, out)
	}
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func equalBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtBool(b *bool) interface{} {
	if b == nil {
		return "nil"
	}
	return *b
}

func fmtFloat(f *float64) interface{} {
	if f == nil {
		return "nil"
	}
	return *f
}
