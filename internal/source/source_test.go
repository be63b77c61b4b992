// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/facultypulse/internal/logging"
)

const sampleDoc = `{
  "nombre": "Ana Torres",
  "universidad": "UNAM",
  "calificaciones": [
    {"fecha": "15/03/2023", "tipo_calificacion": "Buena", "puntaje_facilidad": "4",
     "puntaje_calidad_general": 9.5, "materia": "CALCULO", "calificacion_recibida": "10",
     "comentario": "Explica muy bien"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestDirLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "prof-b.json", sampleDoc)
	writeFile(t, dir, "prof-a.json", `{"nombre": "Luis", "calificaciones": []}`)
	writeFile(t, dir, "broken.json", `{"nombre": `)
	writeFile(t, dir, ".hidden.json", sampleDoc)
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o750); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	loader := NewDirLoader(dir, logging.NewTestLogger(&buf))

	entities, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].ID != "prof-a" || entities[1].ID != "prof-b" {
		t.Errorf("expected file name order, got %s, %s", entities[0].ID, entities[1].ID)
	}

	rec := entities[1].Record
	if rec.Nombre != "Ana Torres" || len(rec.Calificaciones) != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if q, ok := rec.Calificaciones[0].PuntajeCalidadGeneral.Float(); !ok || q != 9.5 {
		t.Errorf("expected numeric quality 9.5, got %v (%v)", q, ok)
	}
	if d, ok := rec.Calificaciones[0].PuntajeFacilidad.Float(); !ok || d != 4 {
		t.Errorf("expected string difficulty parsed as 4, got %v (%v)", d, ok)
	}

	logs := buf.String()
	if !strings.Contains(logs, "broken.json") || !strings.Contains(logs, ".hidden.json") {
		t.Errorf("expected skipped files to be logged, got %s", logs)
	}
}

func TestDirLoader_AccentedStems(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "José_Pérez.json", sampleDoc)
	writeFile(t, dir, "Iñaki_Muñoz.json", `{"nombre": "Iñaki Muñoz", "calificaciones": []}`)
	writeFile(t, dir, "plain.json", sampleDoc)

	var buf bytes.Buffer
	loader := NewDirLoader(dir, logging.NewTestLogger(&buf))

	entities, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
	}
	want := []string{"Iñaki_Muñoz", "José_Pérez", "plain"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("expected ids %v, got %v (logs: %s)", want, ids, buf.String())
	}
}

func TestDirLoader_MissingDirectory(t *testing.T) {
	t.Parallel()

	loader := NewDirLoader(filepath.Join(t.TempDir(), "absent"), logging.NewTestLogger(&bytes.Buffer{}))
	if _, err := loader.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDirLoader_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.json", sampleDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewDirLoader(dir, logging.NewTestLogger(&bytes.Buffer{}))
	if _, err := loader.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	if _, err := Decode("bad id", []byte(sampleDoc)); err == nil {
		t.Error("expected invalid id to be rejected")
	}
	for _, id := range []string{"José_Pérez", "Iñaki_Muñoz"} {
		if _, err := Decode(id, []byte(sampleDoc)); err != nil {
			t.Errorf("expected %q to decode, got %v", id, err)
		}
	}
	if _, err := Decode("x", []byte(`[]`)); err == nil {
		t.Error("expected array document to be rejected")
	}
	e, err := Decode("x", []byte(`{"nombre":"N","calificaciones":[{"puntaje_calidad_general":null}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Record.Calificaciones[0].PuntajeCalidadGeneral.IsNull() {
		t.Error("expected null quality")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	s := Static{{ID: "a"}, {ID: "b"}}
	got, err := s.Load(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected result %v, %v", got, err)
	}
	got[0].ID = "changed"
	if s[0].ID != "a" {
		t.Error("expected Load to return a copy")
	}

	var _ Loader = s
	var _ Loader = (*DirLoader)(nil)
}
