// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/metrics"
	"github.com/tomtom215/facultypulse/internal/ranking"
)

var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS professors (
		id VARCHAR PRIMARY KEY,
		nombre VARCHAR,
		universidad VARCHAR,
		n_reviews INTEGER NOT NULL,
		quality_bayes DOUBLE,
		difficulty_now DOUBLE,
		rec_rate DOUBLE,
		z_mean_decayed DOUBLE,
		dup_rate DOUBLE NOT NULL,
		trust_score DOUBLE NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS professor_subjects (
		professor_id VARCHAR NOT NULL,
		materia VARCHAR NOT NULL,
		z_decayed DOUBLE NOT NULL,
		n INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bursts (
		professor_id VARCHAR NOT NULL,
		window_from VARCHAR NOT NULL,
		window_to VARCHAR NOT NULL,
		review_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pareto_points (
		id VARCHAR NOT NULL,
		x DOUBLE NOT NULL,
		y DOUBLE NOT NULL,
		n INTEGER NOT NULL,
		efficient BOOLEAN NOT NULL
	)`,
}

// DuckDBStore loads the listing, subject standings, bursts and the Pareto
// frontier into DuckDB tables. Entities without reviews are not stored.
type DuckDBStore struct {
	conn   *sql.DB
	mu     sync.Mutex // serializes write transactions
	logger zerolog.Logger
}

// OpenDuckDB opens the database at path (":memory:" or "" for an in-memory
// database) and creates the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenDuckDB(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBStore, error) {
	if path == ":memory:" {
		path = ""
	}
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &DuckDBStore{
		conn:   conn,
		logger: logger.With().Str("component", "duckdb_store").Logger(),
	}
	if err := s.createSchema(ctx); err != nil {
		_ = conn.Close() //nolint:errcheck // schema error takes precedence
		return nil, err
	}
	return s, nil
}

func (s *DuckDBStore) createSchema(ctx context.Context) error {
	for _, stmt := range duckdbSchema {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}

// Name implements Sink.
func (s *DuckDBStore) Name() string { return "duckdb" }

// WriteProfile implements Sink. It replaces the entity's rows in one
// transaction.
func (s *DuckDBStore) WriteProfile(ctx context.Context, id string, p *enrich.Profile) (err error) {
	if !p.HasReviews() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "professors", time.Since(start), err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("transaction rollback failed")
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO professors
		(id, nombre, universidad, n_reviews, quality_bayes, difficulty_now, rec_rate,
		 z_mean_decayed, dup_rate, trust_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Nombre, p.Universidad, p.NReviews,
		nullFloat(p.Bayes.QualityBayes), nullFloat(p.Decay.DifficultyDecayed),
		nullFloat(p.Recommendation.Rate), nullFloat(p.Subjects.ZMeanDecayed),
		p.Integrity.DupRate, p.Integrity.TrustScore, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert professor: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM professor_subjects WHERE professor_id = ?`, id); err != nil {
		return fmt.Errorf("clear subjects: %w", err)
	}
	for _, subj := range p.Subjects.PerSubject {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO professor_subjects (professor_id, materia, z_decayed, n) VALUES (?, ?, ?, ?)`,
			id, subj.Materia, subj.ZDecayed, subj.N); err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM bursts WHERE professor_id = ?`, id); err != nil {
		return fmt.Errorf("clear bursts: %w", err)
	}
	for _, b := range p.Integrity.Bursts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO bursts (professor_id, window_from, window_to, review_count) VALUES (?, ?, ?, ?)`,
			id, b.From, b.To, b.Count); err != nil {
			return fmt.Errorf("insert burst: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WriteIndices implements Sink. The Pareto table is replaced as a whole.
func (s *DuckDBStore) WriteIndices(ctx context.Context, idx *ranking.Indices) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "pareto_points", time.Since(start), err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("transaction rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM pareto_points`); err != nil {
		return fmt.Errorf("clear pareto points: %w", err)
	}
	for _, pt := range idx.Pareto.Points {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO pareto_points (id, x, y, n, efficient) VALUES (?, ?, ?, ?, ?)`,
			pt.ID, pt.X, pt.Y, pt.N, idx.Pareto.IsEfficient(pt.ID)); err != nil {
			return fmt.Errorf("insert pareto point: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// TopBySubject returns the entities teaching subject (case-insensitive),
// best decayed z first.
func (s *DuckDBStore) TopBySubject(ctx context.Context, subject string, limit int) (entries []ranking.SubjectEntry, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "professor_subjects", time.Since(start), err) }()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT p.id, p.nombre, s.z_decayed, p.quality_bayes, p.difficulty_now, p.n_reviews
		FROM professor_subjects s
		JOIN professors p ON p.id = s.professor_id
		WHERE upper(s.materia) = upper(?)
		ORDER BY s.z_decayed DESC, p.id
		LIMIT ?`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("query subject standings: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows.Err is checked below

	entries = []ranking.SubjectEntry{}
	for rows.Next() {
		var (
			e          ranking.SubjectEntry
			quality    sql.NullFloat64
			difficulty sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Nombre, &e.ZDecayed, &quality, &difficulty, &e.N); err != nil {
			return nil, fmt.Errorf("scan subject standing: %w", err)
		}
		e.QualityBayes = floatPtr(quality)
		e.DifficultyNow = floatPtr(difficulty)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subject standings: %w", err)
	}
	return entries, nil
}

// BurstCount returns the number of stored burst windows per entity, for
// entities with at least one burst.
func (s *DuckDBStore) BurstCount(ctx context.Context) (counts map[string]int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "bursts", time.Since(start), err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT professor_id, count(*) FROM bursts GROUP BY professor_id ORDER BY professor_id`)
	if err != nil {
		return nil, fmt.Errorf("query bursts: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows.Err is checked below

	counts = make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan burst count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bursts: %w", err)
	}
	return counts, nil
}

// RetainProfiles implements Pruner.
func (s *DuckDBStore) RetainProfiles(ctx context.Context, ids []string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", "professors", time.Since(start), err) }()

	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM professors`)
	if err != nil {
		return fmt.Errorf("list professors: %w", err)
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	var stale []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			_ = rows.Close() //nolint:errcheck // scan error takes precedence
			return fmt.Errorf("scan professor id: %w", err)
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err = rows.Close(); err != nil {
		return fmt.Errorf("close professor rows: %w", err)
	}

	for _, id := range stale {
		for _, stmt := range []string{
			`DELETE FROM professor_subjects WHERE professor_id = ?`,
			`DELETE FROM bursts WHERE professor_id = ?`,
			`DELETE FROM professors WHERE id = ?`,
		} {
			if _, err = s.conn.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("remove stale professor: %w", err)
			}
		}
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
