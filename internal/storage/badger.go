// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/ranking"
)

// Key layout.
const (
	prefixProfile   = "profile:"
	prefixRun       = "run:history:"
	keyIndices      = "indices:current"
	keyLastRun      = "run:last"
	runKeyTimestamp = "%020d"
)

// BadgerConfig configures the embedded key-value store.
type BadgerConfig struct {
	Path        string `koanf:"path"`
	InMemory    bool   `koanf:"in_memory"`
	SyncWrites  bool   `koanf:"sync_writes"`
	Compression bool   `koanf:"compression"`
}

// BadgerStore keeps the latest profiles, indices and run history in
// BadgerDB. It implements Sink, Snapshot, RunStore and Pruner.
type BadgerStore struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger
}

// OpenBadger opens (or creates) the store described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	s := NewBadgerStore(db, logger)
	s.owned = true
	return s, nil
}

// NewBadgerStore wraps an already open database. Close does not close db.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "badger_store").Logger(),
	}
}

// Close closes the database when the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Name implements Sink.
func (s *BadgerStore) Name() string { return "badger" }

// WriteProfile implements Sink.
func (s *BadgerStore) WriteProfile(ctx context.Context, id string, p *enrich.Profile) error {
	return s.put(ctx, prefixProfile+id, p)
}

// WriteIndices implements Sink.
func (s *BadgerStore) WriteIndices(ctx context.Context, idx *ranking.Indices) error {
	return s.put(ctx, keyIndices, idx)
}

// Profile implements Snapshot.
func (s *BadgerStore) Profile(ctx context.Context, id string) (*enrich.Profile, error) {
	var p enrich.Profile
	if err := s.get(ctx, prefixProfile+id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profiles implements Snapshot. Keys sort by id, so profiles come back in
// id order.
func (s *BadgerStore) Profiles(ctx context.Context) ([]*enrich.Profile, error) {
	var profiles []*enrich.Profile

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixProfile)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var p enrich.Profile
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("failed to decode stored profile")
				continue
			}
			profiles = append(profiles, &p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Indices implements Snapshot.
func (s *BadgerStore) Indices(ctx context.Context) (*ranking.Indices, error) {
	var idx ranking.Indices
	if err := s.get(ctx, keyIndices, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// SaveRun implements RunStore. The record becomes the last run and is
// appended to the history.
func (s *BadgerStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	historyKey := prefixRun + fmt.Sprintf(runKeyTimestamp, rec.StartedAt.UnixNano())

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyLastRun), data); err != nil {
			return err
		}
		return txn.Set([]byte(historyKey), data)
	})
}

// LastRun implements RunStore.
func (s *BadgerStore) LastRun(ctx context.Context) (*RunRecord, error) {
	var rec RunRecord
	if err := s.get(ctx, keyLastRun, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Runs returns up to limit run records, newest first.
func (s *BadgerStore) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRun)
		seek := append([]byte(prefixRun), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(runs) >= limit {
				break
			}
			var rec RunRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			runs = append(runs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RetainProfiles implements Pruner.
func (s *BadgerStore) RetainProfiles(ctx context.Context, ids []string) error {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[prefixProfile+id] = struct{}{}
	}

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixProfile)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if _, ok := keep[string(it.Item().Key())]; !ok {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan profiles: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete stale profile: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush deletes: %w", err)
	}
	s.logger.Debug().Int("removed", len(stale)).Msg("pruned stale profiles")
	return nil
}

func (s *BadgerStore) put(ctx context.Context, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) get(ctx context.Context, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}
