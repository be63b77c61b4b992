// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/cache"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/ranking"
	"github.com/tomtom215/facultypulse/internal/storage"
)

// errNoData means nothing has been published yet.
var errNoData = errors.New("no published batch")

// RunStatus reports on the batch runner.
type RunStatus interface {
	LastRun() *storage.RunRecord
	Running() bool
}

// Trigger requests an out-of-schedule batch.
type Trigger interface {
	Trigger() bool
}

// SubjectQuerier answers subject leaderboard queries from an analytical
// store.
type SubjectQuerier interface {
	TopBySubject(ctx context.Context, subject string, limit int) ([]ranking.SubjectEntry, error)
}

// Deps are the collaborators of the handlers. Only Snapshot is required.
type Deps struct {
	Snapshot storage.Snapshot
	Runs     storage.RunStore
	History  storage.RunHistory
	Status   RunStatus
	Trigger  Trigger
	Subjects SubjectQuerier
	Cache    *cache.LRU
}

// Handler serves the read API.
type Handler struct {
	deps      Deps
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates the API handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Deps, logger zerolog.Logger) (*Handler, error) {
	if deps.Snapshot == nil {
		return nil, errors.New("api: snapshot is required")
	}
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}, nil
}

// Invalidate drops cached responses. Call it after every publication.
func (h *Handler) Invalidate() {
	if h.deps.Cache != nil {
		h.deps.Cache.Purge()
		h.logger.Debug().Msg("response cache purged")
	}
}

func (h *Handler) indices(ctx context.Context) (*ranking.Indices, error) {
	idx, err := h.deps.Snapshot.Indices(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNoData
	}
	return idx, err
}

func (h *Handler) profiles(ctx context.Context) ([]*enrich.Profile, error) {
	profiles, err := h.deps.Snapshot.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		if _, err := h.indices(ctx); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// cachedPayload is what the response cache stores per key.
type cachedPayload struct {
	Data  json.RawMessage `json:"data"`
	Total *int            `json:"total,omitempty"`
}

// computeFunc produces the data of a response and, for paged lists, the
// unpaged total.
type computeFunc func(ctx context.Context) (data interface{}, total *int, err error)

// serveCached answers from the response cache when possible, otherwise
// computes, responds and stores the result.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, route string, params interface{}, compute computeFunc) {
	start := time.Now()
	var key string
	if h.deps.Cache != nil {
		key = cache.GenerateKey(route, params)
		if raw, ok := h.deps.Cache.Get(key); ok {
			var p cachedPayload
			if err := json.Unmarshal(raw, &p); err == nil {
				respondJSON(w, http.StatusOK, &APIResponse{
					Status:   "success",
					Data:     p.Data,
					Metadata: Metadata{Timestamp: time.Now().UTC(), Cached: true, Total: p.Total},
				})
				return
			}
			h.deps.Cache.Remove(key)
		}
	}

	data, total, err := compute(r.Context())
	if err != nil {
		respondLookupError(w, r, err)
		return
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", fmt.Errorf("encode %s: %w", route, err))
		return
	}
	if h.deps.Cache != nil {
		if raw, err := json.Marshal(cachedPayload{Data: encoded, Total: total}); err == nil {
			h.deps.Cache.Set(key, raw)
		}
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   json.RawMessage(encoded),
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Total:       total,
		},
	})
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}
