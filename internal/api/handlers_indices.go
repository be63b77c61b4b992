// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package api

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/facultypulse/internal/insights"
	"github.com/tomtom215/facultypulse/internal/ranking"
	"github.com/tomtom215/facultypulse/internal/validation"
)

type subjectRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Limit   int    `json:"limit" validate:"gte=1,lte=100"`
}

// SubjectSummary is one row of the subject index.
type SubjectSummary struct {
	Key         string `json:"key"`
	NProfessors int    `json:"n_professors"`
}

// Meta returns the run metadata of the published batch.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	idx, err := h.indices(r.Context())
	if err != nil {
		respondLookupError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     idx.Meta,
		Metadata: Metadata{Timestamp: time.Now().UTC(), RunID: idx.Meta.RunID},
	})
}

// ListMin returns the full minimal listing in publication order.
func (h *Handler) ListMin(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "list_min", nil, func(ctx context.Context) (interface{}, *int, error) {
		idx, err := h.indices(ctx)
		if err != nil {
			return nil, nil, err
		}
		total := len(idx.ListMin)
		return idx.ListMin, &total, nil
	})
}

// Pareto returns the difficulty/quality frontier.
func (h *Handler) Pareto(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "pareto", nil, func(ctx context.Context) (interface{}, *int, error) {
		idx, err := h.indices(ctx)
		if err != nil {
			return nil, nil, err
		}
		return idx.Pareto, nil, nil
	})
}

// Subjects lists the subject leaderboards with their sizes.
func (h *Handler) Subjects(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "subjects", nil, func(ctx context.Context) (interface{}, *int, error) {
		idx, err := h.indices(ctx)
		if err != nil {
			return nil, nil, err
		}
		out := make([]SubjectSummary, 0, len(idx.Subjects))
		for key, board := range idx.Subjects {
			out = append(out, SubjectSummary{Key: key, NProfessors: len(board)})
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
		total := len(out)
		return out, &total, nil
	})
}

func (h *Handler) subjectRequest(w http.ResponseWriter, r *http.Request, defLimit int) (subjectRequest, bool) {
	limit, err := queryInt(r, "limit", defLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return subjectRequest{}, false
	}
	req := subjectRequest{Subject: strings.TrimSpace(chi.URLParam(r, "subject")), Limit: limit}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, verr)
		return subjectRequest{}, false
	}
	return req, true
}

// SubjectBoard returns the published leaderboard of one subject. The
// subject may be given by name or by its file-safe key.
func (h *Handler) SubjectBoard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.subjectRequest(w, r, 100)
	if !ok {
		return
	}
	h.serveCached(w, r, "subject_board", req, func(ctx context.Context) (interface{}, *int, error) {
		return h.boardFromIndices(ctx, req)
	})
}

func (h *Handler) boardFromIndices(ctx context.Context, req subjectRequest) (interface{}, *int, error) {
	idx, err := h.indices(ctx)
	if err != nil {
		return nil, nil, err
	}
	board, ok := idx.Subjects[ranking.SafeSubjectKey(req.Subject)]
	if !ok {
		return nil, nil, insights.ErrUnknownSubject
	}
	total := len(board)
	return board[:min(req.Limit, total)], &total, nil
}

// SubjectTop answers the subject leaderboard from the analytical store
// when one is configured, otherwise from the published indices.
func (h *Handler) SubjectTop(w http.ResponseWriter, r *http.Request) {
	req, ok := h.subjectRequest(w, r, 10)
	if !ok {
		return
	}
	h.serveCached(w, r, "subject_top", req, func(ctx context.Context) (interface{}, *int, error) {
		if h.deps.Subjects == nil {
			return h.boardFromIndices(ctx, req)
		}
		entries, err := h.deps.Subjects.TopBySubject(ctx, req.Subject, req.Limit)
		if err != nil {
			return nil, nil, err
		}
		if len(entries) == 0 {
			return nil, nil, insights.ErrUnknownSubject
		}
		return entries, nil, nil
	})
}

// SubjectReport describes how one subject is taught across the corpus.
func (h *Handler) SubjectReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.subjectRequest(w, r, 100)
	if !ok {
		return
	}
	h.serveCached(w, r, "subject_report", req.Subject, func(ctx context.Context) (interface{}, *int, error) {
		idx, err := h.indices(ctx)
		if err != nil {
			return nil, nil, err
		}
		if idx.Baseline == nil {
			return nil, nil, errNoData
		}
		profiles, err := h.deps.Snapshot.Profiles(ctx)
		if err != nil {
			return nil, nil, err
		}
		report, err := insights.BuildSubjectReport(idx.Baseline, profiles, req.Subject)
		if err != nil {
			return nil, nil, err
		}
		return report, nil, nil
	})
}
