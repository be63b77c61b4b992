// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/facultypulse/internal/insights"
	"github.com/tomtom215/facultypulse/internal/ranking"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/validation"
)

// Paging defaults for list endpoints.
const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

type professorListRequest struct {
	Query  string `json:"q" validate:"max=100"`
	Sort   string `json:"sort" validate:"oneof=quality difficulty reviews trust name"`
	Order  string `json:"order" validate:"oneof=asc desc"`
	Limit  int    `json:"limit" validate:"gte=1,lte=500"`
	Offset int    `json:"offset" validate:"gte=0"`
}

type entityRequest struct {
	ID string `json:"id" validate:"required,entityid"`
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func (h *Handler) entityID(w http.ResponseWriter, r *http.Request) (string, bool) {
	req := entityRequest{ID: chi.URLParam(r, "id")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, verr)
		return "", false
	}
	return req.ID, true
}

// ListProfessors returns a page of the minimal listing, optionally filtered
// by an accent-insensitive name search.
func (h *Handler) ListProfessors(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	req := professorListRequest{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Sort:   r.URL.Query().Get("sort"),
		Order:  r.URL.Query().Get("order"),
		Limit:  limit,
		Offset: offset,
	}
	if req.Sort == "" {
		req.Sort = "quality"
	}
	if req.Order == "" {
		req.Order = "desc"
		if req.Sort == "name" || req.Sort == "difficulty" {
			req.Order = "asc"
		}
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	h.serveCached(w, r, "professors", req, func(ctx context.Context) (interface{}, *int, error) {
		idx, err := h.indices(ctx)
		if err != nil {
			return nil, nil, err
		}
		items := filterByName(idx.ListMin, req.Query)
		sortListItems(items, req.Sort, req.Order == "desc")

		total := len(items)
		start := min(req.Offset, total)
		end := min(start+req.Limit, total)
		return items[start:end], &total, nil
	})
}

func filterByName(items []ranking.ListItem, query string) []ranking.ListItem {
	needle := review.NormalizeText(query)
	out := make([]ranking.ListItem, 0, len(items))
	for i := range items {
		if needle == "" || strings.Contains(review.NormalizeText(items[i].Nombre), needle) {
			out = append(out, items[i])
		}
	}
	return out
}

// sortListItems orders items by key. Missing values sort last in either
// direction and ties fall back to the id.
func sortListItems(items []ranking.ListItem, key string, desc bool) {
	value := func(it *ranking.ListItem) (float64, bool) {
		switch key {
		case "difficulty":
			if it.DifficultyNow == nil {
				return 0, false
			}
			return *it.DifficultyNow, true
		case "reviews":
			return float64(it.N), true
		case "trust":
			return it.TrustScore, true
		default:
			if it.QualityBayes == nil {
				return 0, false
			}
			return *it.QualityBayes, true
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if key == "name" {
			na, nb := review.NormalizeText(items[a].Nombre), review.NormalizeText(items[b].Nombre)
			if na != nb {
				return (na < nb) != desc
			}
			return items[a].ID < items[b].ID
		}
		va, oka := value(&items[a])
		vb, okb := value(&items[b])
		if oka != okb {
			return oka
		}
		if va != vb {
			return (va < vb) != desc
		}
		return items[a].ID < items[b].ID
	})
}

// GetProfessor returns the full enriched profile of one entity, including
// the marker of an entity without reviews.
func (h *Handler) GetProfessor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	p, err := h.deps.Snapshot.Profile(r.Context(), id)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}
	respondData(w, p)
}

// GetProfessorTrend summarizes the quality trajectory of one entity.
func (h *Handler) GetProfessorTrend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	p, err := h.deps.Snapshot.Profile(r.Context(), id)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}
	if !p.HasReviews() {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "entity has no reviews", nil)
		return
	}
	respondData(w, insights.TrendDirection(p))
}

// Recommendations returns the shortlist for a subject and difficulty cap.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	maxDifficulty, err := queryFloat(r, "max_difficulty", 5)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	q := insights.ShortlistQuery{
		Subject:       strings.TrimSpace(r.URL.Query().Get("subject")),
		MaxDifficulty: maxDifficulty,
		Limit:         limit,
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidation(w, verr)
		return
	}

	h.serveCached(w, r, "recommendations", q, func(ctx context.Context) (interface{}, *int, error) {
		profiles, err := h.profiles(ctx)
		if err != nil {
			return nil, nil, err
		}
		candidates := insights.Shortlist(profiles, q)
		total := len(candidates)
		return candidates, &total, nil
	})
}

// Anomalies lists entities with suspicious review patterns.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "anomalies", nil, func(ctx context.Context) (interface{}, *int, error) {
		profiles, err := h.profiles(ctx)
		if err != nil {
			return nil, nil, err
		}
		a := insights.DetectAnomalies(profiles)
		total := a.Count()
		return a, &total, nil
	})
}

// Compare puts two or more entities side by side (?ids=a,b).
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		req := entityRequest{ID: part}
		if verr := validation.ValidateStruct(&req); verr != nil {
			respondValidation(w, verr)
			return
		}
		ids = append(ids, part)
	}
	if len(ids) < 2 {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "ids must name at least two entities", nil)
		return
	}
	if len(ids) > 10 {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "ids must name at most 10 entities", nil)
		return
	}

	h.serveCached(w, r, "compare", ids, func(ctx context.Context) (interface{}, *int, error) {
		profiles, err := h.profiles(ctx)
		if err != nil {
			return nil, nil, err
		}
		c, err := insights.Compare(profiles, ids)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	})
}
