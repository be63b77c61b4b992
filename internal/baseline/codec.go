// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package baseline

import (
	"github.com/goccy/go-json"
)

type encoded struct {
	Global     Global              `json:"global"`
	Categories map[string]Category `json:"categories"`
}

// MarshalJSON encodes the global and per-category statistics.
func (b *Baseline) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoded{Global: b.global, Categories: b.categories})
}

// UnmarshalJSON restores a Baseline persisted with MarshalJSON.
func (b *Baseline) UnmarshalJSON(data []byte) error {
	var e encoded
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	if e.Categories == nil {
		e.Categories = make(map[string]Category)
	}
	b.global = e.Global
	b.categories = e.Categories
	return nil
}
