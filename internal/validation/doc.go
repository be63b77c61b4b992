// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the configuration loader, the
// source loader (entity identifiers) and the API (query parameters). Besides
// the built-in tags it registers:
//
//   - entityid: an identifier usable as a file stem and store key
//
// Example:
//
//	type shortlistParams struct {
//	    Subject       string  `validate:"omitempty,max=120"`
//	    MaxDifficulty float64 `validate:"gte=0,lte=5"`
//	}
//
//	if err := validation.ValidateStruct(&params); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
