// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package review turns scraped professor records into typed atomic rows.

A scraped record carries a display name, a university label and a list of
loosely typed review objects. Values arrive as JSON numbers, strings or
null depending on which scraper produced the file, so every raw field is
decoded into a Value that remembers what was actually present.

# Normalization Rules

Normalize converts each raw review into a Row:

  - tipo_calificacion "BUENO" (case-insensitive) recommends; any other
    non-empty label does not; an empty label leaves Recommends nil
  - puntaje_facilidad becomes Difficulty clamped to [0, 5]; zero, "0",
    "0.0" and missing values are absent
  - calificacion_recibida becomes Grade unless it is N/A, NA or empty
  - materia is upper-cased and trimmed
  - fecha is parsed by ParseDate

Absent values are nil pointers. A Row never carries a numeric zero that
was not present in the source.

# Dates

ParseDate first tries the localized form used by the review site
("28/Dic/2016", Spanish three-letter month abbreviations), then the numeric
layouts 2006-01-02, 02/01/2006, 01/02/2006 and 2006/01/02 in that order.
Unparseable dates are nil; the row is kept for date-agnostic aggregates.

# Text

NormalizeText produces the lowercase, accent-stripped, punctuation-free
copy of a comment used by text analytics. The raw comment is preserved on
the Row for display.
*/
package review
