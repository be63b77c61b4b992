// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import "github.com/tomtom215/facultypulse/internal/review"

// spanishStopwords are prepositions, conjunctions, articles and pronouns.
// Occupational terms ("profesor", "clase", "examen") are deliberately absent.
var spanishStopwords = []string{
	"de", "la", "que", "el", "en", "y", "a", "los", "del", "se", "las", "por",
	"un", "para", "con", "no", "una", "su", "al", "lo", "como", "más", "pero",
	"sus", "le", "ya", "o", "fue", "este", "ha", "sí", "esta", "son", "entre",
	"cuando", "muy", "sin", "sobre", "también", "me", "hasta", "hay", "donde",
	"quien", "desde", "todo", "nos", "durante", "todos", "uno", "les", "ni",
	"contra", "otros", "ese", "eso", "ante", "ellos", "e", "esto", "antes",
	"algunos", "qué", "unos", "yo", "otro", "otras", "otra", "él", "tanto",
	"esa", "estos", "mucho", "quienes", "nada", "muchos", "cual", "poco",
	"ella", "estar", "estas", "algunas", "algo", "nosotros",
}

// StopwordSet returns the stopwords in normalized form, matching the tokens
// produced from review.NormalizeText.
func StopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(spanishStopwords))
	for _, w := range spanishStopwords {
		for _, tok := range review.Words(review.NormalizeText(w)) {
			set[tok] = struct{}{}
		}
	}
	return set
}
