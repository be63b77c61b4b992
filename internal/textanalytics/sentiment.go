// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/facultypulse/internal/review"
)

var positiveLexicon = toSet(
	"bueno", "excelente", "genial", "fantastico", "maravilloso",
	"perfecto", "increible", "brillante", "extraordinario", "magnifico",
	"claro", "explicativo", "comprensivo", "paciente", "dedicado",
	"apasionado", "motivador", "inspirador", "util", "practico",
)

var negativeLexicon = toSet(
	"malo", "terrible", "horrible", "pesimo", "decepcionante",
	"confuso", "aburrido", "dificil", "complicado", "frustrante",
	"inutil", "desorganizado", "impreciso", "lento", "monotono",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Score returns the lexicon polarity of one raw comment in [-1, 1].
func Score(comment string) float64 {
	var pos, neg int
	for _, w := range review.Words(review.NormalizeText(comment)) {
		if _, ok := positiveLexicon[w]; ok {
			pos++
		}
		if _, ok := negativeLexicon[w]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// DatedComment is a comment with the date of its review.
type DatedComment struct {
	Text string
	Date time.Time
}

// SentimentSummary aggregates comment polarity.
type SentimentSummary struct {
	Overall *float64           `json:"overall"`
	ByMonth map[string]float64 `json:"by_month"`
}

// Sentiment scores dated comments and averages them overall and per
// "YYYY-MM" month.
func Sentiment(comments []DatedComment) SentimentSummary {
	summary := SentimentSummary{ByMonth: map[string]float64{}}
	if len(comments) == 0 {
		return summary
	}

	scores := make([]float64, 0, len(comments))
	byMonth := make(map[string][]float64)
	for _, c := range comments {
		s := Score(c.Text)
		scores = append(scores, s)
		key := c.Date.Format("2006-01")
		byMonth[key] = append(byMonth[key], s)
	}

	overall := stat.Mean(scores, nil)
	summary.Overall = &overall
	for month, ms := range byMonth {
		summary.ByMonth[month] = stat.Mean(ms, nil)
	}
	return summary
}
