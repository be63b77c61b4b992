// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CosineSimilarity returns the pairwise cosine similarity of the rows of m.
// Zero rows have zero similarity with everything, themselves included.
func CosineSimilarity(m *mat.Dense) *mat.Dense {
	r, _ := m.Dims()
	norms := make([]float64, r)
	for i := 0; i < r; i++ {
		norms[i] = floats.Norm(m.RawRowView(i), 2)
	}

	var dot mat.Dense
	dot.Mul(m, m.T())
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			if norms[i] == 0 || norms[j] == 0 {
				dot.Set(i, j, 0)
				continue
			}
			dot.Set(i, j, dot.At(i, j)/(norms[i]*norms[j]))
		}
	}
	return &dot
}

// DuplicatePairs counts comment pairs whose TF-IDF cosine similarity
// exceeds threshold. Fewer than two comments yield zero pairs.
func DuplicatePairs(comments []string, threshold float64, cfg VectorizerConfig) (int, error) {
	if len(comments) < 2 {
		return 0, nil
	}

	tfidf, err := NewVectorizer(cfg).FitTransform(comments)
	if err != nil {
		return 0, err
	}

	sim := CosineSimilarity(tfidf.Matrix)
	pairs := 0
	for i := 0; i < len(comments); i++ {
		for j := i + 1; j < len(comments); j++ {
			if sim.At(i, j) > threshold {
				pairs++
			}
		}
	}
	return pairs, nil
}
