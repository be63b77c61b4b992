// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/facultypulse/internal/review"
)

var (
	// ErrNoDocuments is returned when the corpus is empty.
	ErrNoDocuments = errors.New("no documents")

	// ErrEmptyVocabulary is returned when the documents contain only stopwords
	// or tokens shorter than two characters.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrNoTermsRemain is returned when document-frequency pruning removes
	// every term.
	ErrNoTermsRemain = errors.New("no terms remain after pruning")

	// ErrInvalidPruning is returned when MaxDF admits fewer documents than MinDF.
	ErrInvalidPruning = errors.New("max_df corresponds to fewer documents than min_df")
)

// VectorizerConfig controls vocabulary construction.
type VectorizerConfig struct {
	// MinDF drops terms present in fewer documents than this count.
	MinDF int `json:"min_df"`

	// MaxDF drops terms present in more than this proportion of documents.
	MaxDF float64 `json:"max_df"`

	// MaxNgram is the longest word n-gram (1 = unigrams, 2 = bigrams too).
	MaxNgram int `json:"max_ngram"`

	// MaxFeatures caps the vocabulary by corpus frequency. Zero is unlimited.
	MaxFeatures int `json:"max_features"`
}

// TopicVectorizerConfig returns the vocabulary settings for topic modeling.
func TopicVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{MinDF: 2, MaxDF: 0.9, MaxNgram: 2, MaxFeatures: 500}
}

// DuplicateVectorizerConfig returns the vocabulary settings for duplicate
// detection: unigrams, no document-frequency pruning.
func DuplicateVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{MinDF: 1, MaxDF: 1.0, MaxNgram: 1, MaxFeatures: 300}
}

// TFIDF is a documents x terms matrix with its sorted vocabulary.
type TFIDF struct {
	Matrix     *mat.Dense
	Vocabulary []string
}

// Vectorizer turns raw comments into TF-IDF rows.
type Vectorizer struct {
	cfg  VectorizerConfig
	stop map[string]struct{}
}

// NewVectorizer creates a vectorizer. Zero-valued settings get defaults.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.MinDF < 1 {
		cfg.MinDF = 1
	}
	if cfg.MaxDF <= 0 || cfg.MaxDF > 1 {
		cfg.MaxDF = 1.0
	}
	if cfg.MaxNgram < 1 {
		cfg.MaxNgram = 1
	}
	return &Vectorizer{cfg: cfg, stop: StopwordSet()}
}

// Analyze returns the terms of one raw document: normalized, stopword-free
// tokens followed by their n-grams.
func (v *Vectorizer) Analyze(doc string) []string {
	tokens := make([]string, 0, 16)
	for _, w := range review.Words(review.NormalizeText(doc)) {
		if len(w) < 2 {
			continue
		}
		if _, stop := v.stop[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}

	terms := make([]string, 0, len(tokens)*v.cfg.MaxNgram)
	terms = append(terms, tokens...)
	for n := 2; n <= v.cfg.MaxNgram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i]
			for _, t := range tokens[i+1 : i+n] {
				gram += " " + t
			}
			terms = append(terms, gram)
		}
	}
	return terms
}

// FitTransform learns the vocabulary of docs and returns their TF-IDF rows.
func (v *Vectorizer) FitTransform(docs []string) (*TFIDF, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range v.Analyze(doc) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
			total[term]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab, err := v.prune(df, total, len(docs))
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(vocab))
	for j, term := range vocab {
		index[term] = j
	}

	n := float64(len(docs))
	m := mat.NewDense(len(docs), len(vocab), nil)
	for i := range docs {
		for term, c := range counts[i] {
			j, ok := index[term]
			if !ok {
				continue
			}
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			m.Set(i, j, float64(c)*idf)
		}
		row := m.RawRowView(i)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}

	return &TFIDF{Matrix: m, Vocabulary: vocab}, nil
}

func (v *Vectorizer) prune(df, total map[string]int, nDocs int) ([]string, error) {
	maxDocs := v.cfg.MaxDF * float64(nDocs)
	if maxDocs < float64(v.cfg.MinDF) {
		return nil, fmt.Errorf("%w: max %.1f, min %d", ErrInvalidPruning, maxDocs, v.cfg.MinDF)
	}

	kept := make([]string, 0, len(df))
	for term, d := range df {
		if float64(d) > maxDocs || d < v.cfg.MinDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, ErrNoTermsRemain
	}

	if v.cfg.MaxFeatures > 0 && len(kept) > v.cfg.MaxFeatures {
		sort.Slice(kept, func(a, b int) bool {
			if total[kept[a]] != total[kept[b]] {
				return total[kept[a]] > total[kept[b]]
			}
			return kept[a] < kept[b]
		})
		kept = kept[:v.cfg.MaxFeatures]
	}

	sort.Strings(kept)
	return kept, nil
}
