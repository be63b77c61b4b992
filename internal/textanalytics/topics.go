// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// TopicStatus distinguishes "nothing to report" from "analysis failed".
type TopicStatus string

const (
	// StatusOK means extraction ran, or was legitimately skipped for lack of
	// comments; Topics may be empty.
	StatusOK TopicStatus = "ok"

	// StatusDegraded means extraction failed on degenerate input.
	StatusDegraded TopicStatus = "degraded"
)

// Topic is one NMF component. Words holds the highest-loading terms,
// strongest first; outputs published before this package listed the same
// terms weakest first.
type Topic struct {
	ID     int      `json:"id"`
	Words  []string `json:"words"`
	Weight float64  `json:"weight"`
}

// TopicsResult is the outcome of topic extraction.
type TopicsResult struct {
	Status TopicStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
	Topics []Topic     `json:"topics"`
}

// Degraded reports whether extraction failed.
func (r TopicsResult) Degraded() bool { return r.Status == StatusDegraded }

func ok(topics []Topic) TopicsResult {
	if topics == nil {
		topics = []Topic{}
	}
	return TopicsResult{Status: StatusOK, Topics: topics}
}

func degraded(err error) TopicsResult {
	return TopicsResult{Status: StatusDegraded, Reason: err.Error(), Topics: []Topic{}}
}

// TopicConfig controls topic extraction.
type TopicConfig struct {
	MinComments   int              `json:"min_comments"`
	MaxTopics     int              `json:"max_topics"`
	WordsPerTopic int              `json:"words_per_topic"`
	Vectorizer    VectorizerConfig `json:"vectorizer"`
	NMF           NMFConfig        `json:"nmf"`
}

// DefaultTopicConfig returns the topic extraction defaults.
func DefaultTopicConfig() TopicConfig {
	return TopicConfig{
		MinComments:   3,
		MaxTopics:     5,
		WordsPerTopic: 5,
		Vectorizer:    TopicVectorizerConfig(),
		NMF:           DefaultNMFConfig(),
	}
}

// TopicCount returns min(maxTopics, comments/2, 10).
func TopicCount(comments, maxTopics int) int {
	k := comments / 2
	if maxTopics < k {
		k = maxTopics
	}
	if k > 10 {
		k = 10
	}
	return k
}

// ExtractTopics factors the comments into topics. It never fails: degenerate
// input is reported through the returned status.
func ExtractTopics(comments []string, cfg TopicConfig) TopicsResult {
	if cfg.MinComments <= 0 {
		cfg.MinComments = 3
	}
	if cfg.WordsPerTopic <= 0 {
		cfg.WordsPerTopic = 5
	}
	if cfg.MaxTopics <= 0 {
		cfg.MaxTopics = 5
	}

	if len(comments) < cfg.MinComments {
		return ok(nil)
	}

	tfidf, err := NewVectorizer(cfg.Vectorizer).FitTransform(comments)
	if err != nil {
		return degraded(err)
	}

	k := TopicCount(len(comments), cfg.MaxTopics)
	if k < 2 {
		return ok(nil)
	}

	w, h, err := NMF(tfidf.Matrix, k, cfg.NMF)
	if err != nil {
		return degraded(err)
	}

	return ok(buildTopics(w, h, tfidf.Vocabulary, cfg.WordsPerTopic))
}

func buildTopics(w, h *mat.Dense, vocab []string, perTopic int) []Topic {
	k, m := h.Dims()
	n, _ := w.Dims()
	topics := make([]Topic, 0, k)

	for t := 0; t < k; t++ {
		order := make([]int, m)
		for j := range order {
			order[j] = j
		}
		loadings := h.RawRowView(t)
		sort.SliceStable(order, func(a, b int) bool { return loadings[order[a]] > loadings[order[b]] })

		limit := perTopic
		if limit > m {
			limit = m
		}
		words := make([]string, 0, limit)
		for _, j := range order[:limit] {
			words = append(words, vocab[j])
		}

		var sum float64
		for i := 0; i < n; i++ {
			sum += w.At(i, t)
		}

		topics = append(topics, Topic{ID: t, Words: words, Weight: sum / float64(n)})
	}
	return topics
}
