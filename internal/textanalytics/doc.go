// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

/*
Package textanalytics extracts topics, sentiment and near-duplicate signals
from review comments without any external language model.

# Vectorization

Vectorizer builds a TF-IDF matrix over normalized comments:

  - tokens are runs of at least two alphanumeric characters
  - functional Spanish stopwords are removed before n-grams are formed
  - document-frequency pruning (MinDF, MaxDF) then a vocabulary cap by
    corpus frequency
  - smooth IDF, ln((1+n)/(1+df)) + 1, and L2-normalized rows

# Topics

ExtractTopics factors the TF-IDF matrix with non-negative matrix
factorization (NNDSVDa initialization, multiplicative updates). The number
of topics is min(5, comments/2, 10); fewer than two topics means no topic
extraction. Degenerate input never aborts the caller: it yields a
TopicsResult with StatusDegraded and a reason.

# Sentiment

Score applies a fixed positive/negative lexicon to one comment:
(pos - neg) / (pos + neg), or zero when no lexicon word appears.

# Duplicates

DuplicatePairs counts comment pairs whose TF-IDF cosine similarity exceeds a
threshold.
*/
package textanalytics
