// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package algorithms

import (
	"context"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode"
)

// TFIDF is a term-frequency / inverse-document-frequency index. Document
// vectors are L2-normalized so a dot product is the cosine similarity.
//
// Weights follow the smoothed form
//
//	tfidf(t, d) = tf(t, d) * (ln((1 + n) / (1 + df(t))) + 1)
type TFIDF struct {
	Model
	index *tfidfIndex
}

type tfidfIndex struct {
	vocab map[string]int
	idf   []float64
	docs  []map[int]float64
}

// NewTFIDF returns an empty index.
func NewTFIDF() *TFIDF {
	return &TFIDF{Model: Model{name: "tfidf"}}
}

// Build indexes docs, replacing any previous index. Document positions are
// preserved in Query results.
func (t *TFIDF) Build(ctx context.Context, docs []string) error {
	idx := &tfidfIndex{vocab: make(map[string]int)}

	counts := make([]map[int]float64, len(docs))
	var df []int
	for d, text := range docs {
		if d%512 == 0 && canceled(ctx) {
			return ctx.Err()
		}
		tf := make(map[int]float64)
		for _, tok := range Tokenize(text) {
			id, ok := idx.vocab[tok]
			if !ok {
				id = len(df)
				idx.vocab[tok] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		counts[d] = tf
	}

	n := float64(len(docs))
	idx.idf = make([]float64, len(df))
	for id, f := range df {
		idx.idf[id] = math.Log((1+n)/(1+float64(f))) + 1
	}

	idx.docs = make([]map[int]float64, len(docs))
	for d, tf := range counts {
		idx.docs[d] = idx.weigh(tf)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.index = idx
	t.stamp()
	return nil
}

// weigh converts raw term counts to a normalized tf-idf vector in place.
// Terms are summed in id order so equal inputs give bit-identical weights.
func (idx *tfidfIndex) weigh(tf map[int]float64) map[int]float64 {
	var norm float64
	for _, id := range slices.Sorted(maps.Keys(tf)) {
		w := tf[id] * idx.idf[id]
		tf[id] = w
		norm += w * w
	}
	if norm == 0 {
		return tf
	}
	norm = math.Sqrt(norm)
	for id := range tf {
		tf[id] /= norm
	}
	return tf
}

// Ready reports whether an index with at least one term is loaded.
func (t *TFIDF) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index != nil && len(t.index.vocab) > 0
}

// Query returns the cosine similarity between text and every document, in
// document order. ok is false when no token of text is in the vocabulary.
func (t *TFIDF) Query(text string) (scores []float64, ok bool) {
	t.mu.RLock()
	idx := t.index
	t.mu.RUnlock()
	if idx == nil {
		return nil, false
	}

	tf := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if id, found := idx.vocab[tok]; found {
			tf[id]++
		}
	}
	if len(tf) == 0 {
		return nil, false
	}
	q := idx.weigh(tf)
	terms := slices.Sorted(maps.Keys(q))

	scores = make([]float64, len(idx.docs))
	for d, doc := range idx.docs {
		var s float64
		for _, id := range terms {
			s += q[id] * doc[id]
		}
		scores[d] = s
	}
	return scores, true
}

// Tokenize lower-cases text and splits it into runs of letters and digits,
// dropping single-character tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
