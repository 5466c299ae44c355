/*
Package index builds a term-weighted vector space over catalog descriptions
and scores free-text queries against it.

Terms are unigrams and bigrams of case-folded, accent-folded tokens with a
fixed stop-word set removed. Each document gets a TF-IDF vector (raw term
frequency times smoothed inverse document frequency), L2-normalized so that
scoring reduces to a dot product, i.e. cosine similarity.

The vocabulary and all document vectors are fixed at build time. Query vectors
are always built against that same vocabulary: terms the corpus never saw are
dropped and contribute zero weight, so an unseen or all-stop-word query scores
zero everywhere rather than failing.
*/
package index

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrEmptyCorpus is returned by Build when there are no usable descriptions.
	ErrEmptyCorpus = errors.New("similarity index: corpus has no usable descriptions")
	// ErrEmptyVocabulary is returned when frequency pruning removes every term.
	ErrEmptyVocabulary = errors.New("similarity index: vocabulary is empty")
)

// Options controls vocabulary construction.
type Options struct {
	// MaxFeatures caps the vocabulary size; the most frequent terms win.
	MaxFeatures int
	// MinDocFreq drops terms seen in fewer documents than this.
	MinDocFreq int
	// MaxDocRatio drops terms seen in more than this fraction of documents.
	MaxDocRatio float64
	// Bigrams enables two-token terms in addition to unigrams.
	Bigrams bool
}

// DefaultOptions mirrors the vectorizer settings the suggestion engine was
// tuned with: 5000 features, unigrams+bigrams, terms in >95% of docs pruned.
func DefaultOptions() Options {
	return Options{
		MaxFeatures: 5000,
		MinDocFreq:  1,
		MaxDocRatio: 0.95,
		Bigrams:     true,
	}
}

type posting struct {
	doc    int
	weight float64
}

// Index is the immutable vector space. Safe for concurrent queries.
type Index struct {
	vocab    map[string]int // term -> id
	terms    []string       // id -> term
	idf      []float64      // id -> smoothed idf
	postings [][]posting    // id -> (doc, normalized weight)
	nDocs    int
	bigrams  bool
}

// Hit is one document's similarity to a query.
type Hit struct {
	Doc   int
	Score float64
}

// Build constructs the vector space over the given descriptions, one document
// per description, preserving input order as document indices.
func Build(descriptions []string, opts Options) (*Index, error) {
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultOptions().MaxFeatures
	}
	if opts.MinDocFreq <= 0 {
		opts.MinDocFreq = 1
	}
	if opts.MaxDocRatio <= 0 || opts.MaxDocRatio > 1 {
		opts.MaxDocRatio = DefaultOptions().MaxDocRatio
	}

	usable := 0
	docTerms := make([][]string, len(descriptions))
	for i, d := range descriptions {
		if strings.TrimSpace(d) != "" {
			usable++
		}
		docTerms[i] = expandTerms(tokenize(d), opts.Bigrams)
	}
	if usable == 0 {
		return nil, ErrEmptyCorpus
	}

	n := len(descriptions)

	// Document frequency and corpus-wide term frequency.
	df := make(map[string]int)
	totalTF := make(map[string]int)
	for _, terms := range docTerms {
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			totalTF[t]++
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	// Prune by document-frequency bounds, then cap by corpus frequency.
	candidates := make([]string, 0, len(df))
	for t, d := range df {
		if d < opts.MinDocFreq {
			continue
		}
		if float64(d) > opts.MaxDocRatio*float64(n) {
			continue
		}
		candidates = append(candidates, t)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := candidates[i], candidates[j]
		if totalTF[ti] != totalTF[tj] {
			return totalTF[ti] > totalTF[tj]
		}
		return ti < tj
	})
	if len(candidates) > opts.MaxFeatures {
		candidates = candidates[:opts.MaxFeatures]
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyVocabulary
	}

	ix := &Index{
		vocab:    make(map[string]int, len(candidates)),
		terms:    make([]string, len(candidates)),
		idf:      make([]float64, len(candidates)),
		postings: make([][]posting, len(candidates)),
		nDocs:    n,
		bigrams:  opts.Bigrams,
	}
	for id, t := range candidates {
		ix.vocab[t] = id
		ix.terms[id] = t
		// Smoothed idf: ln((1+n)/(1+df)) + 1, never zero or negative.
		ix.idf[id] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	// Per-document TF-IDF vectors, L2-normalized into the postings lists.
	for doc, terms := range docTerms {
		counts := make(map[int]int)
		for _, t := range terms {
			if id, ok := ix.vocab[t]; ok {
				counts[id]++
			}
		}
		if len(counts) == 0 {
			continue
		}

		var norm float64
		weights := make(map[int]float64, len(counts))
		for id, tf := range counts {
			w := float64(tf) * ix.idf[id]
			weights[id] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)

		for id, w := range weights {
			ix.postings[id] = append(ix.postings[id], posting{doc: doc, weight: w / norm})
		}
	}

	log.Debugf("Similarity index built: %d docs, %d terms", n, len(ix.terms))
	return ix, nil
}

// VocabSize returns the number of indexed terms.
func (ix *Index) VocabSize() int {
	return len(ix.terms)
}

// queryVector builds the L2-normalized TF-IDF vector for a query, restricted
// to the fixed vocabulary. Unknown terms are dropped, never added.
func (ix *Index) queryVector(text string) map[int]float64 {
	counts := make(map[int]int)
	for _, t := range expandTerms(tokenize(text), ix.bigrams) {
		if id, ok := ix.vocab[t]; ok {
			counts[id]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	var norm float64
	weights := make(map[int]float64, len(counts))
	for id, tf := range counts {
		w := float64(tf) * ix.idf[id]
		weights[id] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for id := range weights {
		weights[id] /= norm
	}
	return weights
}

// Query scores every document against the text by cosine similarity and
// returns all documents, highest score first, ties broken by ascending
// document index. An empty or all-stop-word query yields zero scores for
// every document; that is not an error.
func (ix *Index) Query(text string) ([]Hit, error) {
	if ix == nil || len(ix.terms) == 0 {
		return nil, ErrEmptyVocabulary
	}

	scores := make([]float64, ix.nDocs)
	for id, qw := range ix.queryVector(text) {
		for _, p := range ix.postings[id] {
			scores[p.doc] += qw * p.weight
		}
	}

	hits := make([]Hit, ix.nDocs)
	for doc, s := range scores {
		hits[doc] = Hit{Doc: doc, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

// TopK returns at most k highest-scoring documents for the text.
func (ix *Index) TopK(text string, k int) ([]Hit, error) {
	hits, err := ix.Query(text)
	if err != nil {
		return nil, err
	}
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// QueryTerms returns the query's top-weighted vocabulary terms, at most max,
// as a human-auditable explanation of which words drive vector matches.
// Only terms with nonzero weight are reported.
func (ix *Index) QueryTerms(text string, max int) []string {
	if ix == nil || len(ix.terms) == 0 {
		return nil
	}
	weights := ix.queryVector(text)
	if len(weights) == 0 {
		return nil
	}

	ids := make([]int, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if weights[ids[i]] != weights[ids[j]] {
			return weights[ids[i]] > weights[ids[j]]
		}
		return ix.terms[ids[i]] < ix.terms[ids[j]]
	})
	if max > 0 && len(ids) > max {
		ids = ids[:max]
	}

	terms := make([]string, len(ids))
	for i, id := range ids {
		terms[i] = ix.terms[id]
	}
	return terms
}
