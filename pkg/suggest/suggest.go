/*
Package suggest ranks catalog entries against a free-text product description.

The engine runs two retrieval paths. The vector path queries the TF-IDF
similarity index and keeps candidates above a minimum score; when that yields
fewer results than asked for, a keyword path substring-searches the catalog
descriptions with the query's tokens. Index failures are swallowed into the
keyword path: a suggestion call degrades in precision but never aborts.
*/
package suggest

import (
	"fmt"
	"strings"

	"hsnserve/pkg/catalog"
	"hsnserve/pkg/index"

	"github.com/charmbracelet/log"
)

// DefaultMinSimilarity is the score floor for vector-path candidates.
const DefaultMinSimilarity = 0.1

// keywordScore is the fixed similarity assigned to keyword-path matches,
// equal to the vector floor so they always rank at the bottom.
const keywordScore = 0.1

// Confidence buckets a continuous similarity score for human consumption.
type Confidence string

const (
	ConfidenceHigh    Confidence = "High"
	ConfidenceMedium  Confidence = "Medium"
	ConfidenceLow     Confidence = "Low"
	ConfidenceVeryLow Confidence = "Very Low"
)

// MatchMethod records which retrieval path produced a suggestion.
type MatchMethod string

const (
	MethodVector  MatchMethod = "vector_similarity"
	MethodKeyword MatchMethod = "keyword_fallback"
)

// Suggestion is one ranked catalog candidate for a query.
type Suggestion struct {
	Code        string
	Description string
	Score       float64
	Confidence  Confidence
	Method      MatchMethod
}

// Explanation pairs suggestions with the query terms that drove the
// vector-path ranking.
type Explanation struct {
	Query       string
	Suggestions []Suggestion
	KeyTerms    []string
	Methods     []MatchMethod
}

// Engine composes the similarity index with catalog-backed keyword search.
type Engine struct {
	cat           *catalog.Catalog
	idx           *index.Index
	minSimilarity float64
}

// NewEngine creates an engine over a catalog and an index built from that
// catalog's descriptions (document i must correspond to entry i).
func NewEngine(cat *catalog.Catalog, idx *index.Index) *Engine {
	return &Engine{cat: cat, idx: idx, minSimilarity: DefaultMinSimilarity}
}

// SetMinSimilarity updates the vector-path score floor.
func (e *Engine) SetMinSimilarity(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("similarity threshold %v outside [0, 1]", v)
	}
	e.minSimilarity = v
	return nil
}

// Suggest returns up to topK catalog entries ranked by similarity to the
// query. An empty or whitespace-only query returns nil. Results contain no
// duplicate codes and are ordered by descending score, vector matches before
// keyword fallbacks.
func (e *Engine) Suggest(query string, topK int) []Suggestion {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK < 1 {
		topK = 1
	}

	hits, err := e.idx.Query(query)
	if err != nil {
		// Availability over precision: the vector path is gone, substring
		// search over the whole query is the last resort.
		log.Warnf("Vector query failed, using keyword fallback: %v", err)
		return e.keywordMatches(strings.TrimSpace(query), topK, nil)
	}

	suggestions := make([]Suggestion, 0, topK)
	seen := make(map[string]bool)
	for _, h := range hits {
		if h.Score < e.minSimilarity {
			break
		}
		entry := e.cat.Entry(h.Doc)
		if seen[entry.Code] {
			continue
		}
		seen[entry.Code] = true
		suggestions = append(suggestions, Suggestion{
			Code:        entry.Code,
			Description: entry.Description,
			Score:       h.Score,
			Confidence:  ConfidenceFor(h.Score),
			Method:      MethodVector,
		})
		if len(suggestions) >= topK {
			break
		}
	}

	if len(suggestions) < topK {
		for _, token := range keywordTokens(query) {
			suggestions = e.appendKeywordMatches(suggestions, token, topK, seen)
			if len(suggestions) >= topK {
				break
			}
		}
	}

	if len(suggestions) > topK {
		suggestions = suggestions[:topK]
	}
	return suggestions
}

// SuggestWithExplanation runs Suggest and additionally reports the
// top-weighted query terms and the set of retrieval methods used.
func (e *Engine) SuggestWithExplanation(query string, topK int) Explanation {
	suggestions := e.Suggest(query, topK)

	var methods []MatchMethod
	seen := make(map[MatchMethod]bool)
	for _, s := range suggestions {
		if !seen[s.Method] {
			seen[s.Method] = true
			methods = append(methods, s.Method)
		}
	}

	return Explanation{
		Query:       query,
		Suggestions: suggestions,
		KeyTerms:    e.idx.QueryTerms(query, 10),
		Methods:     methods,
	}
}

// ConfidenceFor maps a similarity score to its confidence bucket.
func ConfidenceFor(score float64) Confidence {
	switch {
	case score >= 0.7:
		return ConfidenceHigh
	case score >= 0.4:
		return ConfidenceMedium
	case score >= 0.2:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// keywordTokens splits a query into its fallback search tokens: whitespace
// separated, lowercased, tokens of length <= 2 dropped.
func keywordTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// keywordMatches performs the whole-query substring fallback used when the
// vector path is unavailable.
func (e *Engine) keywordMatches(query string, topK int, seen map[string]bool) []Suggestion {
	if seen == nil {
		seen = make(map[string]bool)
	}
	return e.appendKeywordMatches(make([]Suggestion, 0, topK), query, topK, seen)
}

// appendKeywordMatches appends catalog entries whose description contains
// needle (case-insensitive) until topK results are collected, skipping codes
// already present.
func (e *Engine) appendKeywordMatches(suggestions []Suggestion, needle string, topK int, seen map[string]bool) []Suggestion {
	for _, entry := range e.cat.SearchDescriptions(needle, 0) {
		if seen[entry.Code] {
			continue
		}
		seen[entry.Code] = true
		suggestions = append(suggestions, Suggestion{
			Code:        entry.Code,
			Description: entry.Description,
			Score:       keywordScore,
			Confidence:  ConfidenceLow,
			Method:      MethodKeyword,
		})
		if len(suggestions) >= topK {
			break
		}
	}
	return suggestions
}
