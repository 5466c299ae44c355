package index

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

var corpus = []string{
	"Live animals",
	"Live horses, asses, mules and hinnies",
	"Pure-bred breeding horses",
	"Live bovine animals",
	"Pure-bred breeding bovine animals",
	"Live swine weighing less than 50 kg",
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input       string
		expected    []string
		description string
	}{
		{"Live horses, asses, mules and hinnies", []string{"live", "horses", "asses", "mules", "hinnies"}, "stop words and punctuation removed"},
		{"Pure-bred breeding horses", []string{"pure", "bred", "breeding", "horses"}, "hyphen splits tokens"},
		{"Café au lait", []string{"cafe", "au", "lait"}, "accents folded"},
		{"THE OF AND", nil, "all stop words yields nothing"},
		{"a x 7", nil, "single-rune tokens dropped"},
		{"weighing less than 50 kg", []string{"weighing", "less", "50", "kg"}, "digit runs kept"},
		{"", nil, "empty input"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Input %q: expected %v, got %v", tc.input, tc.expected, got)
			}
		})
	}
}

func TestExpandTerms(t *testing.T) {
	got := expandTerms([]string{"pure", "bred", "breeding"}, true)
	expected := []string{"pure", "bred", "breeding", "pure bred", "bred breeding"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// Bigrams off returns the token stream untouched.
	unigrams := expandTerms([]string{"pure", "bred"}, false)
	if !reflect.DeepEqual(unigrams, []string{"pure", "bred"}) {
		t.Errorf("Expected unigrams only, got %v", unigrams)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	for _, docs := range [][]string{nil, {}, {"", "   "}} {
		if _, err := Build(docs, DefaultOptions()); !errors.Is(err, ErrEmptyCorpus) {
			t.Errorf("Docs %v: expected ErrEmptyCorpus, got %v", docs, err)
		}
	}
}

func TestBuildEmptyVocabulary(t *testing.T) {
	// Every term appears in every document, so max_doc_ratio prunes them all.
	docs := []string{"frozen fish", "frozen fish"}
	if _, err := Build(docs, DefaultOptions()); !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("Expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestSelfSimilarityIsMaximal(t *testing.T) {
	ix, err := Build(corpus, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for doc, text := range corpus {
		hits, err := ix.Query(text)
		if err != nil {
			t.Fatalf("Query %q: %v", text, err)
		}
		if hits[0].Doc != doc {
			t.Errorf("Querying doc %d verbatim ranked doc %d first", doc, hits[0].Doc)
		}
		if hits[0].Score < 0.99 {
			t.Errorf("Self-similarity for doc %d is %f, want ~1", doc, hits[0].Score)
		}
		for _, h := range hits[1:] {
			if h.Score > hits[0].Score {
				t.Errorf("Doc %d outranked the verbatim query's own doc", h.Doc)
			}
		}
	}
}

func TestQueryReturnsAllDocsSorted(t *testing.T) {
	ix, err := Build(corpus, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hits, err := ix.Query("breeding horses")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != len(corpus) {
		t.Fatalf("Expected %d hits, got %d", len(corpus), len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("Hits not sorted by descending score at %d", i)
		}
		// Ties break by ascending document index.
		if hits[i].Score == hits[i-1].Score && hits[i].Doc < hits[i-1].Doc {
			t.Errorf("Tie at %d not broken by ascending doc index", i)
		}
	}
}

func TestEmptyQueryScoresZero(t *testing.T) {
	ix, err := Build(corpus, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, query := range []string{"", "   ", "the of and", "zzgremlin"} {
		hits, err := ix.Query(query)
		if err != nil {
			t.Fatalf("Query %q: %v", query, err)
		}
		for _, h := range hits {
			if h.Score != 0 {
				t.Errorf("Query %q: doc %d scored %f, want 0", query, h.Doc, h.Score)
			}
		}
		// All-zero scores keep load order.
		for i, h := range hits {
			if h.Doc != i {
				t.Errorf("Query %q: zero-score hits reordered at %d", query, i)
				break
			}
		}
	}
}

func TestTopK(t *testing.T) {
	ix, err := Build(corpus, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hits, err := ix.TopK("live animals", 2)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("Expected 2 hits, got %d", len(hits))
	}
}

func TestQueryTerms(t *testing.T) {
	ix, err := Build(corpus, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	terms := ix.QueryTerms("pure-bred breeding horses", 10)
	if len(terms) == 0 {
		t.Fatal("Expected key terms for an in-vocabulary query")
	}
	seen := make(map[string]bool)
	for _, term := range terms {
		if seen[term] {
			t.Errorf("Duplicate key term %q", term)
		}
		seen[term] = true
	}
	if !seen["breeding"] {
		t.Errorf("Expected 'breeding' among key terms, got %v", terms)
	}

	if terms := ix.QueryTerms("the of and", 10); terms != nil {
		t.Errorf("Stop-word query should have no key terms, got %v", terms)
	}
}

func TestMaxFeaturesCap(t *testing.T) {
	ix, err := Build(corpus, Options{MaxFeatures: 3, MinDocFreq: 1, MaxDocRatio: 0.95, Bigrams: false})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.VocabSize() != 3 {
		t.Errorf("Expected vocabulary capped at 3, got %d", ix.VocabSize())
	}
}

func BenchmarkQuery(b *testing.B) {
	docs := make([]string, 1000)
	for i := range docs {
		docs[i] = fmt.Sprintf("product variant %d packaged goods category %d", i, i%37)
	}
	ix, err := Build(docs, DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		queries := []string{"packaged goods", "product variant 99", "category 12 goods"}
		if _, err := ix.Query(queries[i%len(queries)]); err != nil {
			b.Fatal(err)
		}
	}
}
