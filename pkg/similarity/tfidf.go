// Package similarity scores free text against a corpus with TF-IDF cosine
// similarity.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// TFIDF implements a bag-of-words TF-IDF cosine scorer. The zero value is
// ready to use.
type TFIDF struct {
	// StopWords are ignored when tokenizing. Nil uses DefaultStopWords.
	StopWords map[string]struct{}
}

// DefaultStopWords are dropped from course names and descriptions.
var DefaultStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "for": {}, "in": {}, "introduction": {}, "intro": {},
	"of": {}, "on": {}, "the": {}, "to": {}, "with": {}, "i": {}, "ii": {}, "iii": {},
}

// NewTFIDF builds a scorer with the default stop words.
func NewTFIDF() *TFIDF {
	return &TFIDF{StopWords: DefaultStopWords}
}

// Score returns the highest cosine similarity between text and any corpus
// entry, in [0,1]. Document frequencies are taken over text plus corpus.
func (s *TFIDF) Score(text string, corpus []string) float64 {
	query := s.tokenize(text)
	if len(query) == 0 || len(corpus) == 0 {
		return 0
	}
	docs := make([][]string, 0, len(corpus))
	for _, c := range corpus {
		docs = append(docs, s.tokenize(c))
	}

	df := make(map[string]int)
	for _, doc := range append([][]string{query}, docs...) {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	n := float64(len(docs) + 1)
	idf := func(tok string) float64 {
		return math.Log(1+n/float64(df[tok])) + 1
	}

	qv := weigh(query, idf)
	best := 0.0
	for _, doc := range docs {
		if sim := cosine(qv, weigh(doc, idf)); sim > best {
			best = sim
		}
	}
	return math.Min(1, best)
}

func (s *TFIDF) tokenize(text string) []string {
	stop := s.StopWords
	if stop == nil {
		stop = DefaultStopWords
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, skip := stop[f]; skip || len(f) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func weigh(tokens []string, idf func(string) float64) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for tok, count := range tf {
		tf[tok] = count / float64(len(tokens)) * idf(tok)
	}
	return tf
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for tok, wa := range a {
		na += wa * wa
		if wb, ok := b[tok]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		nb += wb * wb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
