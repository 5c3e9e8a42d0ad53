// Package relevance scores how well a chunk of text matches a query using
// lexical overlap only. Synonyms and paraphrases score zero.
//
// All functions are pure and safe for concurrent use.
package relevance

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTermLength is the minimum length, in characters, of a query term.
const MinTermLength = 3

const (
	exactMatchWeight   = 2.0
	partialMatchWeight = 0.5
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "must": {}, "can": {},
	"of": {}, "at": {}, "by": {}, "for": {}, "with": {}, "about": {}, "against": {}, "between": {},
	"into": {}, "through": {}, "during": {}, "before": {}, "after": {}, "above": {}, "below": {},
	"to": {}, "from": {}, "up": {}, "down": {}, "in": {}, "out": {}, "on": {}, "off": {}, "over": {}, "under": {},
}

// IsStopWord reports whether a lower-case word is ignored in queries.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Tokenize returns the lower-case word tokens of text in order.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// QueryTerms returns the query tokens that survive stop-word and length filtering.
// Repeated terms are kept so they weigh more.
func QueryTerms(query string) []string {
	tokens := Tokenize(query)
	terms := tokens[:0]
	for _, tok := range tokens {
		if IsStopWord(tok) || utf8.RuneCountInString(tok) < MinTermLength {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// Score returns the relevance of chunkText to query in [0, 1].
func Score(query, chunkText string) float64 {
	return ScoreTokens(QueryTerms(query), Tokenize(chunkText))
}

// ScoreTokens scores pre-tokenized input. terms must come from QueryTerms and
// chunkTokens from Tokenize.
//
// Each term adds 2 per exact occurrence in the chunk plus 0.5 per chunk token
// that contains the term or is contained in it. The sum is divided by
// terms × chunk tokens / 100 and clamped to [0, 1].
func ScoreTokens(terms, chunkTokens []string) float64 {
	if len(terms) == 0 || len(chunkTokens) == 0 {
		return 0
	}

	freq := make(map[string]int, len(chunkTokens))
	for _, tok := range chunkTokens {
		freq[tok]++
	}

	var score float64
	for _, term := range terms {
		score += float64(freq[term]) * exactMatchWeight
		for _, tok := range chunkTokens {
			if strings.Contains(tok, term) || strings.Contains(term, tok) {
				score += partialMatchWeight
			}
		}
	}

	score /= float64(len(terms)) * (float64(len(chunkTokens)) / 100)

	switch {
	case score > 1:
		return 1
	case score < 0:
		return 0
	}
	return score
}

// Scorer scores many chunks against one query without re-tokenizing the query.
type Scorer struct {
	terms []string
}

// NewScorer prepares a scorer for query.
func NewScorer(query string) *Scorer {
	return &Scorer{terms: QueryTerms(query)}
}

// Terms returns the surviving query terms.
func (s *Scorer) Terms() []string {
	return s.terms
}

// Score returns the relevance of chunkText to the prepared query.
func (s *Scorer) Score(chunkText string) float64 {
	return ScoreTokens(s.terms, Tokenize(chunkText))
}
