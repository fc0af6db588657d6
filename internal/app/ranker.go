package app

import (
	"sort"
	"strings"
	"unicode"

	"quotesuggest/internal/domain"
)

// Ranker orders a deduplicated quote set by relevance to the requested
// keywords. Scoring is a token-overlap count: every keyword phrase is split
// into words forming a flat vocabulary, and a quote scores one point per
// distinct non-stop-word token of its text that appears in the vocabulary.
type Ranker struct {
	stopWords map[string]struct{}
}

// NewRanker creates a ranker with the given stop-word list.
func NewRanker(stopWords []string) *Ranker {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[w] = struct{}{}
	}

	return &Ranker{stopWords: set}
}

// Rank returns a new ordered slice, score descending, ties broken by longer
// raw quote text first. The tie-break is a reproducibility device, not a
// semantic judgment: duplicate-collapsed sets from different sources must
// rank identically run to run. Equal score and length fall back to the
// identity key so the order is a total one. The input slice is not modified.
//
// With no keywords every quote scores zero and the ordering degenerates to
// pure length-descending.
func (r *Ranker) Rank(keywords []string, quotes []domain.Quote) []domain.Quote {
	vocab := make(map[string]struct{})
	for _, phrase := range keywords {
		for _, word := range strings.Fields(phrase) {
			vocab[word] = struct{}{}
		}
	}

	type scored struct {
		quote domain.Quote
		score int
	}

	ranked := make([]scored, len(quotes))
	for i, q := range quotes {
		ranked[i] = scored{quote: q, score: r.score(q.Text, vocab)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if len(ranked[i].quote.Text) != len(ranked[j].quote.Text) {
			return len(ranked[i].quote.Text) > len(ranked[j].quote.Text)
		}

		return ranked[i].quote.IdentityKey() < ranked[j].quote.IdentityKey()
	})

	out := make([]domain.Quote, len(ranked))
	for i, s := range ranked {
		out[i] = s.quote
	}

	return out
}

// score counts the quote's distinct non-stop-word tokens present in the
// vocabulary. Membership is case-sensitive; callers pass already-normalized
// keywords.
func (r *Ranker) score(text string, vocab map[string]struct{}) int {
	if len(vocab) == 0 {
		return 0
	}

	count := 0
	seen := make(map[string]struct{})

	for _, token := range tokenize(text) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		if _, stop := r.stopWords[token]; stop {
			continue
		}
		if _, ok := vocab[token]; ok {
			count++
		}
	}

	return count
}

// tokenize splits quote text into word tokens. Apostrophes stay inside
// tokens so contractions match the stop-word list.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}
