// Package domain contains core business entities and rules.
package domain

import "strings"

// Quote is a normalized quotation from one of the external sources.
// It is a value object: once constructed it is never mutated, and identity
// is content-based (see IdentityKey), not structural.
type Quote struct {
	// Text is the quote itself.
	Text string

	// Author is who said or wrote the quote.
	Author string

	// Description is optional trailing context from the source page,
	// e.g. the work the quote appeared in. Empty when the source had none.
	Description string
}

// NewQuote normalizes raw scraped text and constructs a Quote.
// Leading newlines and trailing newlines, em-dashes, and spaces are trimmed
// from both text and description. Returns a validation error when the text
// reduces to the empty string; callers discard such input rather than
// propagating the error.
func NewQuote(rawText, rawAuthor, rawDescription string) (Quote, error) {
	text := prettify(rawText)
	if text == "" {
		return Quote{}, NewValidationError("text", "empty after normalization")
	}

	return Quote{
		Text:        text,
		Author:      rawAuthor,
		Description: prettify(rawDescription),
	}, nil
}

// IdentityKey returns the dedup key for this quote: the lower-cased
// text+author concatenation with every non-ASCII-letter stripped. Two quotes
// with equal keys are interchangeable even when their punctuation, casing,
// or whitespace differ between sources.
func (q Quote) IdentityKey() string {
	return LowerLetters(q.Text + q.Author)
}

// Dedup collapses quotes with equal identity keys, keeping the first
// occurrence. The input slice is not modified.
func Dedup(quotes []Quote) []Quote {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		key := q.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, q)
	}

	return out
}

// QueryKey derives the cache key for a suggestions query: all author and
// keyword strings concatenated in caller order, lower-cased, non-letters
// stripped.
//
// Known gap: the key ignores whether a string was an author or a keyword,
// so two semantically different queries that concatenate to the same letter
// sequence collide. Kept deliberately for compatibility; a structured key
// with role tags would close it.
func QueryKey(authors, keywords []string) string {
	var b strings.Builder
	for _, a := range authors {
		b.WriteString(a)
	}
	for _, k := range keywords {
		b.WriteString(k)
	}

	return LowerLetters(b.String())
}

// LowerLetters lower-cases s and strips every rune that is not an ASCII letter.
func LowerLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// prettify trims the noise the sources leave around extracted strings:
// leading newlines, then any run of trailing newlines, em-dashes, and spaces.
func prettify(s string) string {
	s = strings.TrimLeft(s, "\n")
	return strings.TrimRight(s, "\n— ")
}
