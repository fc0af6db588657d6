package dto

import "quotesuggest/internal/domain"

// QuoteResponse is a single suggested quote in API responses. Description is
// null rather than omitted when a quote carries no attribution context.
type QuoteResponse struct {
	Quote       string  `json:"quote"`
	Author      string  `json:"author"`
	Description *string `json:"description"`
}

// NewQuoteResponses maps domain quotes into their response form. The result
// is never nil so an empty page serializes as [] instead of null.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = QuoteResponse{
			Quote:  q.Text,
			Author: q.Author,
		}

		if q.Description != "" {
			desc := q.Description
			out[i].Description = &desc
		}
	}

	return out
}
