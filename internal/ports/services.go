// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"quotesuggest/internal/domain"
)

// SourceClient fetches and parses quotes from one external quote-hosting site.
// Exactly one of authors/keywords is non-empty per call; the orchestrator
// enforces this at its boundary and implementations return
// domain.ErrInvalidArgument when both are empty.
//
// Implementations are best-effort: a network or parse failure for an
// individual author or keyword must not abort the whole call. The failed
// sub-lookup contributes an empty set and is logged, never raised. Failed
// page fetches are not retried.
type SourceClient interface {
	// Name identifies the source for logging and health checks.
	Name() string

	// GetQuotes retrieves quotes for the given author or keyword set.
	GetQuotes(ctx context.Context, authors, keywords []string) ([]domain.Quote, error)
}

// NameClassifier decides whether a phrase denotes a person.
// Implementations are pure and deterministic for a fixed model version.
type NameClassifier interface {
	IsPerson(phrase string) bool
}

// ClassifierRegistry resolves the classifier bound to a locale.
// Requesting a locale with no binding fails with domain.ErrUnsupportedLocale.
type ClassifierRegistry interface {
	ForLocale(locale domain.Locale) (NameClassifier, error)
}

// QuoteCache stores ranked result sets under a derived key with a TTL and
// serves paginated slices from them. The cache exclusively owns a stored
// sequence for its TTL lifetime; entries are replaced wholesale, never
// partially updated.
//
// Backing-store unavailability surfaces as domain.ErrUnavailable and is fatal
// for the request: recomputing from cold sources on every cache outage would
// hammer the scrape path, so there is no silent fallback.
type QuoteCache interface {
	// Exists reports whether the key holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores the full ordered sequence with the configured TTL,
	// replacing any prior value.
	Put(ctx context.Context, key string, quotes []domain.Quote) error

	// Get returns the slice [offset, offset+limit) of the stored sequence,
	// refreshing the entry's TTL as a side effect. An absent key yields an
	// empty slice and no error. When offset+limit exceeds the stored length
	// the entire stored sequence is returned (defined fallback, not an error).
	Get(ctx context.Context, key string, limit, offset int) ([]domain.Quote, error)

	// Reset clears all entries. Operational and test use only.
	Reset(ctx context.Context) error
}

// SuggestionService is the aggregation façade consumed by the HTTP adapter.
type SuggestionService interface {
	// GetQuotes returns the requested page of ranked quote suggestions for
	// the given authors and/or keywords. Fails with
	// domain.ErrInvalidArgument when both sets are empty.
	GetQuotes(ctx context.Context, authors, keywords []string, limit, offset int) ([]domain.Quote, error)
}
