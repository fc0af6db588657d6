// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"quotesuggest/internal/domain"
	"quotesuggest/internal/platform/logging"
	"quotesuggest/internal/platform/parallel"
	"quotesuggest/internal/ports"
)

// Suggester is the aggregation orchestrator: it answers "give me quotes
// matching these authors/keywords" by serving from the result cache when
// possible and otherwise fanning out to every configured source client,
// deduplicating, ranking, and caching the full ranked set.
//
// One Suggester instance exists per process, constructed explicitly by the
// composition root and handed to the HTTP adapter; its clients, cache, and
// ranker are fixed at construction.
type Suggester struct {
	clients []ports.SourceClient
	cache   ports.QuoteCache
	ranker  *Ranker
	logger  *slog.Logger
}

// SuggesterConfig contains the dependencies for the suggester.
type SuggesterConfig struct {
	Clients []ports.SourceClient
	Cache   ports.QuoteCache
	Ranker  *Ranker
	Logger  *slog.Logger
}

// NewSuggester creates the orchestrator with the provided dependencies.
// Panics if Clients, Cache, or Ranker is missing. Defaults logger to
// slog.Default() if nil.
func NewSuggester(cfg SuggesterConfig) *Suggester {
	if len(cfg.Clients) == 0 {
		panic("Suggester: at least one SourceClient is required")
	}

	if cfg.Cache == nil {
		panic("Suggester: Cache is required")
	}

	if cfg.Ranker == nil {
		panic("Suggester: Ranker is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Suggester{
		clients: cfg.Clients,
		cache:   cfg.Cache,
		ranker:  cfg.Ranker,
		logger:  logger.With(slog.String("component", "app.Suggester")),
	}
}

// GetQuotes implements ports.SuggestionService.
//
// On a cache hit the stored ranked sequence serves the page directly. On a
// miss every source client is queried concurrently with the full query;
// individual client failures are absorbed (that source contributes nothing),
// the union is deduplicated by identity key, ranked against the keywords,
// stored wholesale under the derived key, and the page sliced in-process
// without a second cache read.
func (s *Suggester) GetQuotes(ctx context.Context, authors, keywords []string, limit, offset int) ([]domain.Quote, error) {
	if len(authors) == 0 && len(keywords) == 0 {
		return nil, domain.NewInvalidArgumentError("at least one of authors or keywords is required")
	}

	logger := logging.FromContext(ctx).With(
		slog.Int("authors", len(authors)),
		slog.Int("keywords", len(keywords)),
	)

	key := domain.QueryKey(authors, keywords)

	cached, err := s.cache.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checking cache: %w", err)
	}

	if cached {
		logger.DebugContext(ctx, "serving suggestions from cache")

		quotes, err := s.cache.Get(ctx, key, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}

		return quotes, nil
	}

	union := s.fetchAll(ctx, authors, keywords)
	ranked := s.ranker.Rank(keywords, domain.Dedup(union))

	err = s.cache.Put(ctx, key, ranked)
	if err != nil {
		return nil, fmt.Errorf("storing suggestions: %w", err)
	}

	logger.InfoContext(ctx, "aggregated suggestions",
		slog.Int("fetched", len(union)),
		slog.Int("ranked", len(ranked)),
	)

	return page(ranked, limit, offset), nil
}

// fetchAll queries every source client concurrently and unions the results.
// A failed client is logged and contributes nothing; the aggregation is
// best-effort, never all-or-nothing.
func (s *Suggester) fetchAll(ctx context.Context, authors, keywords []string) []domain.Quote {
	fns := make([]func(context.Context) ([]domain.Quote, error), len(s.clients))
	for i, client := range s.clients {
		fns[i] = func(ctx context.Context) ([]domain.Quote, error) {
			return client.GetQuotes(ctx, authors, keywords)
		}
	}

	results := parallel.Partial(ctx, fns...)

	var union []domain.Quote

	for i, res := range results {
		if res.Err != nil {
			s.logger.WarnContext(ctx, "source client failed",
				slog.String("source", s.clients[i].Name()),
				slog.Any("error", res.Err),
			)

			continue
		}

		union = append(union, res.Value...)
	}

	return union
}

// page slices [offset, offset+limit) out of quotes, clamped to the sequence
// bounds. Out-of-range offsets yield an empty page, not an error.
func page(quotes []domain.Quote, limit, offset int) []domain.Quote {
	if limit < 0 || offset < 0 || offset >= len(quotes) {
		return nil
	}

	end := offset + limit
	if end > len(quotes) {
		end = len(quotes)
	}

	return quotes[offset:end]
}
