// Package brainyquote implements a quote source that scrapes the BrainyQuote
// website. There is no API, so quotes are pulled out of the listing pages for
// an author or topic, following the on-page pagination.
package brainyquote

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quotesuggest/internal/adapters/clients"
	"quotesuggest/internal/domain"
	"quotesuggest/internal/platform/parallel"
	"quotesuggest/internal/ports"
)

// Client fetches quotes from BrainyQuote author and topic pages. Unlike
// Wikiquote it can search by keyword, and a keyword that names a person is
// routed to that person's topic page instead of a plain topic lookup.
type Client struct {
	fetcher    *clients.Fetcher
	baseURL    string
	classifier ports.NameClassifier
	logger     *slog.Logger
}

// Config contains the BrainyQuote client settings.
type Config struct {
	Fetcher    *clients.Fetcher
	BaseURL    string
	Classifier ports.NameClassifier
	Logger     *slog.Logger
}

// New creates a BrainyQuote source client.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		fetcher:    cfg.Fetcher,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		classifier: cfg.Classifier,
		logger:     logger.With(slog.String("component", "brainyquote.Client")),
	}
}

// Name implements ports.SourceClient.
func (c *Client) Name() string {
	return "brainyquote"
}

// GetQuotes implements ports.SourceClient. Authors take precedence: keywords
// are only consulted when the query names no authors.
func (c *Client) GetQuotes(ctx context.Context, authors, keywords []string) ([]domain.Quote, error) {
	switch {
	case len(authors) > 0:
		return c.lookupAll(ctx, authors, func(author string) string {
			return c.baseURL + "/authors/" + slugify(author)
		}), nil
	case len(keywords) > 0:
		return c.lookupAll(ctx, keywords, func(keyword string) string {
			return c.baseURL + "/topics/" + c.keywordSlug(keyword)
		}), nil
	default:
		return nil, domain.NewInvalidArgumentError("at least one of authors or keywords is required")
	}
}

// lookupAll scrapes the listing for every term concurrently. A failed lookup
// is logged and contributes nothing; a misspelled author is routine input,
// not a reason to drop the other terms' quotes.
func (c *Client) lookupAll(ctx context.Context, terms []string, urlFor func(string) string) []domain.Quote {
	fns := make([]func(context.Context) ([]domain.Quote, error), len(terms))
	for i, term := range terms {
		fns[i] = func(ctx context.Context) ([]domain.Quote, error) {
			return c.scrape(ctx, urlFor(term))
		}
	}

	var quotes []domain.Quote

	for i, res := range parallel.PartialLimit(ctx, len(terms), fns...) {
		if res.Err != nil {
			c.logger.WarnContext(ctx, "listing lookup failed",
				slog.String("term", terms[i]),
				slog.Any("error", res.Err),
			)

			continue
		}

		quotes = append(quotes, res.Value...)
	}

	return quotes
}

// keywordSlug converts a keyword into its topic page slug. Keywords naming a
// person, like "about Einstein", point at the person's topic page once the
// filler word is dropped.
func (c *Client) keywordSlug(keyword string) string {
	if c.classifier.IsPerson(keyword) {
		return slugify(strings.ReplaceAll(strings.ToLower(keyword), "about", ""))
	}

	return slugify(keyword)
}

// scrape fetches every page of a listing and extracts its quotes.
func (c *Client) scrape(ctx context.Context, url string) ([]domain.Quote, error) {
	pages, err := c.fetchPaginated(ctx, url)
	if err != nil {
		return nil, err
	}

	var quotes []domain.Quote
	for _, page := range pages {
		quotes = append(quotes, parseQuotes(page)...)
	}

	return quotes, nil
}

// fetchPaginated fetches the first page, then every page its pagination bar
// links to. The bar's last link is "Next", which duplicates one of the
// numbered links, so it is dropped.
func (c *Client) fetchPaginated(ctx context.Context, url string) ([]*goquery.Document, error) {
	first, err := c.fetcher.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	pages := []*goquery.Document{first}

	var paths []string
	first.Find("ul.pagination a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			paths = append(paths, href)
		}
	})

	if len(paths) == 0 {
		return pages, nil
	}

	for _, path := range paths[:len(paths)-1] {
		page, err := c.fetcher.GetDocument(ctx, c.baseURL+path)
		if err != nil {
			// A dead pagination page yields zero quotes from that page;
			// the rest of the listing still counts.
			c.logger.WarnContext(ctx, "pagination page fetch failed",
				slog.String("path", path),
				slog.Any("error", err),
			)

			continue
		}

		pages = append(pages, page)
	}

	return pages, nil
}

// parseQuotes extracts the quotes from a listing page. Each quote card is a
// clearfix div holding a quote link and an author link; cards missing either
// are ads or teasers and are skipped.
func parseQuotes(doc *goquery.Document) []domain.Quote {
	var quotes []domain.Quote

	doc.Find("div.clearfix").Each(func(_ int, card *goquery.Selection) {
		text := card.Find(`a[title="view quote"]`).First().Text()
		author := card.Find(`a[title="view author"]`).First().Text()

		if text == "" || author == "" {
			return
		}

		quote, err := domain.NewQuote(text, author, "")
		if err != nil {
			return
		}

		quotes = append(quotes, quote)
	})

	return quotes
}

// slugify converts a display name into the lowercase dash-joined form used
// in BrainyQuote URLs.
func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
