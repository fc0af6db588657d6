// Package wikiquote implements a quote source backed by the Wikiquote
// MediaWiki API. Pages are fetched pre-rendered through action=parse and the
// quote lists are extracted from the returned HTML.
package wikiquote

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quotesuggest/internal/adapters/clients"
	"quotesuggest/internal/domain"
	"quotesuggest/internal/platform/logging"
	"quotesuggest/internal/platform/parallel"
	"quotesuggest/internal/ports"
)

// Client fetches quotes from Wikiquote author pages. Wikiquote is organized
// by person, so only the authors part of a query is used; keywords are
// ignored here and left to sources that can search by topic.
type Client struct {
	fetcher    *clients.Fetcher
	apiURL     string
	classifier ports.NameClassifier
	logger     *slog.Logger
}

// Config contains the Wikiquote client settings.
type Config struct {
	Fetcher    *clients.Fetcher
	APIURL     string
	Classifier ports.NameClassifier
	Logger     *slog.Logger
}

// New creates a Wikiquote source client.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		fetcher:    cfg.Fetcher,
		apiURL:     cfg.APIURL,
		classifier: cfg.Classifier,
		logger:     logger.With(slog.String("component", "wikiquote.Client")),
	}
}

// Name implements ports.SourceClient.
func (c *Client) Name() string {
	return "wikiquote"
}

// GetQuotes implements ports.SourceClient. Authors are looked up
// concurrently; each resolves to at most one page. Pages the API reports an
// error for contribute nothing, pages whose title the classifier rejects as a
// non-person are skipped wholesale, and a fetch or parse failure for one
// author is logged and absorbed so the remaining authors' quotes survive.
func (c *Client) GetQuotes(ctx context.Context, authors, keywords []string) ([]domain.Quote, error) {
	if len(authors) == 0 && len(keywords) == 0 {
		return nil, domain.NewInvalidArgumentError("at least one of authors or keywords is required")
	}

	if len(authors) == 0 {
		return nil, nil
	}

	fns := make([]func(context.Context) ([]domain.Quote, error), len(authors))
	for i, author := range authors {
		fns[i] = func(ctx context.Context) ([]domain.Quote, error) {
			return c.quotesFor(ctx, author)
		}
	}

	var quotes []domain.Quote

	for i, res := range parallel.PartialLimit(ctx, len(authors), fns...) {
		if res.Err != nil {
			c.logger.WarnContext(ctx, "author lookup failed",
				slog.String("author", authors[i]),
				slog.Any("error", res.Err),
			)

			continue
		}

		quotes = append(quotes, res.Value...)
	}

	return quotes, nil
}

// quotesFor fetches and parses one author's page.
func (c *Client) quotesFor(ctx context.Context, author string) ([]domain.Quote, error) {
	title, page, err := c.fetchPage(ctx, author)
	if err != nil {
		return nil, err
	}

	if page == "" {
		logging.FromContext(ctx).DebugContext(ctx, "no wikiquote page",
			slog.String("author", author),
		)

		return nil, nil
	}

	parsed, err := parsePage(title, page, c.classifier)
	if err != nil {
		return nil, fmt.Errorf("parsing page %q: %w", title, err)
	}

	return parsed, nil
}

// parseResponse is the action=parse API envelope.
type parseResponse struct {
	Error *apiError  `json:"error"`
	Parse *parseData `json:"parse"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type parseData struct {
	Title string            `json:"title"`
	Text  map[string]string `json:"text"`
}

// html returns the rendered page body, keyed "*" in the API response.
func (d *parseData) html() string {
	return d.Text["*"]
}

// fetchPage resolves a page by name, following at most one redirect. A page
// the API cannot find yields empty results rather than an error.
func (c *Client) fetchPage(ctx context.Context, page string) (title, body string, err error) {
	resp, err := c.fetch(ctx, page)
	if err != nil {
		return "", "", err
	}

	if resp.Error != nil || resp.Parse == nil {
		return "", "", nil
	}

	if strings.Contains(resp.Parse.html(), "redirectMsg") {
		target, err := redirectTarget(resp.Parse.html())
		if err != nil {
			return "", "", fmt.Errorf("resolving redirect for %q: %w", page, err)
		}

		resp, err = c.fetch(ctx, target)
		if err != nil {
			return "", "", err
		}

		if resp.Error != nil || resp.Parse == nil {
			return "", "", nil
		}

		// One hop only. A redirect landing on another redirect is broken
		// page data, not something to chase.
		if strings.Contains(resp.Parse.html(), "redirectMsg") {
			return "", "", fmt.Errorf("redirect chain for %q exceeds one hop", page)
		}
	}

	return resp.Parse.Title, resp.Parse.html(), nil
}

func (c *Client) fetch(ctx context.Context, page string) (*parseResponse, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("format", "json")
	params.Set("page", page)

	var resp parseResponse

	err := c.fetcher.GetJSON(ctx, c.apiURL+"?"+params.Encode(), &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// redirectTarget extracts the destination page name from a redirect stub: the
// last path segment of the first link, URL-unescaped.
func redirectTarget(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	href, ok := doc.Find("a").First().Attr("href")
	if !ok {
		return "", fmt.Errorf("redirect stub has no link")
	}

	segments := strings.Split(href, "/")

	target, err := url.PathUnescape(segments[len(segments)-1])
	if err != nil {
		return "", fmt.Errorf("unescaping redirect target %q: %w", href, err)
	}

	return target, nil
}
