//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesuggest/internal/adapters/cache"
	"quotesuggest/internal/adapters/clients"
	"quotesuggest/internal/adapters/clients/brainyquote"
	"quotesuggest/internal/adapters/clients/wikiquote"
	apphttp "quotesuggest/internal/adapters/http"
	"quotesuggest/internal/adapters/http/handlers"
	"quotesuggest/internal/app"
	"quotesuggest/internal/platform/config"
	"quotesuggest/internal/ports"
)

// allowList is a NameClassifier double backed by a fixed set of names.
type allowList map[string]bool

func (a allowList) IsPerson(phrase string) bool { return a[phrase] }

// wikiPage wraps list markup in the structure the live API returns.
func wikiPage(inner string) string {
	return `<div class="mw-parser-output">` +
		`<h2><span class="mw-headline">Quotes</span></h2>` +
		inner +
		`</div>`
}

func brainyCard(text, author string) string {
	return `<div class="clearfix">` +
		`<a title="view quote" href="/quotes/q1">` + text + `</a>` +
		`<a title="view author" href="/authors/a1">` + author + `</a>` +
		`</div>`
}

// stack is a fully wired service running against fake upstreams and an
// in-process Redis.
type stack struct {
	engine     *gin.Engine
	wikiHits   atomic.Int32
	brainyHits atomic.Int32
	redis      *miniredis.Miniredis
}

// newStack wires the whole service the way main does, with httptest servers
// standing in for the quote sources.
func newStack(t *testing.T, wikiPages, brainyRoutes map[string]string, persons allowList) *stack {
	t.Helper()

	s := &stack{}

	wikiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.wikiHits.Add(1)

		page := r.URL.Query().Get("page")

		w.Header().Set("Content-Type", "application/json")

		body, ok := wikiPages[page]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "missingtitle", "info": "The page you specified doesn't exist."},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"parse": map[string]any{
				"title": page,
				"text":  map[string]string{"*": body},
			},
		})
	}))
	t.Cleanup(wikiSrv.Close)

	brainySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.brainyHits.Add(1)

		body, ok := brainyRoutes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(brainySrv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newFetcher := func(name string) *clients.Fetcher {
		fetcher, err := clients.New(&clients.Config{
			ServiceName: name,
			Timeout:     5 * time.Second,
			Logger:      logger,
		})
		require.NoError(t, err)

		return fetcher
	}

	sources := []ports.SourceClient{
		wikiquote.New(wikiquote.Config{
			Fetcher:    newFetcher("wikiquote"),
			APIURL:     wikiSrv.URL,
			Classifier: persons,
			Logger:     logger,
		}),
		brainyquote.New(brainyquote.Config{
			Fetcher:    newFetcher("brainyquote"),
			BaseURL:    brainySrv.URL,
			Classifier: persons,
			Logger:     logger,
		}),
	}

	s.redis = miniredis.RunT(t)
	resultCache := cache.NewRedisWithClient(
		redis.NewClient(&redis.Options{Addr: s.redis.Addr()}),
		time.Minute,
	)

	suggester := app.NewSuggester(app.SuggesterConfig{
		Clients: sources,
		Cache:   resultCache,
		Ranker:  app.NewRanker(app.EnglishStopWords),
		Logger:  logger,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(resultCache))

	gin.SetMode(gin.TestMode)
	s.engine = gin.New()

	apphttp.SetupRouter(s.engine, apphttp.RouterConfig{
		Logger:             logger,
		AppConfig:          &config.AppConfig{Name: "quote-suggestions", Version: "test", Environment: "test"},
		HealthHandler:      handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		SuggestionsHandler: handlers.NewSuggestionsHandler(suggester, 5, 100),
		Timeout:            10 * time.Second,
	})

	return s
}

func (s *stack) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	return rec
}

func decodeQuotes(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestService_AuthorQueryEndToEnd(t *testing.T) {
	s := newStack(t,
		map[string]string{
			"Mark Twain": wikiPage(`<ul>` +
				`<li>The secret of getting ahead is getting started.</li>` +
				`<li>When in doubt, tell the truth.</li>` +
				`</ul>`),
		},
		map[string]string{
			"/authors/mark-twain": brainyCard("Kindness is a language everyone understands.", "Mark Twain"),
		},
		allowList{"Mark Twain": true},
	)

	rec := s.get(t, "/api/v1/suggestions?authors=Mark+Twain&limit=10")

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeQuotes(t, rec)
	require.Len(t, body, 3)

	for _, q := range body {
		assert.Equal(t, "Mark Twain", q["author"])
	}
}

func TestService_SecondRequestServedFromCache(t *testing.T) {
	s := newStack(t,
		map[string]string{
			"Mark Twain": wikiPage(`<ul><li>When in doubt, tell the truth.</li></ul>`),
		},
		map[string]string{
			"/authors/mark-twain": brainyCard("Kindness is a language everyone understands.", "Mark Twain"),
		},
		allowList{"Mark Twain": true},
	)

	first := s.get(t, "/api/v1/suggestions?authors=Mark+Twain")
	require.Equal(t, http.StatusOK, first.Code)

	wikiHits := s.wikiHits.Load()
	brainyHits := s.brainyHits.Load()

	second := s.get(t, "/api/v1/suggestions?authors=Mark+Twain")
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, wikiHits, s.wikiHits.Load(), "sources must not be fetched on a cache hit")
	assert.Equal(t, brainyHits, s.brainyHits.Load())
}

func TestService_PagingOverCachedResults(t *testing.T) {
	s := newStack(t,
		map[string]string{
			"Mark Twain": wikiPage(`<ul>` +
				`<li>Quote alpha.</li>` +
				`<li>Quote bravo.</li>` +
				`<li>Quote charlie.</li>` +
				`</ul>`),
		},
		nil,
		allowList{"Mark Twain": true},
	)

	// Warm the cache with all three quotes.
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/suggestions?authors=Mark+Twain&limit=10").Code)

	// A window inside the stored sequence is a proper slice.
	page := decodeQuotes(t, s.get(t, "/api/v1/suggestions?authors=Mark+Twain&limit=1&offset=1"))
	assert.Len(t, page, 1)

	// A window reaching past the end falls back to the full sequence.
	full := decodeQuotes(t, s.get(t, "/api/v1/suggestions?authors=Mark+Twain&limit=2&offset=2"))
	assert.Len(t, full, 3)
}

func TestService_FailedSourceContributesNothing(t *testing.T) {
	// No brainyquote routes, so its author page lookup fails. The
	// aggregation still serves what wikiquote returned.
	s := newStack(t,
		map[string]string{
			"Mark Twain": wikiPage(`<ul><li>When in doubt, tell the truth.</li></ul>`),
		},
		nil,
		allowList{"Mark Twain": true},
	)

	rec := s.get(t, "/api/v1/suggestions?authors=Mark+Twain")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeQuotes(t, rec), 1)
}

func TestService_CacheDownIsServiceUnavailable(t *testing.T) {
	s := newStack(t, nil, nil, allowList{})
	s.redis.Close()

	rec := s.get(t, "/api/v1/suggestions?keywords=courage")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestService_TTLRefreshOnRead(t *testing.T) {
	s := newStack(t,
		map[string]string{
			"Mark Twain": wikiPage(`<ul><li>When in doubt, tell the truth.</li></ul>`),
		},
		nil,
		allowList{"Mark Twain": true},
	)

	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/suggestions?authors=Mark+Twain").Code)

	// Nearly expire the entry, then read it. The read must reset the clock.
	s.redis.FastForward(50 * time.Second)
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/suggestions?authors=Mark+Twain").Code)

	s.redis.FastForward(50 * time.Second)

	wikiHits := s.wikiHits.Load()
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/suggestions?authors=Mark+Twain").Code)
	assert.Equal(t, wikiHits, s.wikiHits.Load(), "entry should still be cached after the refresh")
}
