package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesuggest/internal/adapters/http/dto"
	"quotesuggest/internal/adapters/http/handlers"
	"quotesuggest/internal/domain"
	"quotesuggest/internal/platform/config"
	"quotesuggest/internal/ports"
)

type fixedService struct {
	quotes []domain.Quote
}

func (s *fixedService) GetQuotes(context.Context, []string, []string, int, int) ([]domain.Quote, error) {
	return s.quotes, nil
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := gin.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := ports.NewHealthRegistry()
	health := handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now"))
	suggestions := handlers.NewSuggestionsHandler(&fixedService{
		quotes: []domain.Quote{{Text: "Works end to end", Author: "Router"}},
	}, 5, 100)

	SetupRouter(engine, RouterConfig{
		Logger:             logger,
		AppConfig:          &config.AppConfig{Name: "quote-suggestions", Version: "test", Environment: "test"},
		HealthHandler:      health,
		SuggestionsHandler: suggestions,
		Timeout:            time.Second,
	})

	return engine
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec
}

func TestRouter_SuggestionsRoute(t *testing.T) {
	rec := get(newEngine(t), "/api/v1/suggestions?keywords=anything")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Works end to end")
}

func TestRouter_UnknownPathEnvelope(t *testing.T) {
	rec := get(newEngine(t), "/api/v1/nope")

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Not found", resp.Error.Message)
}

func TestRouter_HealthRoutes(t *testing.T) {
	engine := newEngine(t)

	assert.Equal(t, http.StatusOK, get(engine, "/-/live").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/-/ready").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/-/build").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/-/metrics").Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	rec := get(newEngine(t), "/-/live")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
