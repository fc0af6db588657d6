package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesuggest/internal/adapters/http/dto"
	"quotesuggest/internal/domain"
)

// stubService records the arguments of its last invocation.
type stubService struct {
	quotes []domain.Quote
	err    error

	gotAuthors  []string
	gotKeywords []string
	gotLimit    int
	gotOffset   int
}

func (s *stubService) GetQuotes(_ context.Context, authors, keywords []string, limit, offset int) ([]domain.Quote, error) {
	s.gotAuthors = authors
	s.gotKeywords = keywords
	s.gotLimit = limit
	s.gotOffset = offset

	return s.quotes, s.err
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	h := NewSuggestionsHandler(svc, 5, 100)
	h.RegisterRoutes(engine.Group("/api/v1"))

	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec
}

func TestGetSuggestions_ParsesQuery(t *testing.T) {
	svc := &stubService{quotes: []domain.Quote{
		{Text: "Courage is grace under pressure", Author: "Ernest Hemingway"},
	}}
	engine := newTestRouter(svc)

	rec := doRequest(t, engine,
		"/api/v1/suggestions?authors=Mark+Twain,Ernest+Hemingway&keywords=courage&limit=2&offset=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Mark Twain", "Ernest Hemingway"}, svc.gotAuthors)
	assert.Equal(t, []string{"courage"}, svc.gotKeywords)
	assert.Equal(t, 2, svc.gotLimit)
	assert.Equal(t, 1, svc.gotOffset)
}

func TestGetSuggestions_Defaults(t *testing.T) {
	svc := &stubService{}
	engine := newTestRouter(svc)

	rec := doRequest(t, engine, "/api/v1/suggestions?keywords=courage")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.gotLimit)
	assert.Equal(t, 0, svc.gotOffset)
}

func TestGetSuggestions_ResponseBody(t *testing.T) {
	svc := &stubService{quotes: []domain.Quote{
		{Text: "With context", Author: "A", Description: "a speech"},
		{Text: "Without context", Author: "B"},
	}}
	engine := newTestRouter(svc)

	rec := doRequest(t, engine, "/api/v1/suggestions?keywords=context")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body, 2)
	assert.Equal(t, "With context", body[0]["quote"])
	assert.Equal(t, "a speech", body[0]["description"])
	assert.Equal(t, "B", body[1]["author"])

	// Absent description is an explicit null, not a missing key.
	val, present := body[1]["description"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestGetSuggestions_EmptyResultIsEmptyArray(t *testing.T) {
	engine := newTestRouter(&stubService{})

	rec := doRequest(t, engine, "/api/v1/suggestions?keywords=nothing")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestGetSuggestions_BadPaging(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "non-integer limit", target: "/api/v1/suggestions?keywords=x&limit=abc"},
		{name: "negative limit", target: "/api/v1/suggestions?keywords=x&limit=-1"},
		{name: "limit above max", target: "/api/v1/suggestions?keywords=x&limit=9999"},
		{name: "non-integer offset", target: "/api/v1/suggestions?keywords=x&offset=1.5"},
		{name: "negative offset", target: "/api/v1/suggestions?keywords=x&offset=-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			engine := newTestRouter(svc)

			rec := doRequest(t, engine, tt.target)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrorCodeBadRequest, resp.Error.Code)

			// The service must not run on invalid input.
			assert.Nil(t, svc.gotAuthors)
			assert.Nil(t, svc.gotKeywords)
		})
	}
}

func TestGetSuggestions_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty query",
			err:        domain.NewInvalidArgumentError("at least one of authors or keywords is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
		{
			name:       "cache down",
			err:        domain.NewUnavailableError("cache", "connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrorCodeUnavailable,
		},
		{
			name:       "unexpected",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrorCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestRouter(&stubService{err: tt.err})

			rec := doRequest(t, engine, "/api/v1/suggestions?keywords=x")

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
