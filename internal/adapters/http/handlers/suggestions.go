package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quotesuggest/internal/adapters/http/dto"
	"quotesuggest/internal/ports"
)

// SuggestionsHandler handles the quote suggestions endpoint.
type SuggestionsHandler struct {
	service      ports.SuggestionService
	defaultLimit int
	maxLimit     int
}

// NewSuggestionsHandler creates a suggestions handler.
func NewSuggestionsHandler(service ports.SuggestionService, defaultLimit, maxLimit int) *SuggestionsHandler {
	return &SuggestionsHandler{
		service:      service,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// GetSuggestions handles GET /suggestions.
//
// Query parameters:
//   - authors: comma-separated author names
//   - keywords: comma-separated keywords
//   - limit: page size (default from config)
//   - offset: number of quotes to skip (default 0)
//
// At least one of authors or keywords must be present.
func (h *SuggestionsHandler) GetSuggestions(c *gin.Context) {
	authors := splitList(c.Query("authors"))
	keywords := splitList(c.Query("keywords"))

	limit, err := parseBoundedInt(c.Query("limit"), h.defaultLimit, h.maxLimit)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid limit: %s", err))
		return
	}

	offset, err := parseBoundedInt(c.Query("offset"), 0, 0)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid offset: %s", err))
		return
	}

	quotes, err := h.service.GetQuotes(c.Request.Context(), authors, keywords, limit, offset)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponses(quotes))
}

// RegisterRoutes registers the suggestions routes on the given router group.
func (h *SuggestionsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/suggestions", h.GetSuggestions)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.ErrorCodeBadRequest,
		message,
	).WithTraceID(dto.GetTraceID(c)))
}

// splitList parses a comma-separated query value into its non-empty parts.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

// parseBoundedInt parses a non-negative integer query value, applying the
// fallback when absent. A max of 0 means unbounded.
func parseBoundedInt(raw string, fallback, max int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}

	if val < 0 {
		return 0, fmt.Errorf("%d is negative", val)
	}

	if max > 0 && val > max {
		return 0, fmt.Errorf("%d exceeds the maximum of %d", val, max)
	}

	return val, nil
}
