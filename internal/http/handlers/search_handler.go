// README: Availability search handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadbook/internal/modules/availability"
)

type Searcher interface {
	Search(ctx context.Context, req availability.SearchRequest) (*availability.SearchResult, error)
}

type SearchHandler struct {
	search Searcher
}

func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{search: s}
}

// Search handles GET /api/search?origin=..&destination=..&stops=..&date=..
func (h *SearchHandler) Search(c *gin.Context) {
	var req availability.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid query")
		return
	}
	res, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
