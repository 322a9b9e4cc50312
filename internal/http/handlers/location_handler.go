// README: Public location catalogue handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadbook/internal/modules/location"
)

type LocationLister interface {
	ListActive(ctx context.Context) ([]location.Location, error)
}

type LocationHandler struct {
	locations LocationLister
}

func NewLocationHandler(l LocationLister) *LocationHandler {
	return &LocationHandler{locations: l}
}

// List returns active locations, names resolved for ?locale= when given.
func (h *LocationHandler) List(c *gin.Context) {
	locs, err := h.locations.ListActive(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	locale := c.Query("locale")
	if locale == "" {
		writeJSON(c, http.StatusOK, map[string]any{"locations": locs})
		return
	}
	type named struct {
		location.Location
		Name string `json:"name"`
	}
	out := make([]named, 0, len(locs))
	for _, l := range locs {
		out = append(out, named{Location: l, Name: l.Name(locale)})
	}
	writeJSON(c, http.StatusOK, map[string]any{"locations": out})
}
