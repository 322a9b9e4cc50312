// README: Admin handlers for pricing settings, driver overrides, vehicle moderation and catalogue ordering.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadbook/internal/modules/fleet"
	"roadbook/internal/modules/ordering"
	"roadbook/internal/modules/pricing"
	"roadbook/internal/types"
)

type PricingAdmin interface {
	Settings(ctx context.Context) (*pricing.Settings, error)
	UpdateSettings(ctx context.Context, cmd pricing.UpdateSettingsCommand) (*pricing.Settings, error)
	SetOverride(ctx context.Context, cmd pricing.SetOverrideCommand) (*pricing.DriverOverride, error)
	DeleteOverride(ctx context.Context, driverID types.ID) error
}

type FleetAdmin interface {
	SetVerification(ctx context.Context, id types.ID, status fleet.VerificationStatus) error
	SetActive(ctx context.Context, id types.ID, active bool) error
}

type Collections interface {
	List(ctx context.Context, t ordering.EntityType) ([]ordering.Item, error)
	Reorder(ctx context.Context, t ordering.EntityType, orderedIDs []types.ID) ([]ordering.Item, error)
}

type AdminHandler struct {
	pricing     PricingAdmin
	fleet       FleetAdmin
	collections Collections
}

func NewAdminHandler(p PricingAdmin, f FleetAdmin, col Collections) *AdminHandler {
	return &AdminHandler{pricing: p, fleet: f, collections: col}
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	st, err := h.pricing.Settings(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var cmd pricing.UpdateSettingsCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.pricing.UpdateSettings(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *AdminHandler) SetOverride(c *gin.Context) {
	var cmd pricing.SetOverrideCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd.DriverID = types.ID(c.Param("id"))
	o, err := h.pricing.SetOverride(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

func (h *AdminHandler) DeleteOverride(c *gin.Context) {
	if err := h.pricing.DeleteOverride(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type verificationReq struct {
	Status fleet.VerificationStatus `json:"status"`
}

func (h *AdminHandler) SetVerification(c *gin.Context) {
	var req verificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.fleet.SetVerification(c.Request.Context(), types.ID(c.Param("id")), req.Status); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"id": c.Param("id"), "verification_status": req.Status})
}

type activeReq struct {
	Active *bool `json:"active"`
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	var req activeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		writeError(c, http.StatusBadRequest, "active is required")
		return
	}
	if err := h.fleet.SetActive(c.Request.Context(), types.ID(c.Param("id")), *req.Active); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"id": c.Param("id"), "active": *req.Active})
}

func (h *AdminHandler) ListCollection(c *gin.Context) {
	items, err := h.collections.List(c.Request.Context(), ordering.EntityType(c.Param("type")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"items": items})
}

type reorderReq struct {
	IDs []types.ID `json:"ids"`
}

// Reorder answers with the optimistic order; the write is batched.
func (h *AdminHandler) Reorder(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	items, err := h.collections.Reorder(c.Request.Context(), ordering.EntityType(c.Param("type")), req.IDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusAccepted, map[string]any{"items": items})
}
