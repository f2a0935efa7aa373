package handlers

import (
	"net/http"

	"mesa/internal/common"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

type StatsHandlers struct {
	inventoryService services.InventoryService
}

func NewStatsHandlers(inventoryService services.InventoryService) *StatsHandlers {
	return &StatsHandlers{inventoryService: inventoryService}
}

// GetStats returns the dashboard numbers for the caller's business.
func (h *StatsHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.inventoryService.GetStats(ctx, businessID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
