package handlers

import (
	"net/http"
	"strconv"

	"mesa/internal/common"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

type AlertHandlers struct {
	alertService services.AlertService
}

func NewAlertHandlers(alertService services.AlertService) *AlertHandlers {
	return &AlertHandlers{alertService: alertService}
}

func (h *AlertHandlers) ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var resolved *bool
	if resolvedStr := c.QueryParam("resolved"); resolvedStr != "" {
		value, err := strconv.ParseBool(resolvedStr)
		if err != nil {
			return common.SendValidationError(c, "resolved", "must be true or false")
		}
		resolved = &value
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	alerts, err := h.alertService.List(ctx, businessID, resolved, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list alerts")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AlertHandlers) ResolveAlert(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	alertID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.alertService.Resolve(ctx, businessID, alertID, userID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ScanAlerts runs on-demand alert derivation for the whole business.
func (h *AlertHandlers) ScanAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	created, err := h.alertService.ScanBusiness(ctx, businessID)
	if err != nil {
		return common.SendServerError(c, "Alert scan failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts_created": created,
	})
}
