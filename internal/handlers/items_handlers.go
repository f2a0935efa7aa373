package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ItemHandlers struct {
	inventoryService services.InventoryService
}

func NewItemHandlers(inventoryService services.InventoryService) *ItemHandlers {
	return &ItemHandlers{inventoryService: inventoryService}
}

// ItemRequest is the create/update payload. Stock is absent on purpose:
// stock moves only through transactions.
type ItemRequest struct {
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	SKU             *string         `json:"sku"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	SupplierID      *uuid.UUID      `json:"supplier_id"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	MinimumStock    decimal.Decimal `json:"minimum_stock"`
	MaximumStock    decimal.Decimal `json:"maximum_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	ExpiryDate      *string         `json:"expiry_date"`
	IsPerishable    bool            `json:"is_perishable"`
	IsAlcoholic     bool            `json:"is_alcoholic"`
	IsIngredient    bool            `json:"is_ingredient"`
}

func (r *ItemRequest) toModel() (*models.InventoryItem, error) {
	item := &models.InventoryItem{
		Name:            r.Name,
		Description:     r.Description,
		SKU:             r.SKU,
		CategoryID:      r.CategoryID,
		SupplierID:      r.SupplierID,
		UnitOfMeasure:   r.UnitOfMeasure,
		MinimumStock:    r.MinimumStock,
		MaximumStock:    r.MaximumStock,
		ReorderPoint:    r.ReorderPoint,
		ReorderQuantity: r.ReorderQuantity,
		UnitCost:        r.UnitCost,
		SellingPrice:    r.SellingPrice,
		IsPerishable:    r.IsPerishable,
		IsAlcoholic:     r.IsAlcoholic,
		IsIngredient:    r.IsIngredient,
	}
	if r.ExpiryDate != nil && *r.ExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", *r.ExpiryDate)
		if err != nil {
			return nil, common.NewValidationError("expiry_date", "must be YYYY-MM-DD")
		}
		item.ExpiryDate = &parsed
	}
	return item, nil
}

func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := req.toModel()
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.inventoryService.AddItem(ctx, businessID, item); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	item, err := h.inventoryService.GetItem(ctx, businessID, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := req.toModel()
	if err != nil {
		return common.SendDomainError(c, err)
	}
	item.ID = itemID

	if err := h.inventoryService.UpdateItem(ctx, businessID, item); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem soft-disables the item. Ledger history stays intact.
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.inventoryService.DisableItem(ctx, businessID, itemID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	items, err := h.inventoryService.ListItems(ctx, businessID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list items")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ItemHandlers) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filter := &models.ItemSearchFilter{
		Query:              c.QueryParam("q"),
		LowStock:           c.QueryParam("low_stock") == "true",
		IncludeUnavailable: c.QueryParam("include_unavailable") == "true",
		SortBy:             c.QueryParam("sort_by"),
		SortOrder:          common.ValidateSortOrder(c.QueryParam("sort_order")),
	}

	if categoryStr := c.QueryParam("category_id"); categoryStr != "" {
		categoryID, err := common.ValidateUUID(categoryStr, "category_id")
		if err != nil {
			return common.SendDomainError(c, err)
		}
		filter.CategoryID = &categoryID
	}
	if supplierStr := c.QueryParam("supplier_id"); supplierStr != "" {
		supplierID, err := common.ValidateUUID(supplierStr, "supplier_id")
		if err != nil {
			return common.SendDomainError(c, err)
		}
		filter.SupplierID = &supplierID
	}
	if daysStr := c.QueryParam("expiring_within_days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			return common.SendValidationError(c, "expiring_within_days", "must be a non-negative integer")
		}
		filter.ExpiringWithinDays = &days
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	items, err := h.inventoryService.SearchItems(ctx, businessID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search items")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// CheckItemLedger reports whether the ledger sum matches current stock.
func (h *ItemHandlers) CheckItemLedger(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	check, err := h.inventoryService.VerifyItemLedger(ctx, businessID, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, check)
}
