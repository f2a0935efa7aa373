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

type TransactionHandlers struct {
	inventoryService services.InventoryService
}

func NewTransactionHandlers(inventoryService services.InventoryService) *TransactionHandlers {
	return &TransactionHandlers{inventoryService: inventoryService}
}

// RecordTransactionRequest is the ledger append payload. For adjustment the
// quantity is a signed delta; for every other type it must be positive.
type RecordTransactionRequest struct {
	ItemID         uuid.UUID       `json:"item_id"`
	Type           string          `json:"transaction_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	SupplierID     *uuid.UUID      `json:"supplier_id"`
	OrderReference *string         `json:"order_reference"`
	StaffID        *uuid.UUID      `json:"staff_id"`
	Notes          *string         `json:"notes"`
	Date           *time.Time      `json:"transaction_date"`
}

func (h *TransactionHandlers) RecordTransaction(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req RecordTransactionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	txn := &models.InventoryTransaction{
		ItemID:         req.ItemID,
		Type:           models.TransactionType(req.Type),
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		SupplierID:     req.SupplierID,
		OrderReference: req.OrderReference,
		StaffID:        req.StaffID,
		Notes:          req.Notes,
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}

	recorded, err := h.inventoryService.RecordTransaction(ctx, businessID, txn)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, recorded)
}

func (h *TransactionHandlers) GetTransaction(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	txnID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	txn, err := h.inventoryService.GetTransaction(ctx, businessID, txnID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandlers) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filter := &models.TransactionFilter{}

	if itemStr := c.QueryParam("item_id"); itemStr != "" {
		itemID, err := common.ValidateUUID(itemStr, "item_id")
		if err != nil {
			return common.SendDomainError(c, err)
		}
		filter.ItemID = &itemID
	}
	if typeStr := c.QueryParam("transaction_type"); typeStr != "" {
		txnType := models.TransactionType(typeStr)
		if !txnType.Valid() {
			return common.SendValidationError(c, "transaction_type", "is not a recognized type")
		}
		filter.Type = &txnType
	}
	if fromStr := c.QueryParam("date_from"); fromStr != "" {
		from, err := common.ValidateDateFormat(fromStr, "date_from")
		if err != nil {
			return common.SendDomainError(c, err)
		}
		filter.DateFrom = from
	}
	if toStr := c.QueryParam("date_to"); toStr != "" {
		to, err := common.ValidateDateFormat(toStr, "date_to")
		if err != nil {
			return common.SendDomainError(c, err)
		}
		filter.DateTo = to
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	transactions, err := h.inventoryService.ListTransactions(ctx, businessID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list transactions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}
