package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Units of measure accepted for inventory items.
var ValidUnitsOfMeasure = map[string]bool{
	"unit": true, "kg": true, "g": true, "l": true, "ml": true,
	"dozen": true, "case": true, "bottle": true, "can": true, "bag": true,
}

// InventoryItem is a stocked good. Stock is only ever mutated through the
// transaction ledger; items are soft-disabled via IsAvailable, never deleted.
type InventoryItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BusinessID      uuid.UUID       `json:"business_id" db:"business_id"`
	CategoryID      *uuid.UUID      `json:"category_id" db:"category_id"`
	SupplierID      *uuid.UUID      `json:"supplier_id" db:"supplier_id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description" db:"description"`
	SKU             *string         `json:"sku" db:"sku"`
	UnitOfMeasure   string          `json:"unit_of_measure" db:"unit_of_measure"`
	CurrentStock    decimal.Decimal `json:"current_stock" db:"current_stock"`
	MinimumStock    decimal.Decimal `json:"minimum_stock" db:"minimum_stock"`
	MaximumStock    decimal.Decimal `json:"maximum_stock" db:"maximum_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity" db:"reorder_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	SellingPrice    decimal.Decimal `json:"selling_price" db:"selling_price"`
	ExpiryDate      *time.Time      `json:"expiry_date" db:"expiry_date"`
	IsPerishable    bool            `json:"is_perishable" db:"is_perishable"`
	IsAlcoholic     bool            `json:"is_alcoholic" db:"is_alcoholic"`
	IsIngredient    bool            `json:"is_ingredient" db:"is_ingredient"`
	IsAvailable     bool            `json:"is_available" db:"is_available"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemSearchFilter holds search and filter criteria for inventory item queries
type ItemSearchFilter struct {
	Query              string     `json:"query,omitempty"`                // Substring search across name, description, SKU
	CategoryID         *uuid.UUID `json:"category_id,omitempty"`          // Category filter
	SupplierID         *uuid.UUID `json:"supplier_id,omitempty"`          // Supplier filter
	LowStock           bool       `json:"low_stock,omitempty"`            // Only items at or below minimum stock
	ExpiringWithinDays *int       `json:"expiring_within_days,omitempty"` // Only items expiring within N days
	IncludeUnavailable bool       `json:"include_unavailable,omitempty"`  // Include soft-disabled items
	SortBy             string     `json:"sort_by,omitempty"`              // Sort field: name, current_stock, expiry_date, updated_at
	SortOrder          string     `json:"sort_order,omitempty"`           // Sort order: asc, desc
	Limit              int        `json:"limit,omitempty"`                // Page size (default: 50)
	Offset             int        `json:"offset,omitempty"`               // Page offset
}

// InventoryStats are the dashboard numbers derived from item and alert state.
type InventoryStats struct {
	TotalItems    int             `json:"total_items"`
	LowStockItems int             `json:"low_stock_items"`
	ExpiringItems int             `json:"expiring_items"`
	ActiveAlerts  int             `json:"active_alerts"`
	TotalValue    decimal.Decimal `json:"total_value"`
}
