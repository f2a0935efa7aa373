package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a stock movement. The type decides the sign
// applied to the item's stock, except for adjustments which carry an explicit
// signed delta supplied by the caller.
type TransactionType string

const (
	TransactionPurchase    TransactionType = "purchase"
	TransactionSale        TransactionType = "sale"
	TransactionAdjustment  TransactionType = "adjustment"
	TransactionWaste       TransactionType = "waste"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionReturn      TransactionType = "return"
	TransactionDamage      TransactionType = "damage"
	TransactionExpiry      TransactionType = "expiry"
)

// Valid reports whether t is one of the nine recognized transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionAdjustment,
		TransactionWaste, TransactionTransferIn, TransactionTransferOut,
		TransactionReturn, TransactionDamage, TransactionExpiry:
		return true
	}
	return false
}

// Direction returns +1 for stock-increasing types, -1 for stock-decreasing
// types and 0 for adjustment (caller supplies the signed delta).
func (t TransactionType) Direction() int {
	switch t {
	case TransactionPurchase, TransactionTransferIn, TransactionReturn:
		return 1
	case TransactionSale, TransactionWaste, TransactionTransferOut,
		TransactionDamage, TransactionExpiry:
		return -1
	}
	return 0
}

// InventoryTransaction is one immutable ledger entry. Rows are created once
// and never updated or deleted; PreviousStock/NewStock snapshot the item's
// stock around the application of this entry.
type InventoryTransaction struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BusinessID     uuid.UUID       `json:"business_id" db:"business_id"`
	ItemID         uuid.UUID       `json:"item_id" db:"item_id"`
	Type           TransactionType `json:"transaction_type" db:"transaction_type"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	TotalCost      decimal.Decimal `json:"total_cost" db:"total_cost"`
	PreviousStock  decimal.Decimal `json:"previous_stock" db:"previous_stock"`
	NewStock       decimal.Decimal `json:"new_stock" db:"new_stock"`
	SupplierID     *uuid.UUID      `json:"supplier_id" db:"supplier_id"`
	OrderReference *string         `json:"order_reference" db:"order_reference"`
	StaffID        *uuid.UUID      `json:"staff_id" db:"staff_id"`
	Notes          *string         `json:"notes" db:"notes"`
	Date           time.Time       `json:"transaction_date" db:"transaction_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	ItemID   *uuid.UUID       `json:"item_id,omitempty"`
	Type     *TransactionType `json:"transaction_type,omitempty"`
	DateFrom *time.Time       `json:"date_from,omitempty"`
	DateTo   *time.Time       `json:"date_to,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}
