package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertLowStock     AlertType = "low_stock"
	AlertOutOfStock   AlertType = "out_of_stock"
	AlertExpiringSoon AlertType = "expiring_soon"
	AlertExpired      AlertType = "expired"
	AlertOverstock    AlertType = "overstock"
	AlertPriceChange  AlertType = "price_change"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// InventoryAlert is a stored fact derived from item state. Resolution is an
// explicit user action; it does not re-check whether the condition holds.
type InventoryAlert struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	BusinessID uuid.UUID     `json:"business_id" db:"business_id"`
	ItemID     uuid.UUID     `json:"item_id" db:"item_id"`
	Type       AlertType     `json:"alert_type" db:"alert_type"`
	Severity   AlertSeverity `json:"severity" db:"severity"`
	Message    string        `json:"message" db:"message"`
	IsResolved bool          `json:"is_resolved" db:"is_resolved"`
	ResolvedBy *uuid.UUID    `json:"resolved_by" db:"resolved_by"`
	ResolvedAt *time.Time    `json:"resolved_at" db:"resolved_at"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
