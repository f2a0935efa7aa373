package services

import (
	"context"
	"fmt"
	"time"

	"mesa/internal/caching"
	"mesa/internal/common"
	"mesa/internal/config"
	"mesa/internal/metrics"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AlertService derives stock and expiry alerts from item state. Alerts are
// stored facts: deriving never resolves anything, and a new alert is
// suppressed while an unresolved alert of the same type exists for the item.
type AlertService interface {
	DeriveForItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) ([]*models.InventoryAlert, error)
	ScanBusiness(ctx context.Context, businessID uuid.UUID) (int, error)
	RaisePriceChange(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, oldCost, newCost decimal.Decimal) error
	List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error)
	Resolve(ctx context.Context, businessID, alertID, resolvedBy uuid.UUID) error
}

type alertService struct {
	alertRepo repositories.AlertRepository
	itemRepo  repositories.ItemRepository
	cacheSvc  caching.CacheService
	cfg       config.AlertConfig
	metrics   *metrics.HTTPMetrics
	logger    *zap.Logger
}

func NewAlertService(alertRepo repositories.AlertRepository, itemRepo repositories.ItemRepository, cacheSvc caching.CacheService, cfg config.AlertConfig, m *metrics.HTTPMetrics, logger *zap.Logger) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		itemRepo:  itemRepo,
		cacheSvc:  cacheSvc,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// candidate is one derived alert condition before de-duplication.
type candidate struct {
	alertType models.AlertType
	severity  models.AlertSeverity
	message   string
}

// deriveCandidates evaluates every alert condition against the item. It is a
// pure function of item state and now.
func (s *alertService) deriveCandidates(item *models.InventoryItem, now time.Time) []candidate {
	var out []candidate

	switch {
	case item.CurrentStock.LessThanOrEqual(decimal.Zero):
		out = append(out, candidate{
			alertType: models.AlertOutOfStock,
			severity:  models.SeverityCritical,
			message:   fmt.Sprintf("%s is out of stock", item.Name),
		})
	case item.CurrentStock.LessThanOrEqual(item.MinimumStock):
		severity := models.SeverityMedium
		half := item.MinimumStock.Div(decimal.NewFromInt(2))
		if item.CurrentStock.LessThan(half) {
			severity = models.SeverityHigh
		}
		out = append(out, candidate{
			alertType: models.AlertLowStock,
			severity:  severity,
			message: fmt.Sprintf("%s is low on stock: %s %s remaining (minimum %s)",
				item.Name, item.CurrentStock.String(), item.UnitOfMeasure, item.MinimumStock.String()),
		})
	}

	if item.MaximumStock.IsPositive() && item.CurrentStock.GreaterThan(item.MaximumStock) {
		out = append(out, candidate{
			alertType: models.AlertOverstock,
			severity:  models.SeverityLow,
			message: fmt.Sprintf("%s is overstocked: %s %s on hand (maximum %s)",
				item.Name, item.CurrentStock.String(), item.UnitOfMeasure, item.MaximumStock.String()),
		})
	}

	if item.ExpiryDate != nil {
		expiry := *item.ExpiryDate
		warnAt := now.AddDate(0, 0, s.cfg.ExpiryWarningDays)
		switch {
		case expiry.Before(now):
			out = append(out, candidate{
				alertType: models.AlertExpired,
				severity:  models.SeverityHigh,
				message:   fmt.Sprintf("%s expired on %s", item.Name, expiry.Format("2006-01-02")),
			})
		case !expiry.After(warnAt):
			out = append(out, candidate{
				alertType: models.AlertExpiringSoon,
				severity:  models.SeverityMedium,
				message:   fmt.Sprintf("%s expires on %s", item.Name, expiry.Format("2006-01-02")),
			})
		}
	}

	return out
}

func (s *alertService) DeriveForItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) ([]*models.InventoryAlert, error) {
	candidates := s.deriveCandidates(item, time.Now())

	var created []*models.InventoryAlert
	for _, c := range candidates {
		alert, err := s.raise(ctx, businessID, item.ID, c.alertType, c.severity, c.message)
		if err != nil {
			return created, err
		}
		if alert != nil {
			created = append(created, alert)
		}
	}
	return created, nil
}

// raise persists a new alert unless an unresolved alert of the same type
// already exists for the item. Returns nil when suppressed.
func (s *alertService) raise(ctx context.Context, businessID, itemID uuid.UUID, alertType models.AlertType, severity models.AlertSeverity, message string) (*models.InventoryAlert, error) {
	exists, err := s.alertRepo.HasUnresolved(ctx, businessID, itemID, alertType)
	if err != nil {
		return nil, common.NewPersistenceError("check unresolved alert", err)
	}
	if exists {
		return nil, nil
	}

	alert := &models.InventoryAlert{
		ID:         uuid.New(),
		BusinessID: businessID,
		ItemID:     itemID,
		Type:       alertType,
		Severity:   severity,
		Message:    message,
	}
	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, common.NewPersistenceError("create alert", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveAlert(string(alertType), string(severity))
	}
	return alert, nil
}

// ScanBusiness derives alerts for every available item and returns the count
// of newly created alerts. Pages through items so a large catalog does not
// load in one query.
func (s *alertService) ScanBusiness(ctx context.Context, businessID uuid.UUID) (int, error) {
	const pageSize = 200
	createdTotal := 0
	offset := 0

	for {
		items, err := s.itemRepo.List(ctx, businessID, pageSize, offset)
		if err != nil {
			return createdTotal, common.NewPersistenceError("list items for scan", err)
		}
		for _, item := range items {
			created, err := s.DeriveForItem(ctx, businessID, item)
			if err != nil {
				s.logger.Error("alert derivation failed",
					zap.String("business_id", businessID.String()),
					zap.String("item_id", item.ID.String()),
					zap.Error(err))
				continue
			}
			createdTotal += len(created)
		}
		if len(items) < pageSize {
			break
		}
		offset += pageSize
	}

	// New alerts move the active-alert counter carried by cached stats.
	if createdTotal > 0 {
		if err := s.cacheSvc.InvalidateBusinessCache(ctx, businessID); err != nil {
			s.logger.Warn("cache invalidation after scan failed",
				zap.String("business_id", businessID.String()), zap.Error(err))
		}
	}
	return createdTotal, nil
}

// RaisePriceChange records a price_change alert when the unit cost moves past
// the configured percentage threshold. No-op below the threshold or when the
// old cost is zero.
func (s *alertService) RaisePriceChange(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, oldCost, newCost decimal.Decimal) error {
	if oldCost.IsZero() || oldCost.Equal(newCost) {
		return nil
	}
	changePct := newCost.Sub(oldCost).Div(oldCost).Mul(decimal.NewFromInt(100)).Abs()
	threshold := decimal.NewFromFloat(s.cfg.PriceChangePercent)
	if changePct.LessThan(threshold) {
		return nil
	}

	severity := models.SeverityMedium
	if changePct.GreaterThanOrEqual(threshold.Mul(decimal.NewFromInt(2))) {
		severity = models.SeverityHigh
	}
	message := fmt.Sprintf("%s unit cost changed from %s to %s (%s%%)",
		item.Name, oldCost.String(), newCost.String(), changePct.Round(1).String())

	_, err := s.raise(ctx, businessID, item.ID, models.AlertPriceChange, severity, message)
	return err
}

func (s *alertService) List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error) {
	return s.alertRepo.List(ctx, businessID, resolved, limit, offset)
}

func (s *alertService) Resolve(ctx context.Context, businessID, alertID, resolvedBy uuid.UUID) error {
	err := s.alertRepo.Resolve(ctx, businessID, alertID, resolvedBy)
	if err == pgx.ErrNoRows {
		return common.NewNotFoundError("alert")
	}
	if err != nil {
		return common.NewPersistenceError("resolve alert", err)
	}
	if cacheErr := s.cacheSvc.DeleteStats(ctx, businessID); cacheErr != nil {
		s.logger.Warn("stats cache invalidation after resolve failed",
			zap.String("business_id", businessID.String()), zap.Error(cacheErr))
	}
	return nil
}
