package services

import (
	"context"
	"errors"
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

const (
	itemCacheTTL  = 5 * time.Minute
	statsCacheTTL = 1 * time.Minute
)

type InventoryService interface {
	AddItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) error
	GetItem(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryItem, error)
	UpdateItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) error
	DisableItem(ctx context.Context, businessID, id uuid.UUID) error
	ListItems(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	SearchItems(ctx context.Context, businessID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.InventoryItem, error)

	RecordTransaction(ctx context.Context, businessID uuid.UUID, txn *models.InventoryTransaction) (*models.InventoryTransaction, error)
	GetTransaction(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryTransaction, error)
	ListTransactions(ctx context.Context, businessID uuid.UUID, filter *models.TransactionFilter) ([]*models.InventoryTransaction, error)

	GetStats(ctx context.Context, businessID uuid.UUID) (*models.InventoryStats, error)
	VerifyItemLedger(ctx context.Context, businessID, itemID uuid.UUID) (*LedgerCheck, error)
}

// LedgerCheck compares the sum of ledger deltas against the item's current
// stock. Drift is non-zero when the projection and the ledger disagree, which
// should never happen when every stock change goes through RecordTransaction.
type LedgerCheck struct {
	ItemID       uuid.UUID       `json:"item_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	Drift        decimal.Decimal `json:"drift"`
	Consistent   bool            `json:"consistent"`
}

type inventoryService struct {
	db        repositories.DB
	itemRepo  repositories.ItemRepository
	txnRepo   repositories.TransactionRepository
	alertRepo repositories.AlertRepository
	alertSvc  AlertService
	cacheSvc  caching.CacheService
	cfg       config.AlertConfig
	metrics   *metrics.HTTPMetrics
	logger    *zap.Logger
}

func NewInventoryService(db repositories.DB, itemRepo repositories.ItemRepository, txnRepo repositories.TransactionRepository, alertRepo repositories.AlertRepository, alertSvc AlertService, cacheSvc caching.CacheService, cfg config.AlertConfig, m *metrics.HTTPMetrics, logger *zap.Logger) InventoryService {
	return &inventoryService{
		db:        db,
		itemRepo:  itemRepo,
		txnRepo:   txnRepo,
		alertRepo: alertRepo,
		alertSvc:  alertSvc,
		cacheSvc:  cacheSvc,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

func validateItem(item *models.InventoryItem) error {
	if err := common.ValidateRequiredString(item.Name, "name"); err != nil {
		return err
	}
	if !models.ValidUnitsOfMeasure[item.UnitOfMeasure] {
		return common.NewValidationError("unit_of_measure", "is not a recognized unit")
	}
	for field, value := range map[string]decimal.Decimal{
		"current_stock": item.CurrentStock,
		"minimum_stock": item.MinimumStock,
		"maximum_stock": item.MaximumStock,
		"unit_cost":     item.UnitCost,
		"selling_price": item.SellingPrice,
	} {
		if err := common.ValidateNonNegativeDecimal(value, field); err != nil {
			return err
		}
	}
	return nil
}

// AddItem creates an item with zero stock. Opening stock is seeded through a
// purchase or adjustment transaction so the ledger explains every unit.
func (s *inventoryService) AddItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) error {
	item.BusinessID = businessID
	item.ID = uuid.New()
	item.IsAvailable = true
	item.CurrentStock = decimal.Zero

	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return common.NewPersistenceError("create item", err)
	}
	s.invalidateStats(ctx, businessID)
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryItem, error) {
	if cached, err := s.cacheSvc.GetItem(ctx, businessID, id); err == nil && cached != nil {
		return cached, nil
	}

	item, err := s.itemRepo.GetByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("item")
		}
		return nil, common.NewPersistenceError("get item", err)
	}

	if cacheErr := s.cacheSvc.SetItem(ctx, businessID, item, itemCacheTTL); cacheErr != nil {
		s.logger.Warn("failed to cache item", zap.String("item_id", id.String()), zap.Error(cacheErr))
	}
	return item, nil
}

// UpdateItem updates item metadata and thresholds. CurrentStock is never
// touched here; stock only moves through RecordTransaction. A unit cost move
// past the configured threshold emits a price_change alert.
func (s *inventoryService) UpdateItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) error {
	item.BusinessID = businessID
	if err := validateItem(item); err != nil {
		return err
	}

	existing, err := s.itemRepo.GetByID(ctx, businessID, item.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("item")
		}
		return common.NewPersistenceError("get item", err)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("item")
		}
		return common.NewPersistenceError("update item", err)
	}

	if !existing.UnitCost.Equal(item.UnitCost) {
		if alertErr := s.alertSvc.RaisePriceChange(ctx, businessID, item, existing.UnitCost, item.UnitCost); alertErr != nil {
			s.logger.Warn("price change alert failed", zap.String("item_id", item.ID.String()), zap.Error(alertErr))
		}
	}

	s.invalidateItem(ctx, businessID, item.ID)
	return nil
}

func (s *inventoryService) DisableItem(ctx context.Context, businessID, id uuid.UUID) error {
	err := s.itemRepo.SetAvailability(ctx, businessID, id, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("item")
		}
		return common.NewPersistenceError("disable item", err)
	}
	s.invalidateItem(ctx, businessID, id)
	return nil
}

func (s *inventoryService) ListItems(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	return s.itemRepo.List(ctx, businessID, limit, offset)
}

func (s *inventoryService) SearchItems(ctx context.Context, businessID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.InventoryItem, error) {
	return s.itemRepo.Search(ctx, businessID, filter)
}

// validateTransaction is the input gate for RecordTransaction. Pure check, no
// side effects; runs before any lock is taken.
func (s *inventoryService) validateTransaction(ctx context.Context, businessID uuid.UUID, txn *models.InventoryTransaction) error {
	if !txn.Type.Valid() {
		return common.NewValidationError("transaction_type", "is not a recognized type")
	}
	if txn.Type == models.TransactionAdjustment {
		if txn.Quantity.IsZero() {
			return common.NewValidationError("quantity", "adjustment requires a non-zero signed delta")
		}
	} else if err := common.ValidatePositiveDecimal(txn.Quantity, "quantity"); err != nil {
		return err
	}
	if err := common.ValidateNonNegativeDecimal(txn.UnitCost, "unit_cost"); err != nil {
		return err
	}

	if _, err := s.itemRepo.GetByID(ctx, businessID, txn.ItemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewValidationError("item_id", "does not resolve to an item")
		}
		return common.NewPersistenceError("get item", err)
	}
	return nil
}

// RecordTransaction appends one immutable ledger entry and projects it onto
// the item's current stock. The ledger insert and the stock update run in one
// database transaction with the item row locked, so concurrent entries for
// the same item serialize and the both-or-neither property holds.
func (s *inventoryService) RecordTransaction(ctx context.Context, businessID uuid.UUID, txn *models.InventoryTransaction) (*models.InventoryTransaction, error) {
	if err := s.validateTransaction(ctx, businessID, txn); err != nil {
		return nil, err
	}

	txn.ID = uuid.New()
	txn.BusinessID = businessID
	txn.TotalCost = txn.Quantity.Abs().Mul(txn.UnitCost)
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	item, err := s.itemRepo.GetForUpdateTx(ctx, tx, businessID, txn.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("item")
		}
		return nil, common.NewPersistenceError("lock item", err)
	}

	delta := txn.Quantity
	if direction := txn.Type.Direction(); direction != 0 {
		delta = txn.Quantity.Mul(decimal.NewFromInt(int64(direction)))
	}

	txn.PreviousStock = item.CurrentStock
	txn.NewStock = item.CurrentStock.Add(delta)

	if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
		return nil, common.NewPersistenceError("append ledger entry", err)
	}
	if err := s.itemRepo.UpdateStockTx(ctx, tx, businessID, txn.ItemID, txn.NewStock); err != nil {
		return nil, common.NewPersistenceError("project stock", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewPersistenceError("commit transaction", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveTransaction(string(txn.Type))
	}
	s.invalidateItem(ctx, businessID, txn.ItemID)

	// Derive alerts from the post-transaction stock level.
	item.CurrentStock = txn.NewStock
	if _, alertErr := s.alertSvc.DeriveForItem(ctx, businessID, item); alertErr != nil {
		s.logger.Warn("alert derivation after transaction failed",
			zap.String("item_id", txn.ItemID.String()), zap.Error(alertErr))
	}

	return txn, nil
}

func (s *inventoryService) GetTransaction(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryTransaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("transaction")
		}
		return nil, common.NewPersistenceError("get transaction", err)
	}
	return txn, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, businessID uuid.UUID, filter *models.TransactionFilter) ([]*models.InventoryTransaction, error) {
	return s.txnRepo.List(ctx, businessID, filter)
}

func (s *inventoryService) GetStats(ctx context.Context, businessID uuid.UUID) (*models.InventoryStats, error) {
	if cached, err := s.cacheSvc.GetStats(ctx, businessID); err == nil && cached != nil {
		return cached, nil
	}

	stats, err := s.itemRepo.Stats(ctx, businessID, s.cfg.StatsExpiringDays)
	if err != nil {
		return nil, common.NewPersistenceError("compute stats", err)
	}
	stats.ActiveAlerts, err = s.alertRepo.CountActive(ctx, businessID)
	if err != nil {
		return nil, common.NewPersistenceError("count active alerts", err)
	}

	if cacheErr := s.cacheSvc.SetStats(ctx, businessID, stats, statsCacheTTL); cacheErr != nil {
		s.logger.Warn("failed to cache stats", zap.Error(cacheErr))
	}
	return stats, nil
}

func (s *inventoryService) VerifyItemLedger(ctx context.Context, businessID, itemID uuid.UUID) (*LedgerCheck, error) {
	item, err := s.itemRepo.GetByID(ctx, businessID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("item")
		}
		return nil, common.NewPersistenceError("get item", err)
	}

	sumStr, err := s.txnRepo.SumDeltasByItem(ctx, businessID, itemID)
	if err != nil {
		return nil, common.NewPersistenceError("sum ledger deltas", err)
	}
	ledgerSum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return nil, common.NewPersistenceError("parse ledger sum", err)
	}

	drift := item.CurrentStock.Sub(ledgerSum)
	return &LedgerCheck{
		ItemID:       itemID,
		CurrentStock: item.CurrentStock,
		LedgerSum:    ledgerSum,
		Drift:        drift,
		Consistent:   drift.IsZero(),
	}, nil
}

func (s *inventoryService) invalidateItem(ctx context.Context, businessID, itemID uuid.UUID) {
	if err := s.cacheSvc.DeleteItem(ctx, businessID, itemID); err != nil {
		s.logger.Warn("failed to invalidate item cache", zap.Error(err))
	}
	s.invalidateStats(ctx, businessID)
}

func (s *inventoryService) invalidateStats(ctx context.Context, businessID uuid.UUID) {
	if err := s.cacheSvc.DeleteStats(ctx, businessID); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
