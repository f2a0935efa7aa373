package services

import (
	"context"
	"testing"
	"time"

	"mesa/internal/caching"
	"mesa/internal/config"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// stubCache satisfies caching.CacheService with cache misses and no-ops so
// service tests exercise the repository path.
type stubCache struct{}

func (stubCache) GetItem(ctx context.Context, businessID, itemID uuid.UUID) (*models.InventoryItem, error) {
	return nil, nil
}
func (stubCache) SetItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error {
	return nil
}
func (stubCache) DeleteItem(ctx context.Context, businessID, itemID uuid.UUID) error { return nil }
func (stubCache) GetStats(ctx context.Context, businessID uuid.UUID) (*models.InventoryStats, error) {
	return nil, nil
}
func (stubCache) SetStats(ctx context.Context, businessID uuid.UUID, stats *models.InventoryStats, ttl time.Duration) error {
	return nil
}
func (stubCache) DeleteStats(ctx context.Context, businessID uuid.UUID) error       { return nil }
func (stubCache) InvalidateBusinessCache(ctx context.Context, businessID uuid.UUID) error {
	return nil
}
func (stubCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}
func (stubCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (stubCache) GetString(ctx context.Context, key string) (string, error) { return "", nil }
func (stubCache) Delete(ctx context.Context, key string) error              { return nil }
func (stubCache) Ping(ctx context.Context) error                            { return nil }

var _ caching.CacheService = stubCache{}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) DeriveForItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem) ([]*models.InventoryAlert, error) {
	args := m.Called(ctx, businessID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryAlert), args.Error(1)
}

func (m *MockAlertService) ScanBusiness(ctx context.Context, businessID uuid.UUID) (int, error) {
	args := m.Called(ctx, businessID)
	return args.Int(0), args.Error(1)
}

func (m *MockAlertService) RaisePriceChange(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, oldCost, newCost decimal.Decimal) error {
	args := m.Called(ctx, businessID, item, oldCost, newCost)
	return args.Error(0)
}

func (m *MockAlertService) List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error) {
	args := m.Called(ctx, businessID, resolved, limit, offset)
	return args.Get(0).([]*models.InventoryAlert), args.Error(1)
}

func (m *MockAlertService) Resolve(ctx context.Context, businessID, alertID, resolvedBy uuid.UUID) error {
	args := m.Called(ctx, businessID, alertID, resolvedBy)
	return args.Error(0)
}

var itemColumnNames = []string{
	"id", "business_id", "category_id", "supplier_id", "name", "description", "sku",
	"unit_of_measure", "current_stock", "minimum_stock", "maximum_stock", "reorder_point",
	"reorder_quantity", "unit_cost", "selling_price", "expiry_date", "is_perishable",
	"is_alcoholic", "is_ingredient", "is_available", "created_at", "updated_at",
}

func itemRows(item *models.InventoryItem) *pgxmock.Rows {
	return pgxmock.NewRows(itemColumnNames).AddRow(
		item.ID, item.BusinessID, item.CategoryID, item.SupplierID, item.Name,
		item.Description, item.SKU, item.UnitOfMeasure, item.CurrentStock,
		item.MinimumStock, item.MaximumStock, item.ReorderPoint, item.ReorderQuantity,
		item.UnitCost, item.SellingPrice, item.ExpiryDate, item.IsPerishable,
		item.IsAlcoholic, item.IsIngredient, item.IsAvailable, item.CreatedAt, item.UpdatedAt,
	)
}

type InventoryServiceSuite struct {
	suite.Suite
	pool       pgxmock.PgxPoolIface
	alertSvc   *MockAlertService
	service    InventoryService
	businessID uuid.UUID
	item       *models.InventoryItem
}

func (s *InventoryServiceSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.pool = pool

	s.alertSvc = new(MockAlertService)
	s.businessID = uuid.New()

	itemRepo := repositories.NewItemRepo(pool)
	txnRepo := repositories.NewTransactionRepo(pool)
	alertRepo := repositories.NewAlertRepo(pool)

	cfg := config.AlertConfig{
		ExpiryWarningDays:     30,
		StatsExpiringDays:     7,
		PriceChangePercent:    10,
		ComplianceWarningDays: 30,
	}
	s.service = NewInventoryService(pool, itemRepo, txnRepo, alertRepo, s.alertSvc, stubCache{}, cfg, nil, zap.NewNop())

	s.item = &models.InventoryItem{
		ID:            uuid.New(),
		BusinessID:    s.businessID,
		Name:          "Tomatoes",
		UnitOfMeasure: "kg",
		CurrentStock:  decimal.NewFromInt(10),
		MinimumStock:  decimal.NewFromInt(5),
		UnitCost:      decimal.NewFromInt(2),
		IsAvailable:   true,
	}
}

func (s *InventoryServiceSuite) TearDownTest() {
	s.pool.Close()
}

func (s *InventoryServiceSuite) expectProjection(stockBefore, stockAfter decimal.Decimal) {
	snapshot := *s.item
	snapshot.CurrentStock = stockBefore

	// validator lookup
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s*$`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(itemRows(&snapshot))

	s.pool.ExpectBegin()
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s+FOR UPDATE`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(itemRows(&snapshot))
	s.pool.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), s.businessID, s.item.ID, pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.pool.ExpectExec(`(?s)UPDATE inventory_items\s+SET current_stock = \$1`).
		WithArgs(stockAfter, s.businessID, s.item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.pool.ExpectCommit()
}

func (s *InventoryServiceSuite) TestRecordTransactionPurchaseThenSale() {
	ctx := context.Background()
	s.alertSvc.On("DeriveForItem", mock.Anything, s.businessID, mock.Anything).Return(nil, nil)

	// 10 + purchase 5 = 15
	s.expectProjection(decimal.NewFromInt(10), decimal.NewFromInt(15))
	purchase := &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionPurchase,
		Quantity: decimal.NewFromInt(5),
		UnitCost: decimal.NewFromInt(2),
	}
	recorded, err := s.service.RecordTransaction(ctx, s.businessID, purchase)
	require.NoError(s.T(), err)
	assert.True(s.T(), recorded.PreviousStock.Equal(decimal.NewFromInt(10)))
	assert.True(s.T(), recorded.NewStock.Equal(decimal.NewFromInt(15)))

	// 15 - sale 3 = 12
	s.expectProjection(decimal.NewFromInt(15), decimal.NewFromInt(12))
	sale := &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionSale,
		Quantity: decimal.NewFromInt(3),
	}
	recorded, err = s.service.RecordTransaction(ctx, s.businessID, sale)
	require.NoError(s.T(), err)
	assert.True(s.T(), recorded.PreviousStock.Equal(decimal.NewFromInt(15)))
	assert.True(s.T(), recorded.NewStock.Equal(decimal.NewFromInt(12)))

	assert.NoError(s.T(), s.pool.ExpectationsWereMet())
}

func (s *InventoryServiceSuite) TestRecordTransactionAdjustmentSignedDelta() {
	ctx := context.Background()
	s.alertSvc.On("DeriveForItem", mock.Anything, s.businessID, mock.Anything).Return(nil, nil)

	// Adjustment carries its own sign: -4 from 10 lands on 6.
	s.expectProjection(decimal.NewFromInt(10), decimal.NewFromInt(6))
	adjustment := &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionAdjustment,
		Quantity: decimal.NewFromInt(-4),
	}
	recorded, err := s.service.RecordTransaction(ctx, s.businessID, adjustment)
	require.NoError(s.T(), err)
	assert.True(s.T(), recorded.NewStock.Equal(decimal.NewFromInt(6)))
	assert.NoError(s.T(), s.pool.ExpectationsWereMet())
}

func (s *InventoryServiceSuite) TestRecordTransactionRejectsUnknownType() {
	_, err := s.service.RecordTransaction(context.Background(), s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionType("theft"),
		Quantity: decimal.NewFromInt(1),
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "transaction_type")
}

func (s *InventoryServiceSuite) TestRecordTransactionRejectsNonPositiveQuantity() {
	_, err := s.service.RecordTransaction(context.Background(), s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionSale,
		Quantity: decimal.NewFromInt(-3),
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "quantity")
}

func (s *InventoryServiceSuite) TestRecordTransactionRejectsZeroAdjustment() {
	_, err := s.service.RecordTransaction(context.Background(), s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionAdjustment,
		Quantity: decimal.Zero,
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "signed delta")
}

func (s *InventoryServiceSuite) TestRecordTransactionRejectsNegativeUnitCost() {
	_, err := s.service.RecordTransaction(context.Background(), s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionPurchase,
		Quantity: decimal.NewFromInt(1),
		UnitCost: decimal.NewFromInt(-2),
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "unit_cost")
}

func (s *InventoryServiceSuite) TestAddItemRejectsNegativeThreshold() {
	err := s.service.AddItem(context.Background(), s.businessID, &models.InventoryItem{
		Name:          "Flour",
		UnitOfMeasure: "kg",
		MinimumStock:  decimal.NewFromInt(-1),
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "minimum_stock")
}

func (s *InventoryServiceSuite) TestRecordTransactionRejectsUnknownItem() {
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s*$`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.service.RecordTransaction(context.Background(), s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionPurchase,
		Quantity: decimal.NewFromInt(1),
	})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "item_id")
}

func (s *InventoryServiceSuite) TestRecordTransactionRollsBackOnLedgerFailure() {
	ctx := context.Background()

	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s*$`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(itemRows(s.item))
	s.pool.ExpectBegin()
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s+FOR UPDATE`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(itemRows(s.item))
	s.pool.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), s.businessID, s.item.ID, pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	s.pool.ExpectRollback()

	_, err := s.service.RecordTransaction(ctx, s.businessID, &models.InventoryTransaction{
		ItemID:   s.item.ID,
		Type:     models.TransactionPurchase,
		Quantity: decimal.NewFromInt(5),
	})
	assert.Error(s.T(), err)
	assert.NoError(s.T(), s.pool.ExpectationsWereMet())
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceSuite))
}

func TestTransactionTypeDirection(t *testing.T) {
	increasing := []models.TransactionType{
		models.TransactionPurchase, models.TransactionTransferIn, models.TransactionReturn,
	}
	decreasing := []models.TransactionType{
		models.TransactionSale, models.TransactionWaste, models.TransactionTransferOut,
		models.TransactionDamage, models.TransactionExpiry,
	}

	for _, txnType := range increasing {
		assert.Equal(t, 1, txnType.Direction(), string(txnType))
	}
	for _, txnType := range decreasing {
		assert.Equal(t, -1, txnType.Direction(), string(txnType))
	}
	assert.Equal(t, 0, models.TransactionAdjustment.Direction())
}
