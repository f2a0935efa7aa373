package services

import (
	"context"
	"testing"
	"time"

	"mesa/internal/config"
	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *models.InventoryAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryAlert, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryAlert), args.Error(1)
}

func (m *MockAlertRepository) List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error) {
	args := m.Called(ctx, businessID, resolved, limit, offset)
	return args.Get(0).([]*models.InventoryAlert), args.Error(1)
}

func (m *MockAlertRepository) Resolve(ctx context.Context, businessID, id, resolvedBy uuid.UUID) error {
	args := m.Called(ctx, businessID, id, resolvedBy)
	return args.Error(0)
}

func (m *MockAlertRepository) HasUnresolved(ctx context.Context, businessID, itemID uuid.UUID, alertType models.AlertType) (bool, error) {
	args := m.Called(ctx, businessID, itemID, alertType)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) CountActive(ctx context.Context, businessID uuid.UUID) (int, error) {
	args := m.Called(ctx, businessID)
	return args.Int(0), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SetAvailability(ctx context.Context, businessID, id uuid.UUID, available bool) error {
	args := m.Called(ctx, businessID, id, available)
	return args.Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, businessID, limit, offset)
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, businessID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, businessID, filter)
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) Stats(ctx context.Context, businessID uuid.UUID, expiringWithinDays int) (*models.InventoryStats, error) {
	args := m.Called(ctx, businessID, expiringWithinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryStats), args.Error(1)
}

func (m *MockItemRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, tx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) UpdateStockTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID, newStock decimal.Decimal) error {
	args := m.Called(ctx, tx, businessID, id, newStock)
	return args.Error(0)
}

// recordingCache counts invalidation calls on top of the no-op stub.
type recordingCache struct {
	stubCache
	businessInvalidations int
	statsDeletions        int
}

func (r *recordingCache) InvalidateBusinessCache(ctx context.Context, businessID uuid.UUID) error {
	r.businessInvalidations++
	return nil
}

func (r *recordingCache) DeleteStats(ctx context.Context, businessID uuid.UUID) error {
	r.statsDeletions++
	return nil
}

func newTestAlertService(alertRepo *MockAlertRepository, itemRepo *MockItemRepository) AlertService {
	svc, _ := newTestAlertServiceWithCache(alertRepo, itemRepo)
	return svc
}

func newTestAlertServiceWithCache(alertRepo *MockAlertRepository, itemRepo *MockItemRepository) (AlertService, *recordingCache) {
	cfg := config.AlertConfig{
		ExpiryWarningDays:     30,
		StatsExpiringDays:     7,
		PriceChangePercent:    10,
		ComplianceWarningDays: 30,
	}
	cache := &recordingCache{}
	return NewAlertService(alertRepo, itemRepo, cache, cfg, nil, zap.NewNop()), cache
}

func testItem(stock, minimum, maximum int64) *models.InventoryItem {
	return &models.InventoryItem{
		ID:            uuid.New(),
		Name:          "Olive oil",
		UnitOfMeasure: "l",
		CurrentStock:  decimal.NewFromInt(stock),
		MinimumStock:  decimal.NewFromInt(minimum),
		MaximumStock:  decimal.NewFromInt(maximum),
		IsAvailable:   true,
	}
}

func alertTypes(alerts []*models.InventoryAlert) []models.AlertType {
	var types []models.AlertType
	for _, alert := range alerts {
		types = append(types, alert.Type)
	}
	return types
}

func TestDeriveOutOfStockNotLowStock(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc := newTestAlertService(alertRepo, itemRepo)
	businessID := uuid.New()
	item := testItem(0, 5, 0)

	alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, models.AlertOutOfStock).Return(false, nil)
	alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.DeriveForItem(context.Background(), businessID, item)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.AlertOutOfStock, created[0].Type)
	assert.Equal(t, models.SeverityCritical, created[0].Severity)
	alertRepo.AssertNotCalled(t, "HasUnresolved", mock.Anything, businessID, item.ID, models.AlertLowStock)
}

func TestDeriveLowStockSeverityBoundaries(t *testing.T) {
	businessID := uuid.New()

	cases := []struct {
		name     string
		stock    int64
		severity models.AlertSeverity
	}{
		{"at minimum is medium", 5, models.SeverityMedium},
		{"below half minimum is high", 2, models.SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alertRepo := new(MockAlertRepository)
			itemRepo := new(MockItemRepository)
			svc := newTestAlertService(alertRepo, itemRepo)
			item := testItem(tc.stock, 5, 0)

			alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, models.AlertLowStock).Return(false, nil)
			alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

			created, err := svc.DeriveForItem(context.Background(), businessID, item)
			require.NoError(t, err)
			require.Len(t, created, 1)
			assert.Equal(t, models.AlertLowStock, created[0].Type)
			assert.Equal(t, tc.severity, created[0].Severity)
		})
	}
}

func TestDeriveNoAlertAboveMinimum(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc := newTestAlertService(alertRepo, itemRepo)
	item := testItem(6, 5, 0)

	created, err := svc.DeriveForItem(context.Background(), uuid.New(), item)
	require.NoError(t, err)
	assert.Empty(t, created)
	alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeriveOverstock(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc := newTestAlertService(alertRepo, itemRepo)
	businessID := uuid.New()
	item := testItem(120, 5, 100)

	alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, models.AlertOverstock).Return(false, nil)
	alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.DeriveForItem(context.Background(), businessID, item)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertType{models.AlertOverstock}, alertTypes(created))
}

func TestDeriveExpiredAndExpiringSoon(t *testing.T) {
	businessID := uuid.New()

	past := time.Now().AddDate(0, 0, -1)
	soon := time.Now().AddDate(0, 0, 10)
	far := time.Now().AddDate(0, 0, 90)

	cases := []struct {
		name     string
		expiry   *time.Time
		expected []models.AlertType
	}{
		{"already expired", &past, []models.AlertType{models.AlertExpired}},
		{"inside warning window", &soon, []models.AlertType{models.AlertExpiringSoon}},
		{"outside warning window", &far, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alertRepo := new(MockAlertRepository)
			itemRepo := new(MockItemRepository)
			svc := newTestAlertService(alertRepo, itemRepo)
			item := testItem(50, 5, 0)
			item.ExpiryDate = tc.expiry

			alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, mock.Anything).Return(false, nil)
			alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

			created, err := svc.DeriveForItem(context.Background(), businessID, item)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, alertTypes(created))
		})
	}
}

func TestDeriveSuppressesDuplicateUnresolved(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc := newTestAlertService(alertRepo, itemRepo)
	businessID := uuid.New()
	item := testItem(0, 5, 0)

	alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, models.AlertOutOfStock).Return(true, nil)

	created, err := svc.DeriveForItem(context.Background(), businessID, item)
	require.NoError(t, err)
	assert.Empty(t, created)
	alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRaisePriceChangeThreshold(t *testing.T) {
	businessID := uuid.New()

	cases := []struct {
		name    string
		oldCost int64
		newCost int64
		raised  bool
	}{
		{"below threshold", 100, 105, false},
		{"at threshold", 100, 110, true},
		{"drop past threshold", 100, 80, true},
		{"zero old cost is ignored", 0, 50, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alertRepo := new(MockAlertRepository)
			itemRepo := new(MockItemRepository)
			svc := newTestAlertService(alertRepo, itemRepo)
			item := testItem(10, 5, 0)

			if tc.raised {
				alertRepo.On("HasUnresolved", mock.Anything, businessID, item.ID, models.AlertPriceChange).Return(false, nil)
				alertRepo.On("Create", mock.Anything, mock.MatchedBy(func(alert *models.InventoryAlert) bool {
					return alert.Type == models.AlertPriceChange
				})).Return(nil)
			}

			err := svc.RaisePriceChange(context.Background(), businessID, item,
				decimal.NewFromInt(tc.oldCost), decimal.NewFromInt(tc.newCost))
			require.NoError(t, err)

			if tc.raised {
				alertRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestScanBusinessCountsCreatedAlerts(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc, cache := newTestAlertServiceWithCache(alertRepo, itemRepo)
	businessID := uuid.New()

	healthy := testItem(50, 5, 0)
	empty := testItem(0, 5, 0)

	itemRepo.On("List", mock.Anything, businessID, 200, 0).
		Return([]*models.InventoryItem{healthy, empty}, nil)
	alertRepo.On("HasUnresolved", mock.Anything, businessID, empty.ID, models.AlertOutOfStock).Return(false, nil)
	alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.ScanBusiness(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, cache.businessInvalidations)
}

func TestScanBusinessWithoutNewAlertsKeepsCache(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc, cache := newTestAlertServiceWithCache(alertRepo, itemRepo)
	businessID := uuid.New()

	itemRepo.On("List", mock.Anything, businessID, 200, 0).
		Return([]*models.InventoryItem{testItem(50, 5, 0)}, nil)

	created, err := svc.ScanBusiness(context.Background(), businessID)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Zero(t, cache.businessInvalidations)
}

func TestResolveInvalidatesStatsCache(t *testing.T) {
	alertRepo := new(MockAlertRepository)
	itemRepo := new(MockItemRepository)
	svc, cache := newTestAlertServiceWithCache(alertRepo, itemRepo)
	businessID := uuid.New()
	alertID := uuid.New()
	resolver := uuid.New()

	alertRepo.On("Resolve", mock.Anything, businessID, alertID, resolver).Return(nil)

	require.NoError(t, svc.Resolve(context.Background(), businessID, alertID, resolver))
	assert.Equal(t, 1, cache.statsDeletions)
}
