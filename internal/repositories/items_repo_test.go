package repositories

import (
	"context"
	"testing"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var itemCols = []string{
	"id", "business_id", "category_id", "supplier_id", "name", "description", "sku",
	"unit_of_measure", "current_stock", "minimum_stock", "maximum_stock", "reorder_point",
	"reorder_quantity", "unit_cost", "selling_price", "expiry_date", "is_perishable",
	"is_alcoholic", "is_ingredient", "is_available", "created_at", "updated_at",
}

func rowsFor(items ...*models.InventoryItem) *pgxmock.Rows {
	rows := pgxmock.NewRows(itemCols)
	for _, item := range items {
		rows.AddRow(
			item.ID, item.BusinessID, item.CategoryID, item.SupplierID, item.Name,
			item.Description, item.SKU, item.UnitOfMeasure, item.CurrentStock,
			item.MinimumStock, item.MaximumStock, item.ReorderPoint, item.ReorderQuantity,
			item.UnitCost, item.SellingPrice, item.ExpiryDate, item.IsPerishable,
			item.IsAlcoholic, item.IsIngredient, item.IsAvailable, item.CreatedAt, item.UpdatedAt,
		)
	}
	return rows
}

type ItemRepoSuite struct {
	suite.Suite
	pool       pgxmock.PgxPoolIface
	repo       ItemRepository
	businessID uuid.UUID
	item       *models.InventoryItem
}

func (s *ItemRepoSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.pool = pool
	s.repo = NewItemRepo(pool)
	s.businessID = uuid.New()
	s.item = &models.InventoryItem{
		ID:            uuid.New(),
		BusinessID:    s.businessID,
		Name:          "Basmati rice",
		UnitOfMeasure: "kg",
		CurrentStock:  decimal.NewFromInt(25),
		MinimumStock:  decimal.NewFromInt(10),
		UnitCost:      decimal.NewFromFloat(1.8),
		IsAvailable:   true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func (s *ItemRepoSuite) TearDownTest() {
	assert.NoError(s.T(), s.pool.ExpectationsWereMet())
	s.pool.Close()
}

func (s *ItemRepoSuite) TestGetByID() {
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s*$`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(rowsFor(s.item))

	got, err := s.repo.GetByID(context.Background(), s.businessID, s.item.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.item.ID, got.ID)
	assert.True(s.T(), got.CurrentStock.Equal(s.item.CurrentStock))
}

func (s *ItemRepoSuite) TestGetForUpdateTxLocksRow() {
	s.pool.ExpectBegin()
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1 AND id = \$2\s+FOR UPDATE`).
		WithArgs(s.businessID, s.item.ID).
		WillReturnRows(rowsFor(s.item))
	s.pool.ExpectCommit()

	tx, err := s.pool.Begin(context.Background())
	require.NoError(s.T(), err)
	got, err := s.repo.GetForUpdateTx(context.Background(), tx, s.businessID, s.item.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.item.ID, got.ID)
	require.NoError(s.T(), tx.Commit(context.Background()))
}

func (s *ItemRepoSuite) TestUpdateStockTx() {
	newStock := decimal.NewFromInt(30)

	s.pool.ExpectBegin()
	s.pool.ExpectExec(`(?s)UPDATE inventory_items\s+SET current_stock = \$1`).
		WithArgs(newStock, s.businessID, s.item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.pool.ExpectCommit()

	tx, err := s.pool.Begin(context.Background())
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.UpdateStockTx(context.Background(), tx, s.businessID, s.item.ID, newStock))
	require.NoError(s.T(), tx.Commit(context.Background()))
}

func (s *ItemRepoSuite) TestUpdateStockTxUnknownItem() {
	newStock := decimal.NewFromInt(30)

	s.pool.ExpectBegin()
	s.pool.ExpectExec(`(?s)UPDATE inventory_items\s+SET current_stock = \$1`).
		WithArgs(newStock, s.businessID, s.item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	s.pool.ExpectRollback()

	tx, err := s.pool.Begin(context.Background())
	require.NoError(s.T(), err)
	err = s.repo.UpdateStockTx(context.Background(), tx, s.businessID, s.item.ID, newStock)
	assert.ErrorIs(s.T(), err, pgx.ErrNoRows)
	require.NoError(s.T(), tx.Rollback(context.Background()))
}

func (s *ItemRepoSuite) TestUpdateNeverWritesStock() {
	s.pool.ExpectExec(`(?s)UPDATE inventory_items\s+SET category_id = \$1`).
		WithArgs(s.item.CategoryID, s.item.SupplierID, s.item.Name, s.item.Description,
			s.item.SKU, s.item.UnitOfMeasure, s.item.MinimumStock, s.item.MaximumStock,
			s.item.ReorderPoint, s.item.ReorderQuantity, s.item.UnitCost, s.item.SellingPrice,
			s.item.ExpiryDate, s.item.IsPerishable, s.item.IsAlcoholic, s.item.IsIngredient,
			s.item.IsAvailable, s.businessID, s.item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(s.T(), s.repo.Update(context.Background(), s.item))
}

func (s *ItemRepoSuite) TestSearchLowStockFilter() {
	filter := &models.ItemSearchFilter{LowStock: true}

	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1.+AND current_stock <= minimum_stock.+ORDER BY name ASC.+LIMIT \$2`).
		WithArgs(s.businessID, 50).
		WillReturnRows(rowsFor(s.item))

	items, err := s.repo.Search(context.Background(), s.businessID, filter)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), s.item.ID, items[0].ID)
}

func (s *ItemRepoSuite) TestSearchQueryAndPaging() {
	filter := &models.ItemSearchFilter{
		Query:     "rice",
		SortBy:    "updated_at",
		SortOrder: "desc",
		Limit:     20,
		Offset:    20,
	}

	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1.+ILIKE \$2.+ORDER BY updated_at DESC.+LIMIT \$3 OFFSET \$4`).
		WithArgs(s.businessID, "%rice%", 20, 20).
		WillReturnRows(rowsFor())

	items, err := s.repo.Search(context.Background(), s.businessID, filter)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)
}

func (s *ItemRepoSuite) TestSearchExpiringWindowIsIntegerTyped() {
	days := 14
	filter := &models.ItemSearchFilter{ExpiringWithinDays: &days}

	// The window parameter must land in an integer-typed expression; a
	// text-typed placeholder has no encode plan for a Go int.
	s.pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items\s+WHERE business_id = \$1.+expiry_date <= NOW\(\) \+ make_interval\(days => \$2\).+LIMIT \$3`).
		WithArgs(s.businessID, days, 50).
		WillReturnRows(rowsFor(s.item))

	items, err := s.repo.Search(context.Background(), s.businessID, filter)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 1)
}

func (s *ItemRepoSuite) TestStats() {
	s.pool.ExpectQuery(`(?s)SELECT COUNT\(\*\),.+expiry_date <= NOW\(\) \+ make_interval\(days => \$2\).+FROM inventory_items\s+WHERE business_id = \$1 AND is_available = true`).
		WithArgs(s.businessID, 7).
		WillReturnRows(pgxmock.NewRows([]string{"total", "low", "expiring", "value"}).
			AddRow(12, 3, 2, decimal.NewFromFloat(412.5)))

	stats, err := s.repo.Stats(context.Background(), s.businessID, 7)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 12, stats.TotalItems)
	assert.Equal(s.T(), 3, stats.LowStockItems)
	assert.Equal(s.T(), 2, stats.ExpiringItems)
	assert.True(s.T(), stats.TotalValue.Equal(decimal.NewFromFloat(412.5)))
}

func TestItemRepoSuite(t *testing.T) {
	suite.Run(t, new(ItemRepoSuite))
}
