package repositories

import (
	"context"
	"testing"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionCols = []string{
	"id", "business_id", "item_id", "transaction_type", "quantity", "unit_cost",
	"total_cost", "previous_stock", "new_stock", "supplier_id", "order_reference",
	"staff_id", "notes", "transaction_date", "created_at",
}

func newTransactionTestRepo(t *testing.T) (pgxmock.PgxPoolIface, TransactionRepository) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pool.ExpectationsWereMet())
		pool.Close()
	})
	return pool, NewTransactionRepo(pool)
}

func TestTransactionCreateTxWritesStockSnapshots(t *testing.T) {
	pool, repo := newTransactionTestRepo(t)

	txn := &models.InventoryTransaction{
		ID:            uuid.New(),
		BusinessID:    uuid.New(),
		ItemID:        uuid.New(),
		Type:          models.TransactionPurchase,
		Quantity:      decimal.NewFromInt(5),
		UnitCost:      decimal.NewFromInt(2),
		TotalCost:     decimal.NewFromInt(10),
		PreviousStock: decimal.NewFromInt(10),
		NewStock:      decimal.NewFromInt(15),
		Date:          time.Now(),
	}

	pool.ExpectBegin()
	pool.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(txn.ID, txn.BusinessID, txn.ItemID, txn.Type, txn.Quantity,
			txn.UnitCost, txn.TotalCost, txn.PreviousStock, txn.NewStock, txn.SupplierID,
			txn.OrderReference, txn.StaffID, txn.Notes, txn.Date).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(context.Background(), tx, txn))
	require.NoError(t, tx.Commit(context.Background()))
}

func TestTransactionListFilters(t *testing.T) {
	pool, repo := newTransactionTestRepo(t)
	businessID := uuid.New()
	itemID := uuid.New()
	txnType := models.TransactionSale

	filter := &models.TransactionFilter{
		ItemID: &itemID,
		Type:   &txnType,
		Limit:  25,
	}

	pool.ExpectQuery(`(?s)SELECT .+ FROM inventory_transactions\s+WHERE business_id = \$1 AND item_id = \$2 AND transaction_type = \$3 ORDER BY transaction_date DESC LIMIT \$4`).
		WithArgs(businessID, itemID, txnType, 25).
		WillReturnRows(pgxmock.NewRows(transactionCols))

	txns, err := repo.List(context.Background(), businessID, filter)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestTransactionSumDeltasByItem(t *testing.T) {
	pool, repo := newTransactionTestRepo(t)
	businessID := uuid.New()
	itemID := uuid.New()

	pool.ExpectQuery(`(?s)SELECT COALESCE\(SUM\(new_stock - previous_stock\), 0\)::text\s+FROM inventory_transactions\s+WHERE business_id = \$1 AND item_id = \$2`).
		WithArgs(businessID, itemID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow("12.5"))

	sum, err := repo.SumDeltasByItem(context.Background(), businessID, itemID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", sum)
}
