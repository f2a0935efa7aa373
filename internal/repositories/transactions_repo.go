package repositories

import (
	"context"
	"fmt"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, business_id, item_id, transaction_type, quantity, unit_cost,
		total_cost, previous_stock, new_stock, supplier_id, order_reference, staff_id,
		notes, transaction_date, created_at`

// TransactionRepository is append-only: ledger rows are created once, inside
// the projector's transaction, and never updated or deleted.
type TransactionRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, txn *models.InventoryTransaction) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryTransaction, error)
	List(ctx context.Context, businessID uuid.UUID, filter *models.TransactionFilter) ([]*models.InventoryTransaction, error)
	SumDeltasByItem(ctx context.Context, businessID, itemID uuid.UUID) (string, error)
}

type transactionRepo struct {
	db DB
}

func NewTransactionRepo(db DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) CreateTx(ctx context.Context, tx pgx.Tx, txn *models.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (id, business_id, item_id, transaction_type, quantity,
			unit_cost, total_cost, previous_stock, new_stock, supplier_id, order_reference,
			staff_id, notes, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	`
	_, err := tx.Exec(ctx, query, txn.ID, txn.BusinessID, txn.ItemID, txn.Type, txn.Quantity,
		txn.UnitCost, txn.TotalCost, txn.PreviousStock, txn.NewStock, txn.SupplierID,
		txn.OrderReference, txn.StaffID, txn.Notes, txn.Date)
	return err
}

func (r *transactionRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_transactions
		WHERE business_id = $1 AND id = $2
	`, transactionColumns)
	return scanTransaction(r.db.QueryRow(ctx, query, businessID, id))
}

func (r *transactionRepo) List(ctx context.Context, businessID uuid.UUID, filter *models.TransactionFilter) ([]*models.InventoryTransaction, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := fmt.Sprintf(`
		SELECT %s
		FROM inventory_transactions
		WHERE business_id = $1
	`, transactionColumns)
	args := []any{businessID}
	conditionCount := 1

	if filter.ItemID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND item_id = $%d`, conditionCount)
		args = append(args, *filter.ItemID)
	}
	if filter.Type != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND transaction_type = $%d`, conditionCount)
		args = append(args, *filter.Type)
	}
	if filter.DateFrom != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND transaction_date >= $%d`, conditionCount)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND transaction_date <= $%d`, conditionCount)
		args = append(args, *filter.DateTo)
	}

	queryBase += ` ORDER BY transaction_date DESC`

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.InventoryTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// SumDeltasByItem computes the running sum of signed deltas for an item,
// the ledger-consistency check: it must equal the item's current_stock.
func (r *transactionRepo) SumDeltasByItem(ctx context.Context, businessID, itemID uuid.UUID) (string, error) {
	var sum string
	query := `
		SELECT COALESCE(SUM(new_stock - previous_stock), 0)::text
		FROM inventory_transactions
		WHERE business_id = $1 AND item_id = $2
	`
	err := r.db.QueryRow(ctx, query, businessID, itemID).Scan(&sum)
	if err != nil {
		return "", err
	}
	return sum, nil
}

func scanTransaction(row pgx.Row) (*models.InventoryTransaction, error) {
	txn := &models.InventoryTransaction{}
	err := row.Scan(&txn.ID, &txn.BusinessID, &txn.ItemID, &txn.Type, &txn.Quantity,
		&txn.UnitCost, &txn.TotalCost, &txn.PreviousStock, &txn.NewStock, &txn.SupplierID,
		&txn.OrderReference, &txn.StaffID, &txn.Notes, &txn.Date, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return txn, nil
}
