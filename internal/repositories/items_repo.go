package repositories

import (
	"context"
	"fmt"
	"strings"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const itemColumns = `id, business_id, category_id, supplier_id, name, description, sku,
		unit_of_measure, current_stock, minimum_stock, maximum_stock, reorder_point,
		reorder_quantity, unit_cost, selling_price, expiry_date, is_perishable,
		is_alcoholic, is_ingredient, is_available, created_at, updated_at`

type ItemRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	SetAvailability(ctx context.Context, businessID, id uuid.UUID, available bool) error
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	Search(ctx context.Context, businessID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.InventoryItem, error)
	Stats(ctx context.Context, businessID uuid.UUID, expiringWithinDays int) (*models.InventoryStats, error)

	// Tx-scoped operations: used by the stock projector to keep the ledger
	// write and the stock update one atomic unit. GetForUpdateTx takes a row
	// lock so concurrent projections on the same item serialize.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID) (*models.InventoryItem, error)
	UpdateStockTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID, newStock decimal.Decimal) error
}

type itemRepo struct {
	db DB
}

func NewItemRepo(db DB) ItemRepository {
	return &itemRepo{db: db}
}

func scanItem(row pgx.Row) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(&item.ID, &item.BusinessID, &item.CategoryID, &item.SupplierID,
		&item.Name, &item.Description, &item.SKU, &item.UnitOfMeasure,
		&item.CurrentStock, &item.MinimumStock, &item.MaximumStock, &item.ReorderPoint,
		&item.ReorderQuantity, &item.UnitCost, &item.SellingPrice, &item.ExpiryDate,
		&item.IsPerishable, &item.IsAlcoholic, &item.IsIngredient, &item.IsAvailable,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, business_id, category_id, supplier_id, name, description, sku,
			unit_of_measure, current_stock, minimum_stock, maximum_stock, reorder_point,
			reorder_quantity, unit_cost, selling_price, expiry_date, is_perishable,
			is_alcoholic, is_ingredient, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.BusinessID, item.CategoryID, item.SupplierID,
		item.Name, item.Description, item.SKU, item.UnitOfMeasure,
		item.CurrentStock, item.MinimumStock, item.MaximumStock, item.ReorderPoint,
		item.ReorderQuantity, item.UnitCost, item.SellingPrice, item.ExpiryDate,
		item.IsPerishable, item.IsAlcoholic, item.IsIngredient, item.IsAvailable)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		WHERE business_id = $1 AND id = $2
	`, itemColumns)
	return scanItem(r.db.QueryRow(ctx, query, businessID, id))
}

func (r *itemRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID) (*models.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		WHERE business_id = $1 AND id = $2
		FOR UPDATE
	`, itemColumns)
	return scanItem(tx.QueryRow(ctx, query, businessID, id))
}

func (r *itemRepo) UpdateStockTx(ctx context.Context, tx pgx.Tx, businessID, id uuid.UUID, newStock decimal.Decimal) error {
	query := `
		UPDATE inventory_items
		SET current_stock = $1, updated_at = NOW()
		WHERE business_id = $2 AND id = $3
	`
	tag, err := tx.Exec(ctx, query, newStock, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	// current_stock is deliberately not written here; stock only moves
	// through the transaction ledger.
	query := `
		UPDATE inventory_items
		SET category_id = $1, supplier_id = $2, name = $3, description = $4, sku = $5,
			unit_of_measure = $6, minimum_stock = $7, maximum_stock = $8, reorder_point = $9,
			reorder_quantity = $10, unit_cost = $11, selling_price = $12, expiry_date = $13,
			is_perishable = $14, is_alcoholic = $15, is_ingredient = $16, is_available = $17,
			updated_at = NOW()
		WHERE business_id = $18 AND id = $19
	`
	_, err := r.db.Exec(ctx, query, item.CategoryID, item.SupplierID, item.Name, item.Description,
		item.SKU, item.UnitOfMeasure, item.MinimumStock, item.MaximumStock, item.ReorderPoint,
		item.ReorderQuantity, item.UnitCost, item.SellingPrice, item.ExpiryDate,
		item.IsPerishable, item.IsAlcoholic, item.IsIngredient, item.IsAvailable,
		item.BusinessID, item.ID)
	return err
}

func (r *itemRepo) SetAvailability(ctx context.Context, businessID, id uuid.UUID, available bool) error {
	query := `
		UPDATE inventory_items
		SET is_available = $1, updated_at = NOW()
		WHERE business_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, available, businessID, id)
	return err
}

func (r *itemRepo) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		WHERE business_id = $1 AND is_available = true
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, itemColumns)
	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// Search builds the WHERE clause dynamically from the filter.
func (r *itemRepo) Search(ctx context.Context, businessID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.InventoryItem, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}

	queryBase := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		WHERE business_id = $1
	`, itemColumns)
	args := []any{businessID}
	conditionCount := 1

	if !filter.IncludeUnavailable {
		queryBase += ` AND is_available = true`
	}

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)`,
			conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.CategoryID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND category_id = $%d`, conditionCount)
		args = append(args, *filter.CategoryID)
	}

	if filter.SupplierID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND supplier_id = $%d`, conditionCount)
		args = append(args, *filter.SupplierID)
	}

	if filter.LowStock {
		queryBase += ` AND current_stock <= minimum_stock`
	}

	if filter.ExpiringWithinDays != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND expiry_date IS NOT NULL AND expiry_date <= NOW() + make_interval(days => $%d)`, conditionCount)
		args = append(args, *filter.ExpiringWithinDays)
	}

	sortField := "name"
	switch filter.SortBy {
	case "current_stock":
		sortField = "current_stock"
	case "expiry_date":
		sortField = "expiry_date"
	case "updated_at":
		sortField = "updated_at"
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

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
	return collectItems(rows)
}

// Stats aggregates the dashboard counters in a single pass over the item set.
// Active alert counts come from the alerts repository.
func (r *itemRepo) Stats(ctx context.Context, businessID uuid.UUID, expiringWithinDays int) (*models.InventoryStats, error) {
	stats := &models.InventoryStats{}
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE current_stock <= minimum_stock),
			COUNT(*) FILTER (WHERE expiry_date IS NOT NULL AND expiry_date <= NOW() + make_interval(days => $2)),
			COALESCE(SUM(current_stock * unit_cost), 0)
		FROM inventory_items
		WHERE business_id = $1 AND is_available = true
	`
	err := r.db.QueryRow(ctx, query, businessID, expiringWithinDays).Scan(
		&stats.TotalItems, &stats.LowStockItems, &stats.ExpiringItems, &stats.TotalValue)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func collectItems(rows pgx.Rows) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
