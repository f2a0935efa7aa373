package repositories

import (
	"context"
	"fmt"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const alertColumns = `id, business_id, item_id, alert_type, severity, message,
		is_resolved, resolved_by, resolved_at, created_at`

type AlertRepository interface {
	Create(ctx context.Context, alert *models.InventoryAlert) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryAlert, error)
	List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error)
	Resolve(ctx context.Context, businessID, id, resolvedBy uuid.UUID) error
	HasUnresolved(ctx context.Context, businessID, itemID uuid.UUID, alertType models.AlertType) (bool, error)
	CountActive(ctx context.Context, businessID uuid.UUID) (int, error)
}

type alertRepo struct {
	db DB
}

func NewAlertRepo(db DB) AlertRepository {
	return &alertRepo{db: db}
}

func (r *alertRepo) Create(ctx context.Context, alert *models.InventoryAlert) error {
	query := `
		INSERT INTO inventory_alerts (id, business_id, item_id, alert_type, severity, message,
			is_resolved, resolved_by, resolved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NULL, NULL, NOW())
	`
	_, err := r.db.Exec(ctx, query, alert.ID, alert.BusinessID, alert.ItemID, alert.Type, alert.Severity, alert.Message)
	return err
}

func (r *alertRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.InventoryAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_alerts
		WHERE business_id = $1 AND id = $2
	`, alertColumns)
	return scanAlert(r.db.QueryRow(ctx, query, businessID, id))
}

func (r *alertRepo) List(ctx context.Context, businessID uuid.UUID, resolved *bool, limit, offset int) ([]*models.InventoryAlert, error) {
	queryBase := fmt.Sprintf(`
		SELECT %s
		FROM inventory_alerts
		WHERE business_id = $1
	`, alertColumns)
	args := []any{businessID}
	conditionCount := 1

	if resolved != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND is_resolved = $%d`, conditionCount)
		args = append(args, *resolved)
	}

	queryBase += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.InventoryAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// Resolve stamps the resolver and timestamp. It does not re-check whether the
// underlying condition still holds.
func (r *alertRepo) Resolve(ctx context.Context, businessID, id, resolvedBy uuid.UUID) error {
	query := `
		UPDATE inventory_alerts
		SET is_resolved = true, resolved_by = $1, resolved_at = NOW()
		WHERE business_id = $2 AND id = $3 AND is_resolved = false
	`
	tag, err := r.db.Exec(ctx, query, resolvedBy, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *alertRepo) HasUnresolved(ctx context.Context, businessID, itemID uuid.UUID, alertType models.AlertType) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_alerts
			WHERE business_id = $1 AND item_id = $2 AND alert_type = $3 AND is_resolved = false
		)
	`
	err := r.db.QueryRow(ctx, query, businessID, itemID, alertType).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *alertRepo) CountActive(ctx context.Context, businessID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM inventory_alerts WHERE business_id = $1 AND is_resolved = false`
	err := r.db.QueryRow(ctx, query, businessID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanAlert(row pgx.Row) (*models.InventoryAlert, error) {
	alert := &models.InventoryAlert{}
	err := row.Scan(&alert.ID, &alert.BusinessID, &alert.ItemID, &alert.Type, &alert.Severity,
		&alert.Message, &alert.IsResolved, &alert.ResolvedBy, &alert.ResolvedAt, &alert.CreatedAt)
	if err != nil {
		return nil, err
	}
	return alert, nil
}
